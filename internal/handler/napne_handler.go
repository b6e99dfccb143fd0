package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// NapneHandler handles the NAPNE catalogs, student files and attendances.
type NapneHandler struct {
	napne *service.NapneService
}

// NewNapneHandler creates a new NapneHandler.
func NewNapneHandler(napne *service.NapneService) *NapneHandler {
	return &NapneHandler{napne: napne}
}

// ListCatalogo godoc
// GET /api/v1/napne/catalogos/:kind?ativos=
// kind is one of tipos-atendimento, necessidades, setores or status.
func (h *NapneHandler) ListCatalogo(c *gin.Context) {
	kind := model.CatalogoNAPNEKind(c.Param("kind"))
	items, err := h.napne.ListCatalogo(c.Request.Context(), kind, soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateCatalogo godoc
// POST /api/v1/napne/catalogos/:kind
func (h *NapneHandler) CreateCatalogo(c *gin.Context) {
	kind := model.CatalogoNAPNEKind(c.Param("kind"))
	var req model.CatalogoNAPNERequest
	if !bind(c, &req) {
		return
	}
	item, err := h.napne.CreateCatalogo(c.Request.Context(), kind, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateCatalogo godoc
// PUT /api/v1/napne/catalogos/:kind/:id
func (h *NapneHandler) UpdateCatalogo(c *gin.Context) {
	kind := model.CatalogoNAPNEKind(c.Param("kind"))
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CatalogoNAPNERequest
	if !bind(c, &req) {
		return
	}
	item, err := h.napne.UpdateCatalogo(c.Request.Context(), kind, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// ─── Fichas ────────────────────────────────────────────────────────────

// ListFichas godoc
// GET /api/v1/napne/fichas?busca=&page=&per_page=
func (h *NapneHandler) ListFichas(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.napne.ListFichas(c.Request.Context(), c.Query("busca"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetFicha godoc
// GET /api/v1/napne/fichas/:id
func (h *NapneHandler) GetFicha(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := h.napne.GetFicha(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// GetFichaByEstudante godoc
// GET /api/v1/napne/estudantes/:id/ficha
func (h *NapneHandler) GetFichaByEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := h.napne.GetFichaByEstudante(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// CreateFicha godoc
// POST /api/v1/napne/fichas
// A student has at most one file.
func (h *NapneHandler) CreateFicha(c *gin.Context) {
	var req model.FichaNAPNERequest
	if !bind(c, &req) {
		return
	}
	f, err := h.napne.CreateFicha(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, f)
}

// UpdateFicha godoc
// PUT /api/v1/napne/fichas/:id
func (h *NapneHandler) UpdateFicha(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.FichaNAPNERequest
	if !bind(c, &req) {
		return
	}
	f, err := h.napne.UpdateFicha(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// AdicionarObservacaoLaudo godoc
// POST /api/v1/napne/fichas/:id/laudo
// Appends a dated note to the medical report observations.
func (h *NapneHandler) AdicionarObservacaoLaudo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ObservacaoLaudoRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.napne.AdicionarObservacaoLaudo(c.Request.Context(), id, req.Observacao)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// ─── Atendimentos ──────────────────────────────────────────────────────

// ListAtendimentos godoc
// GET /api/v1/napne/atendimentos?estudante_id=&page=&per_page=
func (h *NapneHandler) ListAtendimentos(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.napne.ListAtendimentos(c.Request.Context(), queryInt(c, "estudante_id"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetAtendimento godoc
// GET /api/v1/napne/atendimentos/:id
func (h *NapneHandler) GetAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := h.napne.GetAtendimento(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// CreateAtendimento godoc
// POST /api/v1/napne/atendimentos
func (h *NapneHandler) CreateAtendimento(c *gin.Context) {
	var req model.AtendimentoNAPNERequest
	if !bind(c, &req) {
		return
	}
	a, err := h.napne.CreateAtendimento(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

// UpdateAtendimento godoc
// PUT /api/v1/napne/atendimentos/:id
func (h *NapneHandler) UpdateAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.AtendimentoNAPNERequest
	if !bind(c, &req) {
		return
	}
	a, err := h.napne.UpdateAtendimento(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// DeleteAtendimento godoc
// DELETE /api/v1/napne/atendimentos/:id
func (h *NapneHandler) DeleteAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.napne.DeleteAtendimento(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "atendimento deleted"})
}

// Encaminhar godoc
// POST /api/v1/napne/atendimentos/:id/encaminhamentos
func (h *NapneHandler) Encaminhar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.EncaminhamentoRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.napne.Encaminhar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, o)
}
