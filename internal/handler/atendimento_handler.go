package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// AtendimentoHandler handles the attendance records of the coordinations.
type AtendimentoHandler struct {
	atendimentos *service.AtendimentoService
}

// NewAtendimentoHandler creates a new AtendimentoHandler.
func NewAtendimentoHandler(atendimentos *service.AtendimentoService) *AtendimentoHandler {
	return &AtendimentoHandler{atendimentos: atendimentos}
}

// ListTipos godoc
// GET /api/v1/atendimentos/tipos?ativos=
func (h *AtendimentoHandler) ListTipos(c *gin.Context) {
	items, err := h.atendimentos.ListTipos(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateTipo godoc
// POST /api/v1/atendimentos/tipos
func (h *AtendimentoHandler) CreateTipo(c *gin.Context) {
	var req model.CatalogoRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.atendimentos.CreateTipo(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

// UpdateTipo godoc
// PUT /api/v1/atendimentos/tipos/:id
func (h *AtendimentoHandler) UpdateTipo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CatalogoRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.atendimentos.UpdateTipo(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

// ListSituacoes godoc
// GET /api/v1/atendimentos/situacoes?ativos=
func (h *AtendimentoHandler) ListSituacoes(c *gin.Context) {
	items, err := h.atendimentos.ListSituacoes(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateSituacao godoc
// POST /api/v1/atendimentos/situacoes
func (h *AtendimentoHandler) CreateSituacao(c *gin.Context) {
	var req model.CatalogoRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.atendimentos.CreateSituacao(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, s)
}

// UpdateSituacao godoc
// PUT /api/v1/atendimentos/situacoes/:id
func (h *AtendimentoHandler) UpdateSituacao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CatalogoRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.atendimentos.UpdateSituacao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, s)
}

// ListAtendimentos godoc
// GET /api/v1/atendimentos?coordenacao=&estudante_id=&tipo_id=&situacao_id=&inicio=&fim=&publicados=
func (h *AtendimentoHandler) ListAtendimentos(c *gin.Context) {
	inicio, ok := queryDate(c, "inicio")
	if !ok {
		return
	}
	fim, ok := queryDate(c, "fim")
	if !ok {
		return
	}
	af := model.AtendimentoFilter{
		Coordenacao: model.Coordenacao(c.Query("coordenacao")),
		EstudanteID: queryInt(c, "estudante_id"),
		TipoID:      queryInt(c, "tipo_id"),
		SituacaoID:  queryInt(c, "situacao_id"),
		Inicio:      inicio,
		Fim:         fim,
		Publicados:  queryBool(c, "publicados"),
	}
	page, perPage := pageQuery(c)
	items, pagination, err := h.atendimentos.List(c.Request.Context(), af, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetAtendimento godoc
// GET /api/v1/atendimentos/:id
func (h *AtendimentoHandler) GetAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := h.atendimentos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// CreateAtendimento godoc
// POST /api/v1/atendimentos
func (h *AtendimentoHandler) CreateAtendimento(c *gin.Context) {
	var req model.AtendimentoRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.atendimentos.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

// UpdateAtendimento godoc
// PUT /api/v1/atendimentos/:id
func (h *AtendimentoHandler) UpdateAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.AtendimentoRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.atendimentos.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// DeleteAtendimento godoc
// DELETE /api/v1/atendimentos/:id
func (h *AtendimentoHandler) DeleteAtendimento(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.atendimentos.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "atendimento deleted"})
}
