package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// EstudanteHandler handles students and their guardians.
type EstudanteHandler struct {
	estudantes *service.EstudanteService
}

// NewEstudanteHandler creates a new EstudanteHandler.
func NewEstudanteHandler(estudantes *service.EstudanteService) *EstudanteHandler {
	return &EstudanteHandler{estudantes: estudantes}
}

func estudanteFilter(c *gin.Context) model.EstudanteFilter {
	return model.EstudanteFilter{
		TurmaID:  queryInt(c, "turma_id"),
		CursoID:  queryInt(c, "curso_id"),
		Situacao: model.SituacaoEstudante(c.Query("situacao")),
		Busca:    c.Query("busca"),
	}
}

// ListEstudantes godoc
// GET /api/v1/estudantes?turma_id=&curso_id=&situacao=&busca=&page=&per_page=
func (h *EstudanteHandler) ListEstudantes(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.estudantes.List(c.Request.Context(), estudanteFilter(c), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// FiltrarEstudantes godoc
// GET /api/v1/estudantes/filtrar?turma_id=&curso_id=&busca=
// Unpaginated lookup used by the occurrence forms.
func (h *EstudanteHandler) FiltrarEstudantes(c *gin.Context) {
	items, err := h.estudantes.Filtrar(c.Request.Context(), estudanteFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetEstudante godoc
// GET /api/v1/estudantes/:id
func (h *EstudanteHandler) GetEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := h.estudantes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// CreateEstudante godoc
// POST /api/v1/estudantes
func (h *EstudanteHandler) CreateEstudante(c *gin.Context) {
	var req model.EstudanteRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.estudantes.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, e)
}

// UpdateEstudante godoc
// PUT /api/v1/estudantes/:id
func (h *EstudanteHandler) UpdateEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.EstudanteRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.estudantes.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// DeactivateEstudante godoc
// DELETE /api/v1/estudantes/:id
func (h *EstudanteHandler) DeactivateEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.estudantes.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "estudante deactivated"})
}

// UploadFoto godoc
// POST /api/v1/estudantes/:id/foto
// Accepts multipart/form-data with field "file" (jpg or png).
func (h *EstudanteHandler) UploadFoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	e, err := h.estudantes.UploadFoto(c.Request.Context(), id, file, header)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// GetRelatorio godoc
// GET /api/v1/estudantes/:id/relatorio
// Disciplinary history with quick occurrences, alerts and guardians.
func (h *EstudanteHandler) GetRelatorio(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.estudantes.Relatorio(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// DashboardTurma godoc
// GET /api/v1/turmas/:id/dashboard
func (h *EstudanteHandler) DashboardTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.estudantes.DashboardTurma(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ─── Responsáveis ──────────────────────────────────────────────────────

// ListResponsaveis godoc
// GET /api/v1/responsaveis?busca=&page=&per_page=
func (h *EstudanteHandler) ListResponsaveis(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.estudantes.ListResponsaveis(c.Request.Context(), c.Query("busca"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetResponsavel godoc
// GET /api/v1/responsaveis/:id
func (h *EstudanteHandler) GetResponsavel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.estudantes.GetResponsavel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// CreateResponsavel godoc
// POST /api/v1/responsaveis
func (h *EstudanteHandler) CreateResponsavel(c *gin.Context) {
	var req model.ResponsavelRequest
	if !bind(c, &req) {
		return
	}
	r, err := h.estudantes.CreateResponsavel(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

// UpdateResponsavel godoc
// PUT /api/v1/responsaveis/:id
func (h *EstudanteHandler) UpdateResponsavel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ResponsavelRequest
	if !bind(c, &req) {
		return
	}
	r, err := h.estudantes.UpdateResponsavel(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// DeleteResponsavel godoc
// DELETE /api/v1/responsaveis/:id
func (h *EstudanteHandler) DeleteResponsavel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.estudantes.DeleteResponsavel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "responsavel deleted"})
}

// ResponsaveisDoEstudante godoc
// GET /api/v1/estudantes/:id/responsaveis
func (h *EstudanteHandler) ResponsaveisDoEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.estudantes.ResponsaveisDoEstudante(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// VincularResponsavel godoc
// POST /api/v1/estudantes/:id/responsaveis
func (h *EstudanteHandler) VincularResponsavel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.VincularResponsavelRequest
	if !bind(c, &req) {
		return
	}
	if err := h.estudantes.VincularResponsavel(c.Request.Context(), id, req.ResponsavelID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": "responsavel linked"})
}

// DesvincularResponsavel godoc
// DELETE /api/v1/estudantes/:id/responsaveis/:responsavel_id
func (h *EstudanteHandler) DesvincularResponsavel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	responsavelID, ok := paramID(c, "responsavel_id")
	if !ok {
		return
	}
	if err := h.estudantes.DesvincularResponsavel(c.Request.Context(), id, responsavelID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "responsavel unlinked"})
}
