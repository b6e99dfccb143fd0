package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// PedagogicoHandler handles subjects, class councils and the student file.
type PedagogicoHandler struct {
	pedagogico *service.PedagogicoService
}

// NewPedagogicoHandler creates a new PedagogicoHandler.
func NewPedagogicoHandler(pedagogico *service.PedagogicoService) *PedagogicoHandler {
	return &PedagogicoHandler{pedagogico: pedagogico}
}

// ─── Disciplinas ───────────────────────────────────────────────────────

// ListDisciplinas godoc
// GET /api/v1/disciplinas?curso_id=&ativos=
func (h *PedagogicoHandler) ListDisciplinas(c *gin.Context) {
	items, err := h.pedagogico.ListDisciplinas(c.Request.Context(), queryInt(c, "curso_id"), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetDisciplina godoc
// GET /api/v1/disciplinas/:id
func (h *PedagogicoHandler) GetDisciplina(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.pedagogico.GetDisciplina(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// CreateDisciplina godoc
// POST /api/v1/disciplinas
func (h *PedagogicoHandler) CreateDisciplina(c *gin.Context) {
	var req model.DisciplinaRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.pedagogico.CreateDisciplina(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

// UpdateDisciplina godoc
// PUT /api/v1/disciplinas/:id
func (h *PedagogicoHandler) UpdateDisciplina(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.DisciplinaRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.pedagogico.UpdateDisciplina(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// DeactivateDisciplina godoc
// DELETE /api/v1/disciplinas/:id
func (h *PedagogicoHandler) DeactivateDisciplina(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.pedagogico.DeactivateDisciplina(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "disciplina deactivated"})
}

// ListDisciplinasTurma godoc
// GET /api/v1/turmas/:id/disciplinas?periodo=
func (h *PedagogicoHandler) ListDisciplinasTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.pedagogico.ListDisciplinasTurma(c.Request.Context(), id, c.Query("periodo"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateDisciplinaTurma godoc
// POST /api/v1/disciplinas-turma
func (h *PedagogicoHandler) CreateDisciplinaTurma(c *gin.Context) {
	var req model.DisciplinaTurmaRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.pedagogico.CreateDisciplinaTurma(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

// UpdateDisciplinaTurma godoc
// PUT /api/v1/disciplinas-turma/:id
func (h *PedagogicoHandler) UpdateDisciplinaTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.DisciplinaTurmaRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.pedagogico.UpdateDisciplinaTurma(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// DeleteDisciplinaTurma godoc
// DELETE /api/v1/disciplinas-turma/:id
func (h *PedagogicoHandler) DeleteDisciplinaTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.pedagogico.DeleteDisciplinaTurma(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "disciplina removed from turma"})
}

// ─── Conselhos de classe ───────────────────────────────────────────────

// ListConselhos godoc
// GET /api/v1/conselhos?turma_id=&periodo=
func (h *PedagogicoHandler) ListConselhos(c *gin.Context) {
	items, err := h.pedagogico.ListConselhos(c.Request.Context(), queryInt(c, "turma_id"), c.Query("periodo"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetConselho godoc
// GET /api/v1/conselhos/:id
// Includes the per-student records.
func (h *PedagogicoHandler) GetConselho(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.pedagogico.GetConselho(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// CreateConselho godoc
// POST /api/v1/conselhos
func (h *PedagogicoHandler) CreateConselho(c *gin.Context) {
	var req model.ConselhoRequest
	if !bind(c, &req) {
		return
	}
	cc, err := h.pedagogico.CreateConselho(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cc)
}

// UpdateConselho godoc
// PUT /api/v1/conselhos/:id
func (h *PedagogicoHandler) UpdateConselho(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ConselhoRequest
	if !bind(c, &req) {
		return
	}
	cc, err := h.pedagogico.UpdateConselho(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cc)
}

// DeleteConselho godoc
// DELETE /api/v1/conselhos/:id
func (h *PedagogicoHandler) DeleteConselho(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.pedagogico.DeleteConselho(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "conselho deleted"})
}

// SalvarInformacao godoc
// PUT /api/v1/conselhos/:id/estudantes
// Creates or replaces the record of one student in the council.
func (h *PedagogicoHandler) SalvarInformacao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.InformacaoEstudanteRequest
	if !bind(c, &req) {
		return
	}
	info, err := h.pedagogico.SalvarInformacao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// ListInformacoesDisciplina godoc
// GET /api/v1/conselhos/informacoes/:id/disciplinas
func (h *PedagogicoHandler) ListInformacoesDisciplina(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.pedagogico.ListInformacoesDisciplina(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetFicha godoc
// GET /api/v1/estudantes/:id/ficha
func (h *PedagogicoHandler) GetFicha(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := h.pedagogico.Ficha(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}
