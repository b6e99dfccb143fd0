package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// CadastroHandler handles the registry: campi, courses, classes, staff,
// infractions, sanctions and quick occurrence types.
type CadastroHandler struct {
	service *service.CadastroService
}

// NewCadastroHandler creates a new CadastroHandler.
func NewCadastroHandler(service *service.CadastroService) *CadastroHandler {
	return &CadastroHandler{service: service}
}

// ─── Campi ─────────────────────────────────────────────────────────────

// ListCampi godoc
// GET /api/v1/campi?ativos=
func (h *CadastroHandler) ListCampi(c *gin.Context) {
	items, err := h.service.ListCampi(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetCampus godoc
// GET /api/v1/campi/:id
func (h *CadastroHandler) GetCampus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetCampus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateCampus godoc
// POST /api/v1/campi
func (h *CadastroHandler) CreateCampus(c *gin.Context) {
	var req model.CampusRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateCampus(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateCampus godoc
// PUT /api/v1/campi/:id
func (h *CadastroHandler) UpdateCampus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CampusRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateCampus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateCampus godoc
// DELETE /api/v1/campi/:id
func (h *CadastroHandler) DeactivateCampus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateCampus(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "campus deactivated"})
}

// ─── Cursos ────────────────────────────────────────────────────────────

// ListCursos godoc
// GET /api/v1/cursos?campus_id=&ativos=
func (h *CadastroHandler) ListCursos(c *gin.Context) {
	items, err := h.service.ListCursos(c.Request.Context(), queryInt(c, "campus_id"), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetCurso godoc
// GET /api/v1/cursos/:id
func (h *CadastroHandler) GetCurso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetCurso(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateCurso godoc
// POST /api/v1/cursos
func (h *CadastroHandler) CreateCurso(c *gin.Context) {
	var req model.CursoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateCurso(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateCurso godoc
// PUT /api/v1/cursos/:id
func (h *CadastroHandler) UpdateCurso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.CursoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateCurso(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateCurso godoc
// DELETE /api/v1/cursos/:id
func (h *CadastroHandler) DeactivateCurso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateCurso(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "curso deactivated"})
}

// ─── Turmas ────────────────────────────────────────────────────────────

// ListTurmas godoc
// GET /api/v1/turmas?curso_id=&ano=&ativos=
func (h *CadastroHandler) ListTurmas(c *gin.Context) {
	items, err := h.service.ListTurmas(c.Request.Context(), queryInt(c, "curso_id"), queryInt(c, "ano"), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetTurma godoc
// GET /api/v1/turmas/:id
func (h *CadastroHandler) GetTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetTurma(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateTurma godoc
// POST /api/v1/turmas
func (h *CadastroHandler) CreateTurma(c *gin.Context) {
	var req model.TurmaRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateTurma(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateTurma godoc
// PUT /api/v1/turmas/:id
func (h *CadastroHandler) UpdateTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.TurmaRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateTurma(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateTurma godoc
// DELETE /api/v1/turmas/:id
func (h *CadastroHandler) DeactivateTurma(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateTurma(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "turma deactivated"})
}

// ─── Servidores ────────────────────────────────────────────────────────

func servidorFilter(c *gin.Context) model.ServidorFilter {
	sf := model.ServidorFilter{
		Coordenacao: model.Coordenacao(c.Query("coordenacao")),
		Busca:       c.Query("busca"),
		SoAtivos:    soAtivos(c),
	}
	if v := c.Query("comissao"); v != "" {
		b := queryBool(c, "comissao")
		sf.Comissao = &b
	}
	return sf
}

// ListServidores godoc
// GET /api/v1/servidores?coordenacao=&comissao=&busca=&ativos=&page=&per_page=
func (h *CadastroHandler) ListServidores(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.service.ListServidores(c.Request.Context(), servidorFilter(c), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// FiltrarServidores godoc
// GET /api/v1/servidores/filtrar?busca=
// Autocomplete lookup.
func (h *CadastroHandler) FiltrarServidores(c *gin.Context) {
	items, err := h.service.FiltrarServidores(c.Request.Context(), servidorFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetServidor godoc
// GET /api/v1/servidores/:id
func (h *CadastroHandler) GetServidor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetServidor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateServidor godoc
// POST /api/v1/servidores
func (h *CadastroHandler) CreateServidor(c *gin.Context) {
	var req model.ServidorRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateServidor(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateServidor godoc
// PUT /api/v1/servidores/:id
func (h *CadastroHandler) UpdateServidor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ServidorRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateServidor(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateServidor godoc
// DELETE /api/v1/servidores/:id
func (h *CadastroHandler) DeactivateServidor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateServidor(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "servidor deactivated"})
}

// ─── Infrações ─────────────────────────────────────────────────────────

// ListInfracoes godoc
// GET /api/v1/infracoes?ativos=
func (h *CadastroHandler) ListInfracoes(c *gin.Context) {
	items, err := h.service.ListInfracoes(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetInfracao godoc
// GET /api/v1/infracoes/:id
func (h *CadastroHandler) GetInfracao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetInfracao(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateInfracao godoc
// POST /api/v1/infracoes
func (h *CadastroHandler) CreateInfracao(c *gin.Context) {
	var req model.InfracaoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateInfracao(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateInfracao godoc
// PUT /api/v1/infracoes/:id
func (h *CadastroHandler) UpdateInfracao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.InfracaoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateInfracao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateInfracao godoc
// DELETE /api/v1/infracoes/:id
func (h *CadastroHandler) DeactivateInfracao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateInfracao(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "infracao deactivated"})
}

// ─── Sanções ───────────────────────────────────────────────────────────

// ListSancoes godoc
// GET /api/v1/sancoes
func (h *CadastroHandler) ListSancoes(c *gin.Context) {
	items, err := h.service.ListSancoes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetSancao godoc
// GET /api/v1/sancoes/:id
func (h *CadastroHandler) GetSancao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetSancao(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateSancao godoc
// POST /api/v1/sancoes
func (h *CadastroHandler) CreateSancao(c *gin.Context) {
	var req model.SancaoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateSancao(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateSancao godoc
// PUT /api/v1/sancoes/:id
func (h *CadastroHandler) UpdateSancao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SancaoRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateSancao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeleteSancao godoc
// DELETE /api/v1/sancoes/:id
// Fails with 409 while an occurrence applies the sanction.
func (h *CadastroHandler) DeleteSancao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSancao(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "sancao deleted"})
}

// ─── Tipos de ocorrência rápida ────────────────────────────────────────

// ListTiposRapidos godoc
// GET /api/v1/tipos-rapidos?ativos=
func (h *CadastroHandler) ListTiposRapidos(c *gin.Context) {
	items, err := h.service.ListTiposRapidos(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateTipoRapido godoc
// POST /api/v1/tipos-rapidos
func (h *CadastroHandler) CreateTipoRapido(c *gin.Context) {
	var req model.TipoOcorrenciaRapidaRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateTipoRapido(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateTipoRapido godoc
// PUT /api/v1/tipos-rapidos/:id
func (h *CadastroHandler) UpdateTipoRapido(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.TipoOcorrenciaRapidaRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.UpdateTipoRapido(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeactivateTipoRapido godoc
// DELETE /api/v1/tipos-rapidos/:id
func (h *CadastroHandler) DeactivateTipoRapido(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateTipoRapido(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "tipo deactivated"})
}
