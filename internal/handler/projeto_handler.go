package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// ProjetoHandler handles projects, their participants and report alerts.
type ProjetoHandler struct {
	projetos *service.ProjetoService
}

// NewProjetoHandler creates a new ProjetoHandler.
func NewProjetoHandler(projetos *service.ProjetoService) *ProjetoHandler {
	return &ProjetoHandler{projetos: projetos}
}

// ListProjetos godoc
// GET /api/v1/projetos?situacao=&tipo=&coordenador_id=&busca=&page=&per_page=
// Users without projetos:manage see only the projects they coordinate or join.
func (h *ProjetoHandler) ListProjetos(c *gin.Context) {
	pf := model.ProjetoFilter{
		Situacao:      model.SituacaoProjeto(c.Query("situacao")),
		Tipo:          model.TipoProjeto(c.Query("tipo")),
		CoordenadorID: queryInt(c, "coordenador_id"),
		Busca:         c.Query("busca"),
	}
	page, perPage := pageQuery(c)
	items, pagination, err := h.projetos.List(c.Request.Context(), middleware.GetActor(c), pf, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetProjeto godoc
// GET /api/v1/projetos/:id
func (h *ProjetoHandler) GetProjeto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.projetos.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// CreateProjeto godoc
// POST /api/v1/projetos
func (h *ProjetoHandler) CreateProjeto(c *gin.Context) {
	var req model.ProjetoRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.projetos.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UpdateProjeto godoc
// PUT /api/v1/projetos/:id
func (h *ProjetoHandler) UpdateProjeto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ProjetoRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.projetos.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// DeleteProjeto godoc
// DELETE /api/v1/projetos/:id
func (h *ProjetoHandler) DeleteProjeto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.projetos.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "projeto deleted"})
}

// RegistrarRelatorio godoc
// POST /api/v1/projetos/:id/relatorio
// Records a delivered report and moves the next due date forward.
func (h *ProjetoHandler) RegistrarRelatorio(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.projetos.RegistrarRelatorio(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ─── Participants ──────────────────────────────────────────────────────

// ListServidores godoc
// GET /api/v1/projetos/:id/servidores
func (h *ProjetoHandler) ListServidores(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.projetos.ListServidores(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// AdicionarServidor godoc
// POST /api/v1/projetos/:id/servidores
// Rejects the participation when the servidor would exceed the weekly hours cap.
func (h *ProjetoHandler) AdicionarServidor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ParticipacaoServidorRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.projetos.AdicionarServidor(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// RemoverServidor godoc
// DELETE /api/v1/projetos/:id/servidores/:participacao_id
func (h *ProjetoHandler) RemoverServidor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	participacaoID, ok := paramID(c, "participacao_id")
	if !ok {
		return
	}
	if err := h.projetos.RemoverServidor(c.Request.Context(), middleware.GetActor(c), id, participacaoID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "participacao removed"})
}

// ListEstudantes godoc
// GET /api/v1/projetos/:id/estudantes
func (h *ProjetoHandler) ListEstudantes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.projetos.ListEstudantes(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// AdicionarEstudante godoc
// POST /api/v1/projetos/:id/estudantes
func (h *ProjetoHandler) AdicionarEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ParticipacaoEstudanteRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.projetos.AdicionarEstudante(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// RemoverEstudante godoc
// DELETE /api/v1/projetos/:id/estudantes/:participacao_id
func (h *ProjetoHandler) RemoverEstudante(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	participacaoID, ok := paramID(c, "participacao_id")
	if !ok {
		return
	}
	if err := h.projetos.RemoverEstudante(c.Request.Context(), middleware.GetActor(c), id, participacaoID); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "participacao removed"})
}

// ─── Report alerts ─────────────────────────────────────────────────────

// ListAlertas godoc
// GET /api/v1/projetos/alertas?nao_visualizados=true
func (h *ProjetoHandler) ListAlertas(c *gin.Context) {
	items, err := h.projetos.ListAlertas(c.Request.Context(), middleware.GetActor(c), queryBool(c, "nao_visualizados"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// MarcarAlertaVisualizado godoc
// POST /api/v1/projetos/alertas/:id/visualizado
func (h *ProjetoHandler) MarcarAlertaVisualizado(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.projetos.MarcarAlertaVisualizado(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "alerta marked as seen"})
}

// VerificarRelatorios godoc
// POST /api/v1/projetos/relatorios/verificar
// Runs the daily report check on demand.
func (h *ProjetoHandler) VerificarRelatorios(c *gin.Context) {
	res, err := h.projetos.VerificarRelatorios(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// ─── Reports ───────────────────────────────────────────────────────────

// HorasPorServidor godoc
// GET /api/v1/projetos/relatorios/horas?semestre=2026.1
func (h *ProjetoHandler) HorasPorServidor(c *gin.Context) {
	items, err := h.projetos.HorasPorServidor(c.Request.Context(), c.Query("semestre"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// HorasPorServidorXLSX godoc
// GET /api/v1/projetos/relatorios/horas.xlsx?semestre=
func (h *ProjetoHandler) HorasPorServidorXLSX(c *gin.Context) {
	semestre := c.Query("semestre")
	data, err := h.projetos.HorasPorServidorXLSX(c.Request.Context(), semestre)
	if err != nil {
		respondError(c, err)
		return
	}
	name := "horas_servidores.xlsx"
	if semestre != "" {
		name = "horas_servidores_" + semestre + ".xlsx"
	}
	sendFile(c, service.XLSXContentType, name, data)
}

// Estatisticas godoc
// GET /api/v1/projetos/estatisticas
func (h *ProjetoHandler) Estatisticas(c *gin.Context) {
	e, err := h.projetos.Estatisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// RelatoriosPendentes godoc
// GET /api/v1/projetos/relatorios/pendentes
func (h *ProjetoHandler) RelatoriosPendentes(c *gin.Context) {
	items, err := h.projetos.RelatoriosPendentes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}
