package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// RapidaHandler handles quick occurrences and the monthly threshold alerts.
type RapidaHandler struct {
	rapidas    *service.RapidaService
	limites    *service.LimiteService
	documentos *service.DocumentoService
}

// NewRapidaHandler creates a new RapidaHandler.
func NewRapidaHandler(rapidas *service.RapidaService, limites *service.LimiteService, documentos *service.DocumentoService) *RapidaHandler {
	return &RapidaHandler{rapidas: rapidas, limites: limites, documentos: documentos}
}

// ListRapidas godoc
// GET /api/v1/rapidas?estudante_id=&turma_id=&tipo_id=&inicio=&fim=&page=&per_page=
func (h *RapidaHandler) ListRapidas(c *gin.Context) {
	inicio, ok := queryDate(c, "inicio")
	if !ok {
		return
	}
	fim, ok := queryDate(c, "fim")
	if !ok {
		return
	}
	rf := model.OcorrenciaRapidaFilter{
		EstudanteID: queryInt(c, "estudante_id"),
		TurmaID:     queryInt(c, "turma_id"),
		TipoID:      queryInt(c, "tipo_id"),
		Inicio:      inicio,
		Fim:         fim,
	}
	page, perPage := pageQuery(c)
	items, pagination, err := h.rapidas.List(c.Request.Context(), rf, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetRapida godoc
// GET /api/v1/rapidas/:id
func (h *RapidaHandler) GetRapida(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.rapidas.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// CreateRapida godoc
// POST /api/v1/rapidas
// One record covers several students and several types.
func (h *RapidaHandler) CreateRapida(c *gin.Context) {
	var req model.OcorrenciaRapidaRequest
	if !bind(c, &req) {
		return
	}
	r, err := h.rapidas.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

// UpdateRapida godoc
// PUT /api/v1/rapidas/:id
func (h *RapidaHandler) UpdateRapida(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.OcorrenciaRapidaRequest
	if !bind(c, &req) {
		return
	}
	r, err := h.rapidas.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// DeleteRapida godoc
// DELETE /api/v1/rapidas/:id
func (h *RapidaHandler) DeleteRapida(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.rapidas.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "rapida deleted"})
}

// GetDashboard godoc
// GET /api/v1/rapidas/dashboard
func (h *RapidaHandler) GetDashboard(c *gin.Context) {
	d, err := h.rapidas.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// GerarRecibo godoc
// POST /api/v1/rapidas/:id/recibo
// Renders the receipt PDF and returns it as a download.
func (h *RapidaHandler) GerarRecibo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.documentos.GerarRecibo(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	_, path, err := h.documentos.Open(c.Request.Context(), d.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// ─── Threshold configuration ───────────────────────────────────────────

// ListLimites godoc
// GET /api/v1/limites
func (h *RapidaHandler) ListLimites(c *gin.Context) {
	items, err := h.limites.ListConfiguracoes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetLimite godoc
// GET /api/v1/limites/:id
func (h *RapidaHandler) GetLimite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cfg, err := h.limites.GetConfiguracao(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// CreateLimite godoc
// POST /api/v1/limites
// There is at most one configuration per quick occurrence type.
func (h *RapidaHandler) CreateLimite(c *gin.Context) {
	var req model.ConfiguracaoLimiteRequest
	if !bind(c, &req) {
		return
	}
	cfg, err := h.limites.CreateConfiguracao(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cfg)
}

// UpdateLimite godoc
// PUT /api/v1/limites/:id
func (h *RapidaHandler) UpdateLimite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ConfiguracaoLimiteRequest
	if !bind(c, &req) {
		return
	}
	cfg, err := h.limites.UpdateConfiguracao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// DeactivateLimite godoc
// DELETE /api/v1/limites/:id
func (h *RapidaHandler) DeactivateLimite(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.limites.DeactivateConfiguracao(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "limite deactivated"})
}

// ListAlertas godoc
// GET /api/v1/limites/alertas?mes=YYYY-MM-DD&estudante_id=&tipo_id=&page=&per_page=
func (h *RapidaHandler) ListAlertas(c *gin.Context) {
	mes, ok := queryDate(c, "mes")
	if !ok {
		return
	}
	af := model.AlertaFilter{
		Mes:         mes,
		EstudanteID: queryInt(c, "estudante_id"),
		TipoID:      queryInt(c, "tipo_id"),
	}
	page, perPage := pageQuery(c)
	items, pagination, err := h.limites.ListAlertas(c.Request.Context(), af, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}
