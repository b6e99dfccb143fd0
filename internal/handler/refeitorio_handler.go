package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// RefeitorioHandler handles the cafeteria kiosk and its administration.
type RefeitorioHandler struct {
	refeitorio *service.RefeitorioService
}

// NewRefeitorioHandler creates a new RefeitorioHandler.
func NewRefeitorioHandler(refeitorio *service.RefeitorioService) *RefeitorioHandler {
	return &RefeitorioHandler{refeitorio: refeitorio}
}

// checkinRejection is what the kiosk shows for a refused code.
type checkinRejection struct {
	Mensagem string `json:"mensagem"`
	Detalhes string `json:"detalhes"`
	Nome     string `json:"nome,omitempty"`
}

// Checkin godoc
// POST /api/v1/refeitorio/checkin
// Accepts a student matrícula or a servidor SIAPE read by the kiosk.
func (h *RefeitorioHandler) Checkin(c *gin.Context) {
	var req model.CheckinRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.refeitorio.Checkin.Registrar(c.Request.Context(), req.Codigo, c.ClientIP())
	if err != nil {
		var ce *service.CheckinError
		if m, ok := lookupError(err); ok && errors.As(err, &ce) {
			response.FailWithData(c, m.status, m.code, ce.Detalhes,
				checkinRejection{Mensagem: ce.Mensagem, Detalhes: ce.Detalhes, Nome: ce.Nome})
			return
		}
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// GetDashboard godoc
// GET /api/v1/refeitorio/dashboard
func (h *RefeitorioHandler) GetDashboard(c *gin.Context) {
	d, err := h.refeitorio.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// ListRegistros godoc
// GET /api/v1/refeitorio/registros?inicio=&fim=&page=&per_page=
func (h *RefeitorioHandler) ListRegistros(c *gin.Context) {
	inicio, fim, ok := periodo(c)
	if !ok {
		return
	}
	page, perPage := pageQuery(c)
	items, pagination, err := h.refeitorio.Registros(c.Request.Context(), inicio, fim, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetRelatorio godoc
// GET /api/v1/refeitorio/relatorio?inicio=&fim=
// Defaults to the current month.
func (h *RefeitorioHandler) GetRelatorio(c *gin.Context) {
	inicio, fim, ok := periodo(c)
	if !ok {
		return
	}
	r, err := h.refeitorio.Relatorio(c.Request.Context(), inicio, fim)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// GetRelatorioXLSX godoc
// GET /api/v1/refeitorio/relatorio.xlsx?inicio=&fim=
func (h *RefeitorioHandler) GetRelatorioXLSX(c *gin.Context) {
	inicio, fim, ok := periodo(c)
	if !ok {
		return
	}
	data, err := h.refeitorio.RelatorioXLSX(c.Request.Context(), inicio, fim)
	if err != nil {
		respondError(c, err)
		return
	}
	name := "refeitorio_" + inicio.String() + "_" + fim.String() + ".xlsx"
	sendFile(c, service.XLSXContentType, name, data)
}

// ─── Meal windows ──────────────────────────────────────────────────────

// ListConfigs godoc
// GET /api/v1/refeitorio/configs
func (h *RefeitorioHandler) ListConfigs(c *gin.Context) {
	items, err := h.refeitorio.ListConfigs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// CreateConfig godoc
// POST /api/v1/refeitorio/configs
func (h *RefeitorioHandler) CreateConfig(c *gin.Context) {
	var req model.ConfigRefeitorioRequest
	if !bind(c, &req) {
		return
	}
	cfg, err := h.refeitorio.CreateConfig(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cfg)
}

// UpdateConfig godoc
// PUT /api/v1/refeitorio/configs/:id
func (h *RefeitorioHandler) UpdateConfig(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ConfigRefeitorioRequest
	if !bind(c, &req) {
		return
	}
	cfg, err := h.refeitorio.UpdateConfig(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// DeleteConfig godoc
// DELETE /api/v1/refeitorio/configs/:id
func (h *RefeitorioHandler) DeleteConfig(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.refeitorio.DeleteConfig(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "config deleted"})
}

// SeedConfigs godoc
// POST /api/v1/refeitorio/configs/padrao
// Creates the default meal windows that do not exist yet.
func (h *RefeitorioHandler) SeedConfigs(c *gin.Context) {
	n, err := h.refeitorio.SeedConfigs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"created": n})
}

// ─── Blocks ────────────────────────────────────────────────────────────

// ListBloqueios godoc
// GET /api/v1/refeitorio/bloqueios?ativos=
func (h *RefeitorioHandler) ListBloqueios(c *gin.Context) {
	items, err := h.refeitorio.ListBloqueios(c.Request.Context(), soAtivos(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetBloqueio godoc
// GET /api/v1/refeitorio/bloqueios/:id
func (h *RefeitorioHandler) GetBloqueio(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.refeitorio.GetBloqueio(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// CreateBloqueio godoc
// POST /api/v1/refeitorio/bloqueios
// Exactly one of estudante_id or servidor_id must be set.
func (h *RefeitorioHandler) CreateBloqueio(c *gin.Context) {
	var req model.BloqueioRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.refeitorio.CreateBloqueio(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// UpdateBloqueio godoc
// PUT /api/v1/refeitorio/bloqueios/:id
func (h *RefeitorioHandler) UpdateBloqueio(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.BloqueioRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.refeitorio.UpdateBloqueio(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// DeactivateBloqueio godoc
// DELETE /api/v1/refeitorio/bloqueios/:id
func (h *RefeitorioHandler) DeactivateBloqueio(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.refeitorio.DeactivateBloqueio(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "bloqueio deactivated"})
}
