package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// DashboardHandler handles dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/dashboard
// Returns the month counters, the status distribution and the last occurrences.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// GetComissaoData godoc
// GET /api/v1/dashboard/comissao
func (h *DashboardHandler) GetComissaoData(c *gin.Context) {
	data, err := h.dashboardService.GetComissaoData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// GetEstatisticas godoc
// GET /api/v1/dashboard/estatisticas
func (h *DashboardHandler) GetEstatisticas(c *gin.Context) {
	data, err := h.dashboardService.GetEstatisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
