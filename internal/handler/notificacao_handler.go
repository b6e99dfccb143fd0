package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

// NotificacaoHandler serves the in-app notifications of the logged user.
type NotificacaoHandler struct {
	notificacoes *service.NotificacaoService
}

// NewNotificacaoHandler creates a new NotificacaoHandler.
func NewNotificacaoHandler(notificacoes *service.NotificacaoService) *NotificacaoHandler {
	return &NotificacaoHandler{notificacoes: notificacoes}
}

// ListNotificacoes godoc
// GET /api/v1/notificacoes?nao_lidas=true&page=&per_page=
func (h *NotificacaoHandler) ListNotificacoes(c *gin.Context) {
	actor := middleware.GetActor(c)
	page, perPage := pageQuery(c)
	items, pagination, err := h.notificacoes.List(c.Request.Context(), actor.UsuarioID, queryBool(c, "nao_lidas"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// Recentes godoc
// GET /api/v1/notificacoes/recentes
func (h *NotificacaoHandler) Recentes(c *gin.Context) {
	items, err := h.notificacoes.Recentes(c.Request.Context(), middleware.GetActor(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ContarNaoLidas godoc
// GET /api/v1/notificacoes/nao-lidas
func (h *NotificacaoHandler) ContarNaoLidas(c *gin.Context) {
	n, err := h.notificacoes.ContarNaoLidas(c.Request.Context(), middleware.GetActor(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n})
}

// MarcarLida godoc
// POST /api/v1/notificacoes/:id/lida
// Only the owner can mark a notification; others answer 404.
func (h *NotificacaoHandler) MarcarLida(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.notificacoes.MarcarLida(c.Request.Context(), middleware.GetActor(c).UsuarioID, id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "notificacao marked as read"})
}

// MarcarTodasLidas godoc
// POST /api/v1/notificacoes/lidas
func (h *NotificacaoHandler) MarcarTodasLidas(c *gin.Context) {
	n, err := h.notificacoes.MarcarTodasLidas(c.Request.Context(), middleware.GetActor(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}

// GetPreferencias godoc
// GET /api/v1/notificacoes/preferencias
func (h *NotificacaoHandler) GetPreferencias(c *gin.Context) {
	p, err := h.notificacoes.GetPreferencias(c.Request.Context(), middleware.GetActor(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdatePreferencias godoc
// PUT /api/v1/notificacoes/preferencias
func (h *NotificacaoHandler) UpdatePreferencias(c *gin.Context) {
	var req model.PreferenciaRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.notificacoes.UpdatePreferencias(c.Request.Context(), middleware.GetActor(c).UsuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}
