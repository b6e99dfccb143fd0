package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

type UsuarioHandler struct {
	service *service.UsuarioService
}

func NewUsuarioHandler(service *service.UsuarioService) *UsuarioHandler {
	return &UsuarioHandler{service: service}
}

// ListUsuarios godoc
// GET /api/v1/usuarios?busca=&page=&per_page=
func (h *UsuarioHandler) ListUsuarios(c *gin.Context) {
	page, perPage := pageQuery(c)
	items, pagination, err := h.service.List(c.Request.Context(), c.Query("busca"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// GetUsuario godoc
// GET /api/v1/usuarios/:id
func (h *UsuarioHandler) GetUsuario(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// CreateUsuario godoc
// POST /api/v1/usuarios
func (h *UsuarioHandler) CreateUsuario(c *gin.Context) {
	var req model.CreateUsuarioRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// UpdateUsuario godoc
// PUT /api/v1/usuarios/:id
func (h *UsuarioHandler) UpdateUsuario(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateUsuarioRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// DeactivateUsuario godoc
// DELETE /api/v1/usuarios/:id
// Users cannot deactivate their own account.
func (h *UsuarioHandler) DeactivateUsuario(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "usuario deactivated"})
}
