package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
)

type RoleHandler struct {
	service *service.RoleService
}

func NewRoleHandler(service *service.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// ListRoles gets all roles with their associated permissions.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GetRole gets a role and its permissions by ID.
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	role, err := h.service.GetRoleByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, role)
}

// CreateRole creates a new role with given permissions.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req model.RoleRequest
	if !bind(c, &req) {
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// UpdateRole replaces the name and the permission set. The administrator role is read-only.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.RoleRequest
	if !bind(c, &req) {
		return
	}

	role, err := h.service.UpdateRole(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DeleteRole removes a role no user is assigned to.
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRole(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "role deleted"})
}

// ListPermissions returns every permission code a role can be granted.
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.GetAllPermissions())
}
