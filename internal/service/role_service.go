package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
)

// Role errors.
var (
	ErrProtectedRole     = errors.New("the administrator role cannot be changed")
	ErrUnknownPermission = errors.New("unknown permission code")
)

// RoleService handles business logic for RBAC roles.
type RoleService struct {
	roleRepo *repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// ListRoles retrieves all roles with their permissions.
func (s *RoleService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.ListRolesWithPermissions(ctx)
}

// GetRoleByID retrieves a specific role and its permissions.
func (s *RoleService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	return s.roleRepo.GetRoleByID(ctx, id)
}

// CreateRole creates a role and assigns its permissions in one transaction.
func (s *RoleService) CreateRole(ctx context.Context, req model.RoleRequest) (*model.RoleWithPermissions, error) {
	codes, err := checkPermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	id, err := s.roleRepo.CreateRole(ctx, strings.TrimSpace(req.Name), codes)
	if err != nil {
		return nil, err
	}
	return s.GetRoleByID(ctx, id)
}

// UpdateRole renames a role and replaces its permissions.
func (s *RoleService) UpdateRole(ctx context.Context, id int, req model.RoleRequest) (*model.RoleWithPermissions, error) {
	if err := s.guard(ctx, id); err != nil {
		return nil, err
	}
	codes, err := checkPermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.roleRepo.UpdateRole(ctx, id, strings.TrimSpace(req.Name), codes); err != nil {
		return nil, err
	}
	return s.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role. Roles still assigned to users fail with repository.ErrReferenced.
func (s *RoleService) DeleteRole(ctx context.Context, id int) error {
	if err := s.guard(ctx, id); err != nil {
		return err
	}
	return s.roleRepo.DeleteRole(ctx, id)
}

// guard rejects changes to the administrator role, whose grants are kept in sync by sync-superuser.
func (s *RoleService) guard(ctx context.Context, id int) error {
	role, err := s.roleRepo.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	if role.Name == model.RoleAdministrador {
		return ErrProtectedRole
	}
	return nil
}

// GetAllPermissions retrieves all available system permission codes.
func (s *RoleService) GetAllPermissions() []string {
	perms := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		perms[i] = string(p)
	}
	return perms
}

// checkPermissions rejects unknown codes and drops duplicates.
func checkPermissions(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if !slices.Contains(model.AllPermissions, model.Permission(c)) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, c)
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}
