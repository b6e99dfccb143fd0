package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// ErrSelfDeactivation is returned when a user tries to deactivate their own account.
var ErrSelfDeactivation = errors.New("users cannot deactivate themselves")

// UsuarioService manages login accounts.
type UsuarioService struct {
	usuarioRepo *repository.UsuarioRepository
	roleRepo    *repository.RoleRepository
	auth        *AuthService
	log         zerolog.Logger
}

// NewUsuarioService creates a new UsuarioService.
func NewUsuarioService(usuarioRepo *repository.UsuarioRepository, roleRepo *repository.RoleRepository, auth *AuthService, log zerolog.Logger) *UsuarioService {
	return &UsuarioService{
		usuarioRepo: usuarioRepo,
		roleRepo:    roleRepo,
		auth:        auth,
		log:         log.With().Str("component", "usuario_service").Logger(),
	}
}

// List retrieves a page of accounts matching busca.
func (s *UsuarioService) List(ctx context.Context, busca string, page, perPage int) ([]model.Usuario, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.usuarioRepo.ListPaginated(ctx, strings.TrimSpace(busca), perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Usuario{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

// Get retrieves one account.
func (s *UsuarioService) Get(ctx context.Context, id int) (*model.Usuario, error) {
	return s.usuarioRepo.GetByID(ctx, id)
}

// Create registers a new account with a hashed password.
func (s *UsuarioService) Create(ctx context.Context, req model.CreateUsuarioRequest) (*model.Usuario, error) {
	if _, err := s.roleRepo.GetRoleByID(ctx, req.RoleID); err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Nome:         strings.TrimSpace(req.Nome),
		PasswordHash: hash,
		RoleID:       req.RoleID,
		IsSuperuser:  req.IsSuperuser,
		Ativo:        true,
	}
	if err := s.usuarioRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Int("usuario_id", u.ID).Str("username", u.Username).Msg("Usuario created")
	return u, nil
}

// Update changes an account. An empty password keeps the current one.
func (s *UsuarioService) Update(ctx context.Context, actor Actor, id int, req model.UpdateUsuarioRequest) (*model.Usuario, error) {
	u, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.roleRepo.GetRoleByID(ctx, req.RoleID); err != nil {
		return nil, err
	}
	if req.Ativo != nil && !*req.Ativo && actor.UsuarioID == id {
		return nil, ErrSelfDeactivation
	}

	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Nome = strings.TrimSpace(req.Nome)
	u.RoleID = req.RoleID
	u.IsSuperuser = req.IsSuperuser
	u.Ativo = model.BoolOr(req.Ativo, u.Ativo)
	if err := s.usuarioRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.usuarioRepo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}
	return s.usuarioRepo.GetByID(ctx, id)
}

// Deactivate disables an account. Accounts are never hard deleted.
func (s *UsuarioService) Deactivate(ctx context.Context, actor Actor, id int) error {
	if actor.UsuarioID == id {
		return ErrSelfDeactivation
	}
	if err := s.usuarioRepo.SetAtivo(ctx, id, false); err != nil {
		return err
	}
	s.log.Info().Int("usuario_id", id).Msg("Usuario deactivated")
	return nil
}
