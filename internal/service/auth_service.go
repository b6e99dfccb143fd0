package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// Claims extends JWT standard claims with the caller's identity and grants.
type Claims struct {
	jwt.RegisteredClaims
	UsuarioID   int               `json:"usuario_id"`
	ServidorID  *int              `json:"servidor_id,omitempty"`
	Coordenacao model.Coordenacao `json:"coordenacao,omitempty"`
	Comissao    bool              `json:"comissao,omitempty"`
	Superuser   bool              `json:"superuser,omitempty"`
	RoleID      int               `json:"role_id"`
	Permissions []string          `json:"permissions"`
}

// Actor returns the service-level view of the claims.
func (c *Claims) Actor() Actor {
	return Actor{
		UsuarioID:   c.UsuarioID,
		ServidorID:  c.ServidorID,
		Coordenacao: c.Coordenacao,
		Comissao:    c.Comissao,
		Superuser:   c.Superuser,
		Permissions: c.Permissions,
	}
}

// Me is the profile returned to the logged in user.
type Me struct {
	Usuario     *model.Usuario  `json:"usuario"`
	Servidor    *model.Servidor `json:"servidor"`
	Permissions []string        `json:"permissions"`
}

// AuthService handles authentication, JWT and token revocation.
type AuthService struct {
	cfg          *config.Config
	rdb          *redis.Client
	usuarioRepo  *repository.UsuarioRepository
	servidorRepo *repository.ServidorRepository
	roleRepo     *repository.RoleRepository
	log          zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	rdb *redis.Client,
	usuarioRepo *repository.UsuarioRepository,
	servidorRepo *repository.ServidorRepository,
	roleRepo *repository.RoleRepository,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:          cfg,
		rdb:          rdb,
		usuarioRepo:  usuarioRepo,
		servidorRepo: servidorRepo,
		roleRepo:     roleRepo,
		log:          log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates by username or email and issues a token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.LoginResponse, error) {
	u, err := s.usuarioRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	if !u.Ativo {
		return nil, ErrUserInactive
	}

	servidor, perms, err := s.resolveGrants(ctx, u)
	if err != nil {
		return nil, err
	}

	token, expires, err := s.GenerateToken(u, servidor, perms)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("usuario_id", u.ID).Msg("User logged in")
	return &model.LoginResponse{
		Token:       token,
		ExpiresAt:   expires,
		Usuario:     *u,
		Servidor:    servidor,
		Permissions: perms,
	}, nil
}

// resolveGrants loads the staff profile and the effective permissions of u.
func (s *AuthService) resolveGrants(ctx context.Context, u *model.Usuario) (*model.Servidor, []string, error) {
	rolePerms, err := s.roleRepo.GetPermissionsByRoleID(ctx, u.RoleID)
	if err != nil {
		return nil, nil, fmt.Errorf("load permissions: %w", err)
	}

	servidor, err := s.servidorRepo.GetByUsuarioID(ctx, u.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("load servidor: %w", err)
		}
		servidor = nil
	}
	if servidor != nil && !servidor.Ativo {
		servidor = nil
	}

	return servidor, model.EffectivePermissions(rolePerms, u, servidor), nil
}

// GenerateToken signs a JWT for u with the staff profile and permissions embedded.
func (s *AuthService) GenerateToken(u *model.Usuario, servidor *model.Servidor, permissions []string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UsuarioID:   u.ID,
		Superuser:   u.IsSuperuser,
		RoleID:      u.RoleID,
		Permissions: permissions,
	}
	if servidor != nil {
		id := servidor.ID
		claims.ServidorID = &id
		claims.Coordenacao = servidor.Coordenacao
		claims.Comissao = servidor.MembroComissaoDisciplinar
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(claims.ID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Int("usuario_id", claims.UsuarioID).Msg("User logged out")
	return nil
}

// IsRevoked reports whether the token id was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// Me returns the current profile with freshly computed permissions.
func (s *AuthService) Me(ctx context.Context, usuarioID int) (*Me, error) {
	u, err := s.usuarioRepo.GetByID(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !u.Ativo {
		return nil, ErrUserInactive
	}
	servidor, perms, err := s.resolveGrants(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Me{Usuario: u, Servidor: servidor, Permissions: perms}, nil
}
