package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsuarioRepository handles login account data access.
type UsuarioRepository struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository creates a new UsuarioRepository.
func NewUsuarioRepository(pool *pgxpool.Pool) *UsuarioRepository {
	return &UsuarioRepository{pool: pool}
}

const usuarioColumns = `u.id, u.username, u.email, u.nome, u.password_hash, u.role_id, r.name,
	u.is_superuser, u.ativo, u.created_at, u.updated_at`

func scanUsuario(row interface{ Scan(...interface{}) error }, u *model.Usuario) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Nome, &u.PasswordHash, &u.RoleID, &u.RoleName,
		&u.IsSuperuser, &u.Ativo, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves an account by ID.
func (r *UsuarioRepository) GetByID(ctx context.Context, id int) (*model.Usuario, error) {
	u := &model.Usuario{}
	err := scanUsuario(r.pool.QueryRow(ctx,
		`SELECT `+usuarioColumns+`
		 FROM usuarios u JOIN roles r ON u.role_id = r.id
		 WHERE u.id = $1`, id,
	), u)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// GetByLogin retrieves an account by username or email, case-insensitively.
func (r *UsuarioRepository) GetByLogin(ctx context.Context, login string) (*model.Usuario, error) {
	u := &model.Usuario{}
	err := scanUsuario(r.pool.QueryRow(ctx,
		`SELECT `+usuarioColumns+`
		 FROM usuarios u JOIN roles r ON u.role_id = r.id
		 WHERE LOWER(u.username) = LOWER($1) OR LOWER(u.email) = LOWER($1)
		 ORDER BY u.id LIMIT 1`, login,
	), u)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// ListPaginated retrieves accounts, optionally filtered by a search term.
func (r *UsuarioRepository) ListPaginated(ctx context.Context, busca string, limit, offset int) ([]model.Usuario, int, error) {
	var f filter
	if busca != "" {
		f.add(`(u.nome ILIKE ? OR u.username ILIKE ? OR u.email ILIKE ?)`, "%"+busca+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios u`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, args := f.page(limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+usuarioColumns+` FROM usuarios u JOIN roles r ON u.role_id = r.id`+f.where()+
			` ORDER BY u.nome`+paging, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var usuarios []model.Usuario
	for rows.Next() {
		var u model.Usuario
		if err := scanUsuario(rows, &u); err != nil {
			return nil, 0, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, total, rows.Err()
}

// Create inserts a new account.
func (r *UsuarioRepository) Create(ctx context.Context, u *model.Usuario) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO usuarios (username, email, nome, password_hash, role_id, is_superuser, ativo)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, ativo, created_at, updated_at`,
		u.Username, u.Email, u.Nome, u.PasswordHash, u.RoleID, u.IsSuperuser,
	).Scan(&u.ID, &u.Ativo, &u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

// Update modifies an account's profile, role and status (excluding password).
func (r *UsuarioRepository) Update(ctx context.Context, u *model.Usuario) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE usuarios SET email = $1, nome = $2, role_id = $3, is_superuser = $4, ativo = $5,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		u.Email, u.Nome, u.RoleID, u.IsSuperuser, u.Ativo, u.ID,
	))
}

// UpdatePassword replaces an account's password hash.
func (r *UsuarioRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE usuarios SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	))
}

// SetAtivo activates or deactivates an account.
func (r *UsuarioRepository) SetAtivo(ctx context.Context, id int, ativo bool) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE usuarios SET ativo = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, ativo, id,
	))
}
