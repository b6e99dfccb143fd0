package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionRow is a permission code with its description.
type PermissionRow struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RoleRepository handles role and permission data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetPermissionsByRoleID retrieves all permission codes for a given role.
func (r *RoleRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// ListPermissions retrieves every permission known to the database.
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]PermissionRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, description FROM permissions ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []PermissionRow
	for rows.Next() {
		var p PermissionRow
		if err := rows.Scan(&p.Code, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// EnsurePermissions inserts any permission code missing from the database.
func (r *RoleRepository) EnsurePermissions(ctx context.Context, codes []string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO permissions (code) SELECT unnest($1::text[]) ON CONFLICT (code) DO NOTHING`, codes)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// GetRoleByID retrieves a role and its permissions by ID.
func (r *RoleRepository) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	role := &model.Role{ID: id}
	err := r.pool.QueryRow(ctx, "SELECT name, created_at FROM roles WHERE id = $1", id).Scan(&role.Name, &role.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	permissions, err := r.GetPermissionsByRoleID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.RoleWithPermissions{
		Role:        role,
		Permissions: permissions,
	}, nil
}

// GetRoleIDByName resolves a role name to its ID.
func (r *RoleRepository) GetRoleIDByName(ctx context.Context, name string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", name).Scan(&id)
	return id, mapErr(err)
}

// ListRolesWithPermissions retrieves all roles with their associated permissions.
func (r *RoleRepository) ListRolesWithPermissions(ctx context.Context) ([]model.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.created_at,
		        COALESCE(ARRAY_AGG(p.code ORDER BY p.code) FILTER (WHERE p.code IS NOT NULL), '{}')
		 FROM roles r
		 LEFT JOIN role_permissions rp ON rp.role_id = r.id
		 LEFT JOIN permissions p ON p.id = rp.permission_id
		 GROUP BY r.id
		 ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.RoleWithPermissions
	for rows.Next() {
		var role model.Role
		var permissions []string
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &permissions); err != nil {
			return nil, err
		}
		roles = append(roles, model.RoleWithPermissions{
			Role:        &role,
			Permissions: permissions,
		})
	}

	return roles, rows.Err()
}

// CreateRole inserts a new role with its permissions and returns its ID.
func (r *RoleRepository) CreateRole(ctx context.Context, name string, permissionCodes []string) (int, error) {
	var id int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
			return err
		}
		return assignPermissions(ctx, tx, id, permissionCodes)
	})
	return id, mapErr(err)
}

// UpdateRole renames a role and replaces its permissions.
func (r *RoleRepository) UpdateRole(ctx context.Context, id int, name string, permissionCodes []string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx, "UPDATE roles SET name = $1 WHERE id = $2", name, id)); err != nil {
			return err
		}
		return assignPermissions(ctx, tx, id, permissionCodes)
	})
	return mapErr(err)
}

// DeleteRole removes a role. Roles still assigned to accounts cannot be removed.
func (r *RoleRepository) DeleteRole(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id))
}

// SetPermissions replaces the permissions of a role.
func (r *RoleRepository) SetPermissions(ctx context.Context, roleID int, permissionCodes []string) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return assignPermissions(ctx, tx, roleID, permissionCodes)
	}))
}

// assignPermissions replaces the role's permission links. Unknown codes are ignored.
func assignPermissions(ctx context.Context, q querier, roleID int, permissionCodes []string) error {
	if _, err := q.Exec(ctx, "DELETE FROM role_permissions WHERE role_id = $1", roleID); err != nil {
		return err
	}
	if len(permissionCodes) == 0 {
		return nil
	}
	_, err := q.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT $1, id FROM permissions WHERE code = ANY($2)`,
		roleID, permissionCodes,
	)
	return err
}
