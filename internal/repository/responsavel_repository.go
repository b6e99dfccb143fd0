package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponsavelRepository handles guardians and their links to students.
type ResponsavelRepository struct {
	pool *pgxpool.Pool
}

// NewResponsavelRepository creates a new ResponsavelRepository.
func NewResponsavelRepository(pool *pgxpool.Pool) *ResponsavelRepository {
	return &ResponsavelRepository{pool: pool}
}

const responsavelSelect = `SELECT r.id, r.nome, r.email, r.celular, r.endereco, r.tipo_vinculo, r.preferencia_contato, r.created_at
	FROM responsaveis r`

func scanResponsavel(row interface{ Scan(...interface{}) error }, x *model.Responsavel) error {
	return row.Scan(&x.ID, &x.Nome, &x.Email, &x.Celular, &x.Endereco, &x.TipoVinculo, &x.PreferenciaContato, &x.CreatedAt)
}

func (r *ResponsavelRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Responsavel, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Responsavel
	for rows.Next() {
		var x model.Responsavel
		if err := scanResponsavel(rows, &x); err != nil {
			return nil, err
		}
		list = append(list, x)
	}
	return list, rows.Err()
}

// ListPaginated retrieves guardians matching an optional search term.
func (r *ResponsavelRepository) ListPaginated(ctx context.Context, busca string, limit, offset int) ([]model.Responsavel, int, error) {
	var f filter
	if busca != "" {
		f.add(`(r.nome ILIKE ? OR r.email ILIKE ?)`, "%"+busca+"%")
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responsaveis r`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, responsavelSelect+f.where()+` ORDER BY r.nome`+paging, args...)
	return list, total, err
}

// ListByEstudante retrieves the guardians linked to a student.
func (r *ResponsavelRepository) ListByEstudante(ctx context.Context, estudanteID int) ([]model.Responsavel, error) {
	return r.query(ctx, responsavelSelect+`
		JOIN estudante_responsaveis er ON er.responsavel_id = r.id
		WHERE er.estudante_id = $1 ORDER BY r.nome`, estudanteID)
}

// ListByEstudantes retrieves the distinct guardians of any of the given students.
func (r *ResponsavelRepository) ListByEstudantes(ctx context.Context, estudanteIDs []int) ([]model.Responsavel, error) {
	return r.query(ctx, responsavelSelect+`
		WHERE r.id IN (SELECT responsavel_id FROM estudante_responsaveis WHERE estudante_id = ANY($1))
		ORDER BY r.nome`, estudanteIDs)
}

func (r *ResponsavelRepository) GetByID(ctx context.Context, id int) (*model.Responsavel, error) {
	x := &model.Responsavel{}
	if err := scanResponsavel(r.pool.QueryRow(ctx, responsavelSelect+` WHERE r.id = $1`, id), x); err != nil {
		return nil, mapErr(err)
	}
	return x, nil
}

// FindByEmail returns the first guardian registered with the email.
func (r *ResponsavelRepository) FindByEmail(ctx context.Context, email string) (*model.Responsavel, error) {
	x := &model.Responsavel{}
	err := scanResponsavel(r.pool.QueryRow(ctx,
		responsavelSelect+` WHERE LOWER(r.email) = LOWER($1) ORDER BY r.id LIMIT 1`, email), x)
	if err != nil {
		return nil, mapErr(err)
	}
	return x, nil
}

func (r *ResponsavelRepository) Create(ctx context.Context, x *model.Responsavel) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO responsaveis (nome, email, celular, endereco, tipo_vinculo, preferencia_contato)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		x.Nome, x.Email, x.Celular, x.Endereco, x.TipoVinculo, x.PreferenciaContato,
	).Scan(&x.ID, &x.CreatedAt))
}

func (r *ResponsavelRepository) Update(ctx context.Context, x *model.Responsavel) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE responsaveis SET nome = $1, email = $2, celular = $3, endereco = $4, tipo_vinculo = $5,
		 preferencia_contato = $6 WHERE id = $7`,
		x.Nome, x.Email, x.Celular, x.Endereco, x.TipoVinculo, x.PreferenciaContato, x.ID,
	))
}

// Delete removes a guardian together with its student links.
func (r *ResponsavelRepository) Delete(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM responsaveis WHERE id = $1`, id))
}

// Link attaches a guardian to a student. Linking twice is a no-op.
func (r *ResponsavelRepository) Link(ctx context.Context, estudanteID, responsavelID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO estudante_responsaveis (estudante_id, responsavel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		estudanteID, responsavelID,
	)
	return mapErr(err)
}

// Unlink detaches a guardian from a student.
func (r *ResponsavelRepository) Unlink(ctx context.Context, estudanteID, responsavelID int) error {
	return execAffected(r.pool.Exec(ctx,
		`DELETE FROM estudante_responsaveis WHERE estudante_id = $1 AND responsavel_id = $2`,
		estudanteID, responsavelID,
	))
}
