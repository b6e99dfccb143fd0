package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CampusRepository handles campi, cursos and turmas.
type CampusRepository struct {
	pool *pgxpool.Pool
}

// NewCampusRepository creates a new CampusRepository.
func NewCampusRepository(pool *pgxpool.Pool) *CampusRepository {
	return &CampusRepository{pool: pool}
}

// ─── Campi ─────────────────────────────────────────────────────────────

func (r *CampusRepository) ListCampi(ctx context.Context, soAtivos bool) ([]model.Campus, error) {
	query := `SELECT id, nome, sigla, ativo, created_at FROM campi`
	if soAtivos {
		query += ` WHERE ativo`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campi []model.Campus
	for rows.Next() {
		var c model.Campus
		if err := rows.Scan(&c.ID, &c.Nome, &c.Sigla, &c.Ativo, &c.CreatedAt); err != nil {
			return nil, err
		}
		campi = append(campi, c)
	}
	return campi, rows.Err()
}

func (r *CampusRepository) GetCampus(ctx context.Context, id int) (*model.Campus, error) {
	c := &model.Campus{}
	err := r.pool.QueryRow(ctx, `SELECT id, nome, sigla, ativo, created_at FROM campi WHERE id = $1`, id).
		Scan(&c.ID, &c.Nome, &c.Sigla, &c.Ativo, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CampusRepository) CreateCampus(ctx context.Context, c *model.Campus) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO campi (nome, sigla, ativo) VALUES ($1, $2, $3) RETURNING id, created_at`,
		c.Nome, c.Sigla, c.Ativo,
	).Scan(&c.ID, &c.CreatedAt))
}

func (r *CampusRepository) UpdateCampus(ctx context.Context, c *model.Campus) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE campi SET nome = $1, sigla = $2, ativo = $3 WHERE id = $4`,
		c.Nome, c.Sigla, c.Ativo, c.ID,
	))
}

func (r *CampusRepository) DeactivateCampus(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE campi SET ativo = FALSE WHERE id = $1`, id))
}

// ─── Cursos ────────────────────────────────────────────────────────────

const cursoSelect = `SELECT c.id, c.nome, c.campus_id, ca.nome, c.codigo, c.ativo, c.created_at
	FROM cursos c JOIN campi ca ON ca.id = c.campus_id`

func scanCurso(row interface{ Scan(...interface{}) error }, c *model.Curso) error {
	return row.Scan(&c.ID, &c.Nome, &c.CampusID, &c.CampusNome, &c.Codigo, &c.Ativo, &c.CreatedAt)
}

func (r *CampusRepository) ListCursos(ctx context.Context, campusID *int, soAtivos bool) ([]model.Curso, error) {
	var f filter
	if campusID != nil {
		f.add(`c.campus_id = ?`, *campusID)
	}
	if soAtivos {
		f.addRaw(`c.ativo`)
	}
	rows, err := r.pool.Query(ctx, cursoSelect+f.where()+` ORDER BY c.nome`, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cursos []model.Curso
	for rows.Next() {
		var c model.Curso
		if err := scanCurso(rows, &c); err != nil {
			return nil, err
		}
		cursos = append(cursos, c)
	}
	return cursos, rows.Err()
}

func (r *CampusRepository) GetCurso(ctx context.Context, id int) (*model.Curso, error) {
	c := &model.Curso{}
	if err := scanCurso(r.pool.QueryRow(ctx, cursoSelect+` WHERE c.id = $1`, id), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CampusRepository) GetCursoByCodigo(ctx context.Context, codigo string) (*model.Curso, error) {
	c := &model.Curso{}
	if err := scanCurso(r.pool.QueryRow(ctx, cursoSelect+` WHERE c.codigo = $1`, codigo), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CampusRepository) CreateCurso(ctx context.Context, c *model.Curso) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO cursos (nome, campus_id, codigo, ativo) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		c.Nome, c.CampusID, c.Codigo, c.Ativo,
	).Scan(&c.ID, &c.CreatedAt))
}

func (r *CampusRepository) UpdateCurso(ctx context.Context, c *model.Curso) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE cursos SET nome = $1, campus_id = $2, codigo = $3, ativo = $4 WHERE id = $5`,
		c.Nome, c.CampusID, c.Codigo, c.Ativo, c.ID,
	))
}

func (r *CampusRepository) DeactivateCurso(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE cursos SET ativo = FALSE WHERE id = $1`, id))
}

// ─── Turmas ────────────────────────────────────────────────────────────

const turmaSelect = `SELECT t.id, t.nome, t.curso_id, c.nome, t.ano, t.periodo, t.semestre, t.sala, t.ativa, t.created_at
	FROM turmas t JOIN cursos c ON c.id = t.curso_id`

func scanTurma(row interface{ Scan(...interface{}) error }, t *model.Turma) error {
	return row.Scan(&t.ID, &t.Nome, &t.CursoID, &t.CursoNome, &t.Ano, &t.Periodo, &t.Semestre, &t.Sala, &t.Ativa, &t.CreatedAt)
}

func (r *CampusRepository) ListTurmas(ctx context.Context, cursoID *int, ano *int, soAtivas bool) ([]model.Turma, error) {
	var f filter
	if cursoID != nil {
		f.add(`t.curso_id = ?`, *cursoID)
	}
	if ano != nil {
		f.add(`t.ano = ?`, *ano)
	}
	if soAtivas {
		f.addRaw(`t.ativa`)
	}
	rows, err := r.pool.Query(ctx, turmaSelect+f.where()+` ORDER BY t.ano DESC, t.nome`, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turmas []model.Turma
	for rows.Next() {
		var t model.Turma
		if err := scanTurma(rows, &t); err != nil {
			return nil, err
		}
		turmas = append(turmas, t)
	}
	return turmas, rows.Err()
}

func (r *CampusRepository) GetTurma(ctx context.Context, id int) (*model.Turma, error) {
	t := &model.Turma{}
	if err := scanTurma(r.pool.QueryRow(ctx, turmaSelect+` WHERE t.id = $1`, id), t); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// FindTurmaByNome returns the most recent active class with the given name.
func (r *CampusRepository) FindTurmaByNome(ctx context.Context, nome string) (*model.Turma, error) {
	t := &model.Turma{}
	err := scanTurma(r.pool.QueryRow(ctx,
		turmaSelect+` WHERE LOWER(t.nome) = LOWER($1) ORDER BY t.ativa DESC, t.ano DESC LIMIT 1`, nome), t)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *CampusRepository) CreateTurma(ctx context.Context, t *model.Turma) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO turmas (nome, curso_id, ano, periodo, semestre, sala, ativa)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		t.Nome, t.CursoID, t.Ano, t.Periodo, t.Semestre, t.Sala, t.Ativa,
	).Scan(&t.ID, &t.CreatedAt))
}

func (r *CampusRepository) UpdateTurma(ctx context.Context, t *model.Turma) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE turmas SET nome = $1, curso_id = $2, ano = $3, periodo = $4, semestre = $5, sala = $6, ativa = $7
		 WHERE id = $8`,
		t.Nome, t.CursoID, t.Ano, t.Periodo, t.Semestre, t.Sala, t.Ativa, t.ID,
	))
}

func (r *CampusRepository) DeactivateTurma(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE turmas SET ativa = FALSE WHERE id = $1`, id))
}
