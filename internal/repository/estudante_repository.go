package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EstudanteRepository handles student data access.
type EstudanteRepository struct {
	pool *pgxpool.Pool
}

// NewEstudanteRepository creates a new EstudanteRepository.
func NewEstudanteRepository(pool *pgxpool.Pool) *EstudanteRepository {
	return &EstudanteRepository{pool: pool}
}

const estudanteSelect = `SELECT e.id, e.matricula_sga, e.nome, e.cpf, e.data_nascimento, e.email, e.logradouro, e.bairro,
	e.cidade, e.uf, e.cep, e.turma_id, COALESCE(t.nome, ''), e.campus_id, e.curso_id, e.situacao, e.data_ingresso,
	e.foto, e.foto_url,
	ARRAY(SELECT responsavel_id FROM estudante_responsaveis WHERE estudante_id = e.id ORDER BY responsavel_id),
	e.created_at, e.updated_at
	FROM estudantes e LEFT JOIN turmas t ON t.id = e.turma_id`

func scanEstudante(row interface{ Scan(...interface{}) error }, e *model.Estudante) error {
	return row.Scan(&e.ID, &e.MatriculaSGA, &e.Nome, &e.CPF, &e.DataNascimento, &e.Email, &e.Logradouro, &e.Bairro,
		&e.Cidade, &e.UF, &e.CEP, &e.TurmaID, &e.TurmaNome, &e.CampusID, &e.CursoID, &e.Situacao, &e.DataIngresso,
		&e.Foto, &e.FotoURL, &e.ResponsavelIDs, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EstudanteRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Estudante, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Estudante
	for rows.Next() {
		var e model.Estudante
		if err := scanEstudante(rows, &e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetByID retrieves a student by ID.
func (r *EstudanteRepository) GetByID(ctx context.Context, id int) (*model.Estudante, error) {
	e := &model.Estudante{}
	if err := scanEstudante(r.pool.QueryRow(ctx, estudanteSelect+` WHERE e.id = $1`, id), e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

// GetByMatricula retrieves a student by SGA enrolment number.
func (r *EstudanteRepository) GetByMatricula(ctx context.Context, matricula string) (*model.Estudante, error) {
	e := &model.Estudante{}
	if err := scanEstudante(r.pool.QueryRow(ctx, estudanteSelect+` WHERE e.matricula_sga = $1`, matricula), e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

// ListByIDs retrieves the given students ordered by name.
func (r *EstudanteRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Estudante, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, estudanteSelect+` WHERE e.id = ANY($1) ORDER BY e.nome`, ids)
}

func buildEstudanteFilter(ef model.EstudanteFilter) filter {
	var f filter
	if ef.TurmaID != nil {
		f.add(`e.turma_id = ?`, *ef.TurmaID)
	}
	if ef.CursoID != nil {
		f.add(`e.curso_id = ?`, *ef.CursoID)
	}
	if ef.Situacao != "" {
		f.add(`e.situacao = ?`, ef.Situacao)
	}
	if ef.Busca != "" {
		f.add(`(e.nome ILIKE ? OR e.matricula_sga ILIKE ?)`, "%"+ef.Busca+"%")
	}
	return f
}

// ListPaginated retrieves students matching the filter with pagination.
func (r *EstudanteRepository) ListPaginated(ctx context.Context, ef model.EstudanteFilter, limit, offset int) ([]model.Estudante, int, error) {
	f := buildEstudanteFilter(ef)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM estudantes e`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, estudanteSelect+f.where()+` ORDER BY e.nome`+paging, args...)
	return list, total, err
}

// Search returns up to limit students for pickers.
func (r *EstudanteRepository) Search(ctx context.Context, ef model.EstudanteFilter, limit int) ([]model.Estudante, error) {
	f := buildEstudanteFilter(ef)
	paging, args := f.page(limit, 0)
	return r.query(ctx, estudanteSelect+f.where()+` ORDER BY e.nome`+paging, args...)
}

// Create inserts a new student.
func (r *EstudanteRepository) Create(ctx context.Context, e *model.Estudante) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO estudantes (matricula_sga, nome, cpf, data_nascimento, email, logradouro, bairro, cidade, uf, cep,
		 turma_id, campus_id, curso_id, situacao, data_ingresso, foto_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`,
		e.MatriculaSGA, e.Nome, e.CPF, e.DataNascimento, e.Email, e.Logradouro, e.Bairro, e.Cidade, e.UF, e.CEP,
		e.TurmaID, e.CampusID, e.CursoID, e.Situacao, e.DataIngresso, e.FotoURL,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt))
}

// Update modifies a student's data. The uploaded photo is kept.
func (r *EstudanteRepository) Update(ctx context.Context, e *model.Estudante) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE estudantes SET matricula_sga = $1, nome = $2, cpf = $3, data_nascimento = $4, email = $5,
		 logradouro = $6, bairro = $7, cidade = $8, uf = $9, cep = $10, turma_id = $11, campus_id = $12,
		 curso_id = $13, situacao = $14, data_ingresso = $15, foto_url = $16, updated_at = NOW()
		 WHERE id = $17`,
		e.MatriculaSGA, e.Nome, e.CPF, e.DataNascimento, e.Email, e.Logradouro, e.Bairro, e.Cidade, e.UF, e.CEP,
		e.TurmaID, e.CampusID, e.CursoID, e.Situacao, e.DataIngresso, e.FotoURL, e.ID,
	))
}

// UpsertByMatricula creates the student or refreshes the imported fields of an existing one.
// It reports whether a new row was inserted.
func (r *EstudanteRepository) UpsertByMatricula(ctx context.Context, e *model.Estudante) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO estudantes (matricula_sga, nome, cpf, data_nascimento, email, turma_id, campus_id, curso_id,
		 situacao, data_ingresso, foto_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (matricula_sga) DO UPDATE SET nome = EXCLUDED.nome, cpf = EXCLUDED.cpf,
		   data_nascimento = COALESCE(EXCLUDED.data_nascimento, estudantes.data_nascimento),
		   email = EXCLUDED.email, turma_id = COALESCE(EXCLUDED.turma_id, estudantes.turma_id),
		   campus_id = COALESCE(EXCLUDED.campus_id, estudantes.campus_id),
		   curso_id = COALESCE(EXCLUDED.curso_id, estudantes.curso_id),
		   situacao = EXCLUDED.situacao, foto_url = EXCLUDED.foto_url, updated_at = NOW()
		 RETURNING id, (xmax = 0)`,
		e.MatriculaSGA, e.Nome, e.CPF, e.DataNascimento, e.Email, e.TurmaID, e.CampusID, e.CursoID,
		e.Situacao, e.DataIngresso, e.FotoURL,
	).Scan(&e.ID, &inserted)
	return inserted, mapErr(err)
}

// UpdateFoto stores the path of the uploaded photo.
func (r *EstudanteRepository) UpdateFoto(ctx context.Context, id int, foto string) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE estudantes SET foto = $1, updated_at = NOW() WHERE id = $2`, foto, id))
}

// Deactivate marks the student INATIVO.
func (r *EstudanteRepository) Deactivate(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE estudantes SET situacao = 'INATIVO', updated_at = NOW() WHERE id = $1`, id))
}

// ResumoTurma aggregates per-student counters for a class.
func (r *EstudanteRepository) ResumoTurma(ctx context.Context, turmaID int) ([]model.ResumoEstudanteTurma, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.nome, e.matricula_sga, e.foto, e.foto_url,
		   (SELECT COUNT(*) FROM ocorrencia_estudantes oe WHERE oe.estudante_id = e.id),
		   (SELECT COUNT(*) FROM ocorrencia_estudantes oe
		      JOIN ocorrencias o ON o.id = oe.ocorrencia_id
		      JOIN infracoes i ON i.id = o.infracao_id
		     WHERE oe.estudante_id = e.id AND i.gravidade IN ('GRAVE', 'GRAVISSIMA')),
		   (SELECT COUNT(*) FROM ocorrencia_rapida_estudantes re WHERE re.estudante_id = e.id),
		   (SELECT COUNT(*) FROM atendimento_estudantes ae WHERE ae.estudante_id = e.id)
		 FROM estudantes e
		 WHERE e.turma_id = $1 AND e.situacao = 'ATIVO'
		 ORDER BY e.nome`, turmaID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ResumoEstudanteTurma, error) {
		var (
			x   model.ResumoEstudanteTurma
			est model.Estudante
		)
		err := row.Scan(&x.EstudanteID, &x.Nome, &x.MatriculaSGA, &est.Foto, &est.FotoURL,
			&x.TotalOcorrencias, &x.OcorrenciasGraves, &x.TotalRapidas, &x.TotalAtendimentos)
		est.Nome = x.Nome
		x.Iniciais = est.Iniciais()
		x.FotoProxyURL = est.FotoProxyURL()
		x.NivelAlerta = model.CalcularNivelAlerta(x.TotalOcorrencias, x.OcorrenciasGraves)
		return x, err
	})
}
