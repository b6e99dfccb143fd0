package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OcorrenciaRapidaRepository handles quick occurrences.
type OcorrenciaRapidaRepository struct {
	pool *pgxpool.Pool
}

// NewOcorrenciaRapidaRepository creates a new OcorrenciaRapidaRepository.
func NewOcorrenciaRapidaRepository(pool *pgxpool.Pool) *OcorrenciaRapidaRepository {
	return &OcorrenciaRapidaRepository{pool: pool}
}

const rapidaSelect = `SELECT r.id, r.data, to_char(r.horario, 'HH24:MI'), r.turma_id, COALESCE(t.nome, ''),
	ARRAY(SELECT estudante_id FROM ocorrencia_rapida_estudantes WHERE ocorrencia_rapida_id = r.id ORDER BY estudante_id),
	ARRAY(SELECT tipo_id FROM ocorrencia_rapida_tipos WHERE ocorrencia_rapida_id = r.id ORDER BY tipo_id),
	r.descricao, r.responsavel_registro_id, s.nome, r.created_at, r.updated_at
	FROM ocorrencias_rapidas r
	JOIN servidores s ON s.id = r.responsavel_registro_id
	LEFT JOIN turmas t ON t.id = r.turma_id`

func scanRapida(row interface{ Scan(...interface{}) error }, x *model.OcorrenciaRapida) error {
	return row.Scan(&x.ID, &x.Data, &x.Horario, &x.TurmaID, &x.TurmaNome, &x.EstudanteIDs, &x.TipoIDs,
		&x.Descricao, &x.ResponsavelRegistroID, &x.ResponsavelNome, &x.CreatedAt, &x.UpdatedAt)
}

func (r *OcorrenciaRapidaRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.OcorrenciaRapida, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.OcorrenciaRapida
	for rows.Next() {
		var x model.OcorrenciaRapida
		if err := scanRapida(rows, &x); err != nil {
			return nil, err
		}
		list = append(list, x)
	}
	return list, rows.Err()
}

func (r *OcorrenciaRapidaRepository) GetByID(ctx context.Context, id int) (*model.OcorrenciaRapida, error) {
	x := &model.OcorrenciaRapida{}
	if err := scanRapida(r.pool.QueryRow(ctx, rapidaSelect+` WHERE r.id = $1`, id), x); err != nil {
		return nil, mapErr(err)
	}
	return x, nil
}

func buildRapidaFilter(rf model.OcorrenciaRapidaFilter) filter {
	var f filter
	if rf.EstudanteID != nil {
		f.add(`EXISTS (SELECT 1 FROM ocorrencia_rapida_estudantes re WHERE re.ocorrencia_rapida_id = r.id AND re.estudante_id = ?)`, *rf.EstudanteID)
	}
	if rf.TipoID != nil {
		f.add(`EXISTS (SELECT 1 FROM ocorrencia_rapida_tipos rt WHERE rt.ocorrencia_rapida_id = r.id AND rt.tipo_id = ?)`, *rf.TipoID)
	}
	if rf.TurmaID != nil {
		f.add(`r.turma_id = ?`, *rf.TurmaID)
	}
	if rf.Inicio != nil {
		f.add(`r.data >= ?`, *rf.Inicio)
	}
	if rf.Fim != nil {
		f.add(`r.data <= ?`, *rf.Fim)
	}
	return f
}

func (r *OcorrenciaRapidaRepository) ListPaginated(ctx context.Context, rf model.OcorrenciaRapidaFilter, limit, offset int) ([]model.OcorrenciaRapida, int, error) {
	f := buildRapidaFilter(rf)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ocorrencias_rapidas r`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, rapidaSelect+f.where()+` ORDER BY r.data DESC, r.horario DESC, r.id DESC`+paging, args...)
	return list, total, err
}

// ListByEstudante retrieves every quick occurrence involving the student.
func (r *OcorrenciaRapidaRepository) ListByEstudante(ctx context.Context, estudanteID int) ([]model.OcorrenciaRapida, error) {
	f := buildRapidaFilter(model.OcorrenciaRapidaFilter{EstudanteID: &estudanteID})
	return r.query(ctx, rapidaSelect+f.where()+` ORDER BY r.data DESC, r.id DESC`, f.args...)
}

func (r *OcorrenciaRapidaRepository) writeLinks(ctx context.Context, tx pgx.Tx, x *model.OcorrenciaRapida) error {
	if err := replaceLinks(ctx, tx, "ocorrencia_rapida_estudantes", "ocorrencia_rapida_id", "estudante_id", x.ID, x.EstudanteIDs); err != nil {
		return err
	}
	return replaceLinks(ctx, tx, "ocorrencia_rapida_tipos", "ocorrencia_rapida_id", "tipo_id", x.ID, x.TipoIDs)
}

// Create inserts the quick occurrence with its students and types.
func (r *OcorrenciaRapidaRepository) Create(ctx context.Context, x *model.OcorrenciaRapida) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO ocorrencias_rapidas (data, horario, turma_id, descricao, responsavel_registro_id)
			 VALUES ($1, $2::time, $3, $4, $5) RETURNING id, created_at, updated_at`,
			x.Data, x.Horario, x.TurmaID, x.Descricao, x.ResponsavelRegistroID,
		).Scan(&x.ID, &x.CreatedAt, &x.UpdatedAt); err != nil {
			return err
		}
		return r.writeLinks(ctx, tx, x)
	}))
}

// Update rewrites the quick occurrence and its links.
func (r *OcorrenciaRapidaRepository) Update(ctx context.Context, x *model.OcorrenciaRapida) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE ocorrencias_rapidas SET data = $1, horario = $2::time, turma_id = $3, descricao = $4, updated_at = NOW()
			 WHERE id = $5`,
			x.Data, x.Horario, x.TurmaID, x.Descricao, x.ID,
		)); err != nil {
			return err
		}
		return r.writeLinks(ctx, tx, x)
	}))
}

func (r *OcorrenciaRapidaRepository) Delete(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM ocorrencias_rapidas WHERE id = $1`, id))
}

// Count returns how many quick occurrences of the type the student has in [inicio, fim).
func (r *OcorrenciaRapidaRepository) Count(ctx context.Context, estudanteID, tipoID int, inicio, fim model.Date) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ocorrencias_rapidas r
		 JOIN ocorrencia_rapida_estudantes re ON re.ocorrencia_rapida_id = r.id
		 JOIN ocorrencia_rapida_tipos rt ON rt.ocorrencia_rapida_id = r.id
		 WHERE re.estudante_id = $1 AND rt.tipo_id = $2 AND r.data >= $3 AND r.data < $4`,
		estudanteID, tipoID, inicio, fim,
	).Scan(&n)
	return n, err
}

// ─── Dashboard ─────────────────────────────────────────────────────────

// Dashboard gathers the quick occurrence indicators relative to hoje.
func (r *OcorrenciaRapidaRepository) Dashboard(ctx context.Context, hoje model.Date) (*model.DashboardRapidas, error) {
	d := &model.DashboardRapidas{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		 COUNT(*) FILTER (WHERE data = $1),
		 COUNT(*) FILTER (WHERE data > $2)
		 FROM ocorrencias_rapidas`, hoje, hoje.AddDays(-7),
	).Scan(&d.Total, &d.Hoje, &d.UltimosSeteDias)
	if err != nil {
		return nil, err
	}

	if d.PorTipo30Dias, err = r.contagens(ctx,
		`SELECT t.descricao, COUNT(*) FROM ocorrencia_rapida_tipos rt
		 JOIN tipos_ocorrencia_rapida t ON t.id = rt.tipo_id
		 JOIN ocorrencias_rapidas r ON r.id = rt.ocorrencia_rapida_id
		 WHERE r.data > $1 GROUP BY t.descricao ORDER BY COUNT(*) DESC, t.descricao`, hoje.AddDays(-30)); err != nil {
		return nil, err
	}
	if len(d.PorTipo30Dias) > 0 {
		top := d.PorTipo30Dias[0]
		d.TipoMaisComum = &top
	}

	if d.PorDia14Dias, err = r.contagens(ctx,
		`SELECT to_char(g.dia, 'YYYY-MM-DD'), COUNT(r.id)
		 FROM generate_series($1::date, $2::date, interval '1 day') AS g(dia)
		 LEFT JOIN ocorrencias_rapidas r ON r.data = g.dia::date
		 GROUP BY g.dia ORDER BY g.dia`, hoje.AddDays(-13), hoje); err != nil {
		return nil, err
	}

	if d.Ultimas, err = r.query(ctx, rapidaSelect+` ORDER BY r.created_at DESC LIMIT 10`); err != nil {
		return nil, err
	}

	if d.TopTurmasMes, err = r.contagens(ctx,
		`SELECT t.nome, COUNT(*) FROM ocorrencias_rapidas r
		 JOIN turmas t ON t.id = r.turma_id
		 WHERE r.data >= $1 AND r.data < $2
		 GROUP BY t.nome ORDER BY COUNT(*) DESC, t.nome LIMIT 5`, hoje.MonthStart(), hoje.NextMonthStart()); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *OcorrenciaRapidaRepository) contagens(ctx context.Context, sql string, args ...interface{}) ([]model.ContagemLabel, error) {
	return queryContagens(ctx, r.pool, sql, args...)
}

func queryContagens(ctx context.Context, q querier, sql string, args ...interface{}) ([]model.ContagemLabel, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ContagemLabel, error) {
		var c model.ContagemLabel
		err := row.Scan(&c.Label, &c.Total)
		return c, err
	})
}
