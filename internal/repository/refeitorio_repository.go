package repository

import (
	"context"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefeitorioRepository handles meal windows, served meals and access blocks.
type RefeitorioRepository struct {
	pool *pgxpool.Pool
}

// NewRefeitorioRepository creates a new RefeitorioRepository.
func NewRefeitorioRepository(pool *pgxpool.Pool) *RefeitorioRepository {
	return &RefeitorioRepository{pool: pool}
}

// ─── Meal windows ──────────────────────────────────────────────────────

const configRefeitorioSelect = `SELECT id, nome, to_char(horario_inicio, 'HH24:MI'), to_char(horario_fim, 'HH24:MI'),
	ativo, intervalo_minimo_horas FROM config_refeitorio`

func (r *RefeitorioRepository) ListConfigs(ctx context.Context, soAtivas bool) ([]model.ConfigRefeitorio, error) {
	query := configRefeitorioSelect
	if soAtivas {
		query += ` WHERE ativo`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY horario_inicio`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ConfigRefeitorio])
}

func (r *RefeitorioRepository) CreateConfig(ctx context.Context, c *model.ConfigRefeitorio) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO config_refeitorio (nome, horario_inicio, horario_fim, ativo, intervalo_minimo_horas)
		 VALUES ($1, $2::time, $3::time, $4, $5) RETURNING id`,
		c.Nome, c.HorarioInicio, c.HorarioFim, c.Ativo, c.IntervaloMinimoHoras,
	).Scan(&c.ID))
}

// EnsureConfig inserts the window unless one exists for the same meal. It reports whether it inserted.
func (r *RefeitorioRepository) EnsureConfig(ctx context.Context, c *model.ConfigRefeitorio) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO config_refeitorio (nome, horario_inicio, horario_fim, ativo, intervalo_minimo_horas)
		 VALUES ($1, $2::time, $3::time, $4, $5) ON CONFLICT (nome) DO NOTHING`,
		c.Nome, c.HorarioInicio, c.HorarioFim, c.Ativo, c.IntervaloMinimoHoras,
	)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RefeitorioRepository) UpdateConfig(ctx context.Context, c *model.ConfigRefeitorio) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE config_refeitorio SET nome = $1, horario_inicio = $2::time, horario_fim = $3::time, ativo = $4,
		 intervalo_minimo_horas = $5 WHERE id = $6`,
		c.Nome, c.HorarioInicio, c.HorarioFim, c.Ativo, c.IntervaloMinimoHoras, c.ID,
	))
}

func (r *RefeitorioRepository) DeleteConfig(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM config_refeitorio WHERE id = $1`, id))
}

// ─── Registros ─────────────────────────────────────────────────────────

const registroSelect = `SELECT r.id, r.estudante_id, r.servidor_id, COALESCE(e.nome, s.nome, ''), r.tipo_refeicao,
	r.data_hora, r.codigo_barras_usado, r.ip_acesso
	FROM registros_refeicao r
	LEFT JOIN estudantes e ON e.id = r.estudante_id
	LEFT JOIN servidores s ON s.id = r.servidor_id`

func (r *RefeitorioRepository) queryRegistros(ctx context.Context, sql string, args ...interface{}) ([]model.RegistroRefeicao, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.RegistroRefeicao])
}

func (r *RefeitorioRepository) CreateRegistro(ctx context.Context, reg *model.RegistroRefeicao) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO registros_refeicao (estudante_id, servidor_id, tipo_refeicao, data_hora, codigo_barras_usado, ip_acesso)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		reg.EstudanteID, reg.ServidorID, reg.TipoRefeicao, reg.DataHora, reg.CodigoBarrasUsado, reg.IPAcesso,
	).Scan(&reg.ID))
}

// UltimoRegistro returns the person's latest meal of the type served after desde, or ErrNotFound.
func (r *RefeitorioRepository) UltimoRegistro(ctx context.Context, p model.Pessoa, tipo model.TipoRefeicao, desde time.Time) (*model.RegistroRefeicao, error) {
	var f filter
	if p.EstudanteID != nil {
		f.add(`r.estudante_id = ?`, *p.EstudanteID)
	} else {
		f.add(`r.servidor_id = ?`, p.ServidorID)
	}
	f.add(`r.tipo_refeicao = ?`, tipo)
	f.add(`r.data_hora >= ?`, desde)

	list, err := r.queryRegistros(ctx, registroSelect+f.where()+` ORDER BY r.data_hora DESC LIMIT 1`, f.args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// ListRegistros returns the records served in [inicio, fim), newest first.
func (r *RefeitorioRepository) ListRegistros(ctx context.Context, inicio, fim time.Time, limit, offset int) ([]model.RegistroRefeicao, int, error) {
	var f filter
	f.add(`r.data_hora >= ?`, inicio)
	f.add(`r.data_hora < ?`, fim)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registros_refeicao r`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.queryRegistros(ctx, registroSelect+f.where()+` ORDER BY r.data_hora DESC`+paging, args...)
	return list, total, err
}

// Dashboard summarizes the meals served on the given day.
func (r *RefeitorioRepository) Dashboard(ctx context.Context, dia model.Date) (*model.DashboardRefeitorio, error) {
	inicio, fim := dia.Time(), dia.AddDays(1).Time()
	d := &model.DashboardRefeitorio{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(estudante_id), COUNT(servidor_id)
		 FROM registros_refeicao WHERE data_hora >= $1 AND data_hora < $2`, inicio, fim,
	).Scan(&d.TotalHoje, &d.Estudantes, &d.Servidores)
	if err != nil {
		return nil, err
	}
	if d.PorRefeicao, err = queryContagens(ctx, r.pool,
		`SELECT tipo_refeicao, COUNT(*) FROM registros_refeicao
		 WHERE data_hora >= $1 AND data_hora < $2 GROUP BY tipo_refeicao ORDER BY tipo_refeicao`, inicio, fim); err != nil {
		return nil, err
	}
	if d.Ultimos, err = r.queryRegistros(ctx, registroSelect+` ORDER BY r.data_hora DESC LIMIT 20`); err != nil {
		return nil, err
	}
	return d, nil
}

// Relatorio counts the meals served between inicio and fim, both inclusive.
func (r *RefeitorioRepository) Relatorio(ctx context.Context, inicio, fim model.Date) (*model.RelatorioRefeitorio, error) {
	from, to := inicio.Time(), fim.AddDays(1).Time()
	rel := &model.RelatorioRefeitorio{Inicio: inicio, Fim: fim}
	var err error
	if rel.PorDia, err = queryContagens(ctx, r.pool,
		`SELECT to_char(data_hora, 'YYYY-MM-DD') AS dia, COUNT(*) FROM registros_refeicao
		 WHERE data_hora >= $1 AND data_hora < $2 GROUP BY dia ORDER BY dia`, from, to); err != nil {
		return nil, err
	}
	if rel.PorRefeicao, err = queryContagens(ctx, r.pool,
		`SELECT tipo_refeicao, COUNT(*) FROM registros_refeicao
		 WHERE data_hora >= $1 AND data_hora < $2 GROUP BY tipo_refeicao ORDER BY tipo_refeicao`, from, to); err != nil {
		return nil, err
	}
	for _, c := range rel.PorDia {
		rel.Total += c.Total
	}
	return rel, nil
}

// ─── Bloqueios ─────────────────────────────────────────────────────────

const bloqueioSelect = `SELECT b.id, b.estudante_id, b.servidor_id, COALESCE(e.nome, s.nome, ''), b.motivo, b.data_inicio,
	b.data_fim, b.ativo, b.criado_por_id, b.created_at
	FROM bloqueios_acesso b
	LEFT JOIN estudantes e ON e.id = b.estudante_id
	LEFT JOIN servidores s ON s.id = b.servidor_id`

func (r *RefeitorioRepository) queryBloqueios(ctx context.Context, sql string, args ...interface{}) ([]model.BloqueioAcesso, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.BloqueioAcesso])
}

func (r *RefeitorioRepository) ListBloqueios(ctx context.Context, soAtivos bool) ([]model.BloqueioAcesso, error) {
	query := bloqueioSelect
	if soAtivos {
		query += ` WHERE b.ativo`
	}
	return r.queryBloqueios(ctx, query+` ORDER BY b.created_at DESC`)
}

// ListBloqueiosPessoa returns the active blocks of a person; validity dates are checked by the caller.
func (r *RefeitorioRepository) ListBloqueiosPessoa(ctx context.Context, p model.Pessoa) ([]model.BloqueioAcesso, error) {
	if p.EstudanteID != nil {
		return r.queryBloqueios(ctx, bloqueioSelect+` WHERE b.ativo AND b.estudante_id = $1 ORDER BY b.data_inicio`, *p.EstudanteID)
	}
	return r.queryBloqueios(ctx, bloqueioSelect+` WHERE b.ativo AND b.servidor_id = $1 ORDER BY b.data_inicio`, p.ServidorID)
}

func (r *RefeitorioRepository) GetBloqueio(ctx context.Context, id int) (*model.BloqueioAcesso, error) {
	list, err := r.queryBloqueios(ctx, bloqueioSelect+` WHERE b.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (r *RefeitorioRepository) CreateBloqueio(ctx context.Context, b *model.BloqueioAcesso) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO bloqueios_acesso (estudante_id, servidor_id, motivo, data_inicio, data_fim, ativo, criado_por_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		b.EstudanteID, b.ServidorID, b.Motivo, b.DataInicio, b.DataFim, b.Ativo, b.CriadoPorID,
	).Scan(&b.ID, &b.CreatedAt))
}

func (r *RefeitorioRepository) UpdateBloqueio(ctx context.Context, b *model.BloqueioAcesso) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE bloqueios_acesso SET motivo = $1, data_inicio = $2, data_fim = $3, ativo = $4 WHERE id = $5`,
		b.Motivo, b.DataInicio, b.DataFim, b.Ativo, b.ID,
	))
}

func (r *RefeitorioRepository) DeactivateBloqueio(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE bloqueios_acesso SET ativo = FALSE WHERE id = $1`, id))
}
