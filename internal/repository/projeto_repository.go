package repository

import (
	"context"
	"errors"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjetoRepository handles research and extension projects.
type ProjetoRepository struct {
	pool *pgxpool.Pool
}

// NewProjetoRepository creates a new ProjetoRepository.
func NewProjetoRepository(pool *pgxpool.Pool) *ProjetoRepository {
	return &ProjetoRepository{pool: pool}
}

const projetoSelect = `SELECT p.id, p.numero_processo, p.titulo, p.tipo, p.data_inicio, p.data_final, p.tema, p.area,
	p.coordenador_id, s.nome, s.email, p.envolve_estudantes, p.situacao, p.periodicidade_relatorio,
	p.data_ultimo_relatorio, p.proximo_relatorio, p.created_at, p.updated_at
	FROM projetos p JOIN servidores s ON s.id = p.coordenador_id`

func (r *ProjetoRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Projeto, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.Projeto])
}

func (r *ProjetoRepository) GetByID(ctx context.Context, id int) (*model.Projeto, error) {
	list, err := r.query(ctx, projetoSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func buildProjetoFilter(pf model.ProjetoFilter) filter {
	var f filter
	if pf.Situacao != "" {
		f.add(`p.situacao = ?`, pf.Situacao)
	}
	if pf.Tipo != "" {
		f.add(`p.tipo = ?`, pf.Tipo)
	}
	if pf.CoordenadorID != nil {
		f.add(`p.coordenador_id = ?`, *pf.CoordenadorID)
	}
	if pf.Busca != "" {
		f.add(`(p.titulo ILIKE ? OR p.numero_processo ILIKE ? OR p.area ILIKE ?)`, "%"+pf.Busca+"%")
	}
	if pf.ParticipanteID != nil {
		f.add(`(p.coordenador_id = ? OR EXISTS (SELECT 1 FROM projeto_servidores ps WHERE ps.projeto_id = p.id AND ps.servidor_id = ?))`, *pf.ParticipanteID)
	}
	return f
}

func (r *ProjetoRepository) ListPaginated(ctx context.Context, pf model.ProjetoFilter, limit, offset int) ([]model.Projeto, int, error) {
	f := buildProjetoFilter(pf)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projetos p`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, projetoSelect+f.where()+` ORDER BY p.data_inicio DESC, p.id DESC`+paging, args...)
	return list, total, err
}

// ListAtivosComRelatorio returns active projects that have a next report date.
func (r *ProjetoRepository) ListAtivosComRelatorio(ctx context.Context) ([]model.Projeto, error) {
	return r.query(ctx, projetoSelect+` WHERE p.situacao = 'ATIVO' AND p.proximo_relatorio IS NOT NULL ORDER BY p.proximo_relatorio`)
}

func (r *ProjetoRepository) Create(ctx context.Context, p *model.Projeto) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO projetos (numero_processo, titulo, tipo, data_inicio, data_final, tema, area, coordenador_id,
		 envolve_estudantes, situacao, periodicidade_relatorio, data_ultimo_relatorio, proximo_relatorio)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		p.NumeroProcesso, p.Titulo, p.Tipo, p.DataInicio, p.DataFinal, p.Tema, p.Area, p.CoordenadorID,
		p.EnvolveEstudantes, p.Situacao, p.PeriodicidadeRelatorio, p.DataUltimoRelatorio, p.ProximoRelatorio,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProjetoRepository) Update(ctx context.Context, p *model.Projeto) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE projetos SET numero_processo = $1, titulo = $2, tipo = $3, data_inicio = $4, data_final = $5, tema = $6,
		 area = $7, coordenador_id = $8, envolve_estudantes = $9, situacao = $10, periodicidade_relatorio = $11,
		 data_ultimo_relatorio = $12, proximo_relatorio = $13, updated_at = NOW()
		 WHERE id = $14`,
		p.NumeroProcesso, p.Titulo, p.Tipo, p.DataInicio, p.DataFinal, p.Tema, p.Area, p.CoordenadorID,
		p.EnvolveEstudantes, p.Situacao, p.PeriodicidadeRelatorio, p.DataUltimoRelatorio, p.ProximoRelatorio, p.ID,
	))
}

func (r *ProjetoRepository) Delete(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM projetos WHERE id = $1`, id))
}

// ─── Participações ─────────────────────────────────────────────────────

func (r *ProjetoRepository) ListServidores(ctx context.Context, projetoID int) ([]model.ParticipacaoServidor, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ps.id, ps.projeto_id, ps.servidor_id, s.nome, ps.semestre, ps.horas_semanais::float8, ps.created_at
		 FROM projeto_servidores ps JOIN servidores s ON s.id = ps.servidor_id
		 WHERE ps.projeto_id = $1 ORDER BY ps.semestre DESC, s.nome`, projetoID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ParticipacaoServidor])
}

// IsParticipante reports whether the servidor takes part in the project in any semester.
func (r *ProjetoRepository) IsParticipante(ctx context.Context, projetoID, servidorID int) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projeto_servidores WHERE projeto_id = $1 AND servidor_id = $2)`,
		projetoID, servidorID,
	).Scan(&ok)
	return ok, err
}

// SaveServidor inserts or updates a participation after re-checking the
// weekly cap under a lock on the servidor row.
func (r *ProjetoRepository) SaveServidor(ctx context.Context, ps *model.ParticipacaoServidor, limite float64) (excedeu bool, err error) {
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM servidores WHERE id = $1 FOR UPDATE`, ps.ServidorID); err != nil {
			return err
		}
		var outras float64
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(horas_semanais), 0)::float8 FROM projeto_servidores
			 WHERE servidor_id = $1 AND semestre = $2 AND NOT (projeto_id = $3)`,
			ps.ServidorID, ps.Semestre, ps.ProjetoID,
		).Scan(&outras); err != nil {
			return err
		}
		if outras+ps.HorasSemanais > limite {
			excedeu = true
			return nil
		}
		return tx.QueryRow(ctx,
			`INSERT INTO projeto_servidores (projeto_id, servidor_id, semestre, horas_semanais)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (projeto_id, servidor_id, semestre) DO UPDATE SET horas_semanais = EXCLUDED.horas_semanais
			 RETURNING id, created_at`,
			ps.ProjetoID, ps.ServidorID, ps.Semestre, ps.HorasSemanais,
		).Scan(&ps.ID, &ps.CreatedAt)
	})
	return excedeu, mapErr(err)
}

func (r *ProjetoRepository) DeleteServidor(ctx context.Context, projetoID, participacaoID int) error {
	return execAffected(r.pool.Exec(ctx,
		`DELETE FROM projeto_servidores WHERE id = $1 AND projeto_id = $2`, participacaoID, projetoID))
}

func (r *ProjetoRepository) ListEstudantes(ctx context.Context, projetoID int) ([]model.ParticipacaoEstudante, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pe.id, pe.projeto_id, pe.estudante_id, e.nome, pe.bolsista, pe.valor_bolsa::float8, pe.data_inicio,
		 pe.data_fim, pe.ativo
		 FROM projeto_estudantes pe JOIN estudantes e ON e.id = pe.estudante_id
		 WHERE pe.projeto_id = $1 ORDER BY e.nome`, projetoID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ParticipacaoEstudante])
}

func (r *ProjetoRepository) SaveEstudante(ctx context.Context, pe *model.ParticipacaoEstudante) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO projeto_estudantes (projeto_id, estudante_id, bolsista, valor_bolsa, data_inicio, data_fim, ativo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (projeto_id, estudante_id) DO UPDATE SET bolsista = EXCLUDED.bolsista,
		   valor_bolsa = EXCLUDED.valor_bolsa, data_inicio = EXCLUDED.data_inicio, data_fim = EXCLUDED.data_fim,
		   ativo = EXCLUDED.ativo
		 RETURNING id`,
		pe.ProjetoID, pe.EstudanteID, pe.Bolsista, pe.ValorBolsa, pe.DataInicio, pe.DataFim, pe.Ativo,
	).Scan(&pe.ID))
}

func (r *ProjetoRepository) DeleteEstudante(ctx context.Context, projetoID, participacaoID int) error {
	return execAffected(r.pool.Exec(ctx,
		`DELETE FROM projeto_estudantes WHERE id = $1 AND projeto_id = $2`, participacaoID, projetoID))
}

// ─── Alertas de relatório ──────────────────────────────────────────────

// EnsureAlerta creates the alert unless the same (projeto, tipo, data) exists. It reports whether it inserted.
func (r *ProjetoRepository) EnsureAlerta(ctx context.Context, a *model.AlertaRelatorio) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO alertas_relatorio (projeto_id, tipo, data_alerta) VALUES ($1, $2, $3)
		 ON CONFLICT (projeto_id, tipo, data_alerta) DO NOTHING RETURNING id`,
		a.ProjetoID, a.Tipo, a.DataAlerta,
	).Scan(&a.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAlertas returns report alerts, unseen first, optionally for one coordinator.
func (r *ProjetoRepository) ListAlertas(ctx context.Context, coordenadorID *int, soNaoVisualizados bool) ([]model.AlertaRelatorio, error) {
	var f filter
	if coordenadorID != nil {
		f.add(`p.coordenador_id = ?`, *coordenadorID)
	}
	if soNaoVisualizados {
		f.addRaw(`NOT a.visualizado`)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.projeto_id, p.titulo, a.tipo, a.data_alerta, a.visualizado, a.data_visualizacao
		 FROM alertas_relatorio a JOIN projetos p ON p.id = a.projeto_id`+f.where()+
			` ORDER BY a.visualizado, a.data_alerta DESC`, f.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.AlertaRelatorio])
}

func (r *ProjetoRepository) MarcarAlertaVisualizado(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE alertas_relatorio SET visualizado = TRUE, data_visualizacao = NOW() WHERE id = $1 AND NOT visualizado`, id))
}

// ─── Reports ───────────────────────────────────────────────────────────

// HorasPorServidor totals weekly hours per servidor and semester.
func (r *ProjetoRepository) HorasPorServidor(ctx context.Context, semestre string) ([]model.HorasServidor, error) {
	var f filter
	if semestre != "" {
		f.add(`ps.semestre = ?`, semestre)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.nome, s.siape, ps.semestre, COUNT(DISTINCT ps.projeto_id)::int, SUM(ps.horas_semanais)::float8
		 FROM projeto_servidores ps JOIN servidores s ON s.id = ps.servidor_id`+f.where()+`
		 GROUP BY s.id, s.nome, s.siape, ps.semestre
		 ORDER BY ps.semestre DESC, s.nome`, f.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.HorasServidor])
}

// Estatisticas groups project counts relative to hoje.
func (r *ProjetoRepository) Estatisticas(ctx context.Context, hoje model.Date) (*model.EstatisticasProjetos, error) {
	e := &model.EstatisticasProjetos{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE situacao = 'ATIVO' AND proximo_relatorio < $1) FROM projetos`, hoje,
	).Scan(&e.Total, &e.Atrasados)
	if err != nil {
		return nil, err
	}
	if e.PorSituacao, err = queryContagens(ctx, r.pool,
		`SELECT situacao, COUNT(*) FROM projetos GROUP BY situacao ORDER BY situacao`); err != nil {
		return nil, err
	}
	if e.PorTipo, err = queryContagens(ctx, r.pool,
		`SELECT tipo, COUNT(*) FROM projetos GROUP BY tipo ORDER BY tipo`); err != nil {
		return nil, err
	}
	if e.PorArea, err = queryContagens(ctx, r.pool,
		`SELECT COALESCE(NULLIF(area, ''), 'Não informada'), COUNT(*) FROM projetos GROUP BY 1 ORDER BY 2 DESC, 1`); err != nil {
		return nil, err
	}
	return e, nil
}

// ListRelatoriosPendentes returns active projects whose report is overdue or due by limite.
func (r *ProjetoRepository) ListRelatoriosPendentes(ctx context.Context, limite model.Date) ([]model.Projeto, error) {
	return r.query(ctx, projetoSelect+`
		WHERE p.situacao = 'ATIVO' AND p.proximo_relatorio <= $1 ORDER BY p.proximo_relatorio`, limite)
}
