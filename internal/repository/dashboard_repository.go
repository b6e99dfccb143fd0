package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles the general and committee dashboard queries.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the headline counters relative to hoje.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context, hoje model.Date) (ocorrenciasMes, rapidasHoje, alertasMes, estudantesAtivos int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM ocorrencias WHERE data >= $1 AND data < $2),
			(SELECT COUNT(*) FROM ocorrencias_rapidas WHERE data = $3),
			(SELECT COUNT(*) FROM alertas_limite WHERE mes_referencia = $1),
			(SELECT COUNT(*) FROM estudantes WHERE situacao = 'ATIVO')`,
		hoje.MonthStart(), hoje.NextMonthStart(), hoje,
	).Scan(&ocorrenciasMes, &rapidasHoje, &alertasMes, &estudantesAtivos)
	return
}

// GetStatusCounts retrieves the distribution of occurrences by status.
func (r *DashboardRepository) GetStatusCounts(ctx context.Context) (map[model.OcorrenciaStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM ocorrencias GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.OcorrenciaStatus]int)
	for rows.Next() {
		var status model.OcorrenciaStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetPorMes counts occurrences per month over the 12 months ending in hoje's month.
func (r *DashboardRepository) GetPorMes(ctx context.Context, hoje model.Date) ([]model.ContagemLabel, error) {
	fim := hoje.MonthStart()
	inicio := model.NewDate(fim.Time().AddDate(0, -11, 0))
	return queryContagens(ctx, r.pool,
		`SELECT to_char(g.mes, 'YYYY-MM'), COUNT(o.id)
		 FROM generate_series($1::date, $2::date, interval '1 month') AS g(mes)
		 LEFT JOIN ocorrencias o ON date_trunc('month', o.data) = g.mes
		 GROUP BY g.mes ORDER BY g.mes`, inicio, fim)
}

// GetPorGravidade counts occurrences by the severity of their infração.
func (r *DashboardRepository) GetPorGravidade(ctx context.Context) ([]model.ContagemLabel, error) {
	return queryContagens(ctx, r.pool,
		`SELECT COALESCE(i.gravidade, 'SEM_INFRACAO'), COUNT(*)
		 FROM ocorrencias o LEFT JOIN infracoes i ON i.id = o.infracao_id
		 GROUP BY 1 ORDER BY 2 DESC`)
}

// GetPorTurma counts occurrences per class, largest first.
func (r *DashboardRepository) GetPorTurma(ctx context.Context, limit int) ([]model.ContagemLabel, error) {
	return queryContagens(ctx, r.pool,
		`SELECT t.nome, COUNT(*) FROM ocorrencias o JOIN turmas t ON t.id = o.turma_id
		 GROUP BY t.nome ORDER BY COUNT(*) DESC, t.nome LIMIT $1`, limit)
}
