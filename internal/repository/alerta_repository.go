package repository

import (
	"context"
	"errors"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertaRepository handles threshold configurations and the alerts they produce.
type AlertaRepository struct {
	pool *pgxpool.Pool
}

// NewAlertaRepository creates a new AlertaRepository.
func NewAlertaRepository(pool *pgxpool.Pool) *AlertaRepository {
	return &AlertaRepository{pool: pool}
}

// ─── Configurações ─────────────────────────────────────────────────────

const limiteSelect = `SELECT c.id, c.tipo_ocorrencia_id, t.descricao, c.limite_mensal, c.ativo, c.coordenacoes_notificar,
	c.gerar_notificacao_sistema, c.gerar_email_coordenacao, c.gerar_email_responsaveis, c.created_at, c.updated_at
	FROM configuracoes_limite c JOIN tipos_ocorrencia_rapida t ON t.id = c.tipo_ocorrencia_id`

func scanLimite(row interface{ Scan(...interface{}) error }, c *model.ConfiguracaoLimite) error {
	var coords []string
	err := row.Scan(&c.ID, &c.TipoOcorrenciaID, &c.TipoDescricao, &c.LimiteMensal, &c.Ativo, &coords,
		&c.GerarNotificacaoSistema, &c.GerarEmailCoordenacao, &c.GerarEmailResponsaveis, &c.CreatedAt, &c.UpdatedAt)
	c.CoordenacoesNotificar = make([]model.Coordenacao, len(coords))
	for i, s := range coords {
		c.CoordenacoesNotificar[i] = model.Coordenacao(s)
	}
	return err
}

func coordCodes(coords []model.Coordenacao) []string {
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = string(c)
	}
	return out
}

func (r *AlertaRepository) ListConfiguracoes(ctx context.Context) ([]model.ConfiguracaoLimite, error) {
	rows, err := r.pool.Query(ctx, limiteSelect+` ORDER BY t.descricao`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ConfiguracaoLimite, error) {
		var c model.ConfiguracaoLimite
		err := scanLimite(row, &c)
		return c, err
	})
}

func (r *AlertaRepository) GetConfiguracao(ctx context.Context, id int) (*model.ConfiguracaoLimite, error) {
	c := &model.ConfiguracaoLimite{}
	if err := scanLimite(r.pool.QueryRow(ctx, limiteSelect+` WHERE c.id = $1`, id), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// GetConfiguracaoAtiva returns the active configuration of a type, or ErrNotFound.
func (r *AlertaRepository) GetConfiguracaoAtiva(ctx context.Context, tipoID int) (*model.ConfiguracaoLimite, error) {
	c := &model.ConfiguracaoLimite{}
	if err := scanLimite(r.pool.QueryRow(ctx, limiteSelect+` WHERE c.tipo_ocorrencia_id = $1 AND c.ativo`, tipoID), c); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *AlertaRepository) CreateConfiguracao(ctx context.Context, c *model.ConfiguracaoLimite) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO configuracoes_limite (tipo_ocorrencia_id, limite_mensal, ativo, coordenacoes_notificar,
		 gerar_notificacao_sistema, gerar_email_coordenacao, gerar_email_responsaveis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		c.TipoOcorrenciaID, c.LimiteMensal, c.Ativo, coordCodes(c.CoordenacoesNotificar),
		c.GerarNotificacaoSistema, c.GerarEmailCoordenacao, c.GerarEmailResponsaveis,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *AlertaRepository) UpdateConfiguracao(ctx context.Context, c *model.ConfiguracaoLimite) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE configuracoes_limite SET tipo_ocorrencia_id = $1, limite_mensal = $2, ativo = $3,
		 coordenacoes_notificar = $4, gerar_notificacao_sistema = $5, gerar_email_coordenacao = $6,
		 gerar_email_responsaveis = $7, updated_at = NOW()
		 WHERE id = $8`,
		c.TipoOcorrenciaID, c.LimiteMensal, c.Ativo, coordCodes(c.CoordenacoesNotificar),
		c.GerarNotificacaoSistema, c.GerarEmailCoordenacao, c.GerarEmailResponsaveis, c.ID,
	))
}

func (r *AlertaRepository) DeactivateConfiguracao(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE configuracoes_limite SET ativo = FALSE, updated_at = NOW() WHERE id = $1`, id))
}

// ─── Alertas ───────────────────────────────────────────────────────────

const alertaSelect = `SELECT a.id, a.estudante_id, e.nome, a.tipo_ocorrencia_id, t.descricao, a.mes_referencia,
	a.quantidade_ocorrencias, a.notificacao_sistema_criada, a.email_coordenacao_enviado, a.email_responsaveis_enviado,
	a.created_at, a.updated_at
	FROM alertas_limite a
	JOIN estudantes e ON e.id = a.estudante_id
	JOIN tipos_ocorrencia_rapida t ON t.id = a.tipo_ocorrencia_id`

func scanAlerta(row interface{ Scan(...interface{}) error }, a *model.AlertaLimite) error {
	return row.Scan(&a.ID, &a.EstudanteID, &a.EstudanteNome, &a.TipoOcorrenciaID, &a.TipoDescricao, &a.MesReferencia,
		&a.QuantidadeOcorrencias, &a.NotificacaoSistemaCriada, &a.EmailCoordenacaoEnviado, &a.EmailResponsaveisEnviado,
		&a.CreatedAt, &a.UpdatedAt)
}

// GetAlerta returns the alert of a (student, type, month) bucket, or ErrNotFound.
func (r *AlertaRepository) GetAlerta(ctx context.Context, k model.AlertaChave) (*model.AlertaLimite, error) {
	a := &model.AlertaLimite{}
	err := scanAlerta(r.pool.QueryRow(ctx,
		alertaSelect+` WHERE a.estudante_id = $1 AND a.tipo_ocorrencia_id = $2 AND a.mes_referencia = $3`,
		k.EstudanteID, k.TipoID, k.Mes), a)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// InsertAlerta creates the alert unless one already exists for its bucket.
// It reports whether this call inserted the row.
func (r *AlertaRepository) InsertAlerta(ctx context.Context, a *model.AlertaLimite) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO alertas_limite (estudante_id, tipo_ocorrencia_id, mes_referencia, quantidade_ocorrencias)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (estudante_id, tipo_ocorrencia_id, mes_referencia) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		a.EstudanteID, a.TipoOcorrenciaID, a.MesReferencia, a.QuantidadeOcorrencias,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err)
	}
	return true, nil
}

func (r *AlertaRepository) UpdateQuantidade(ctx context.Context, id, quantidade int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE alertas_limite SET quantidade_ocorrencias = $1, updated_at = NOW() WHERE id = $2`, quantidade, id))
}

func (r *AlertaRepository) DeleteAlerta(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM alertas_limite WHERE id = $1`, id))
}

// MarkCanais sets the channel flags that are true in the arguments. Flags are never cleared.
func (r *AlertaRepository) MarkCanais(ctx context.Context, id int, sistema, emailCoordenacao, emailResponsaveis bool) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE alertas_limite SET notificacao_sistema_criada = notificacao_sistema_criada OR $1,
		 email_coordenacao_enviado = email_coordenacao_enviado OR $2,
		 email_responsaveis_enviado = email_responsaveis_enviado OR $3, updated_at = NOW()
		 WHERE id = $4`,
		sistema, emailCoordenacao, emailResponsaveis, id,
	))
}

func buildAlertaFilter(af model.AlertaFilter) filter {
	var f filter
	if af.Mes != nil {
		f.add(`a.mes_referencia = ?`, af.Mes.MonthStart())
	}
	if af.EstudanteID != nil {
		f.add(`a.estudante_id = ?`, *af.EstudanteID)
	}
	if af.TipoID != nil {
		f.add(`a.tipo_ocorrencia_id = ?`, *af.TipoID)
	}
	return f
}

func (r *AlertaRepository) ListPaginated(ctx context.Context, af model.AlertaFilter, limit, offset int) ([]model.AlertaLimite, int, error) {
	f := buildAlertaFilter(af)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alertas_limite a`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	rows, err := r.pool.Query(ctx, alertaSelect+f.where()+` ORDER BY a.mes_referencia DESC, a.quantidade_ocorrencias DESC`+paging, args...)
	if err != nil {
		return nil, 0, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AlertaLimite, error) {
		var a model.AlertaLimite
		err := scanAlerta(row, &a)
		return a, err
	})
	return list, total, err
}

// CountMes returns how many alerts exist for the month containing mes.
func (r *AlertaRepository) CountMes(ctx context.Context, mes model.Date) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alertas_limite WHERE mes_referencia = $1`, mes.MonthStart()).Scan(&n)
	return n, err
}
