package repository

import (
	"context"
	"errors"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownCatalogo is returned for a NAPNE catalog name with no backing table.
var ErrUnknownCatalogo = errors.New("unknown napne catalog")

// NapneRepository handles NAPNE records, attendances and catalogs.
type NapneRepository struct {
	pool *pgxpool.Pool
}

// NewNapneRepository creates a new NapneRepository.
func NewNapneRepository(pool *pgxpool.Pool) *NapneRepository {
	return &NapneRepository{pool: pool}
}

// ─── Catalogs ──────────────────────────────────────────────────────────

func (r *NapneRepository) ListCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, soAtivos bool) ([]model.CatalogoNAPNE, error) {
	table, ok := kind.Table()
	if !ok {
		return nil, ErrUnknownCatalogo
	}
	query := `SELECT id, nome, sigla, cor, ativo FROM ` + table
	if soAtivos {
		query += ` WHERE ativo`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.CatalogoNAPNE])
}

func (r *NapneRepository) CreateCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, c *model.CatalogoNAPNE) error {
	table, ok := kind.Table()
	if !ok {
		return ErrUnknownCatalogo
	}
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (nome, sigla, cor, ativo) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Nome, c.Sigla, c.Cor, c.Ativo,
	).Scan(&c.ID))
}

func (r *NapneRepository) UpdateCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, c *model.CatalogoNAPNE) error {
	table, ok := kind.Table()
	if !ok {
		return ErrUnknownCatalogo
	}
	return execAffected(r.pool.Exec(ctx,
		`UPDATE `+table+` SET nome = $1, sigla = $2, cor = $3, ativo = $4 WHERE id = $5`,
		c.Nome, c.Sigla, c.Cor, c.Ativo, c.ID,
	))
}

// ─── Fichas ────────────────────────────────────────────────────────────

const fichaNapneSelect = `SELECT f.id, f.estudante_id, e.nome, f.turma_id, f.necessidade_especifica, f.telefone,
	f.atendido_por_id, f.laudo_apresentado, f.emails_enviados, f.observacoes_laudos_historico,
	f.observacao_laudo_atual, f.desempenho_bimestre_1, f.desempenho_bimestre_2, f.desempenho_bimestre_3,
	f.desempenho_bimestre_4, f.resultado_final, f.created_at, f.updated_at
	FROM napne_fichas f JOIN estudantes e ON e.id = f.estudante_id`

func (r *NapneRepository) queryFichas(ctx context.Context, sql string, args ...interface{}) ([]model.FichaNAPNE, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.FichaNAPNE])
}

func (r *NapneRepository) ListFichas(ctx context.Context, busca string, limit, offset int) ([]model.FichaNAPNE, int, error) {
	var f filter
	if busca != "" {
		f.add(`(e.nome ILIKE ? OR e.matricula_sga ILIKE ?)`, "%"+busca+"%")
	}
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM napne_fichas f JOIN estudantes e ON e.id = f.estudante_id`+f.where(), f.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.queryFichas(ctx, fichaNapneSelect+f.where()+` ORDER BY e.nome`+paging, args...)
	return list, total, err
}

func (r *NapneRepository) getFicha(ctx context.Context, where string, arg int) (*model.FichaNAPNE, error) {
	list, err := r.queryFichas(ctx, fichaNapneSelect+where, arg)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (r *NapneRepository) GetFicha(ctx context.Context, id int) (*model.FichaNAPNE, error) {
	return r.getFicha(ctx, ` WHERE f.id = $1`, id)
}

func (r *NapneRepository) GetFichaByEstudante(ctx context.Context, estudanteID int) (*model.FichaNAPNE, error) {
	return r.getFicha(ctx, ` WHERE f.estudante_id = $1`, estudanteID)
}

func (r *NapneRepository) CreateFicha(ctx context.Context, f *model.FichaNAPNE) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO napne_fichas (estudante_id, turma_id, necessidade_especifica, telefone, atendido_por_id,
		 laudo_apresentado, emails_enviados, observacoes_laudos_historico, observacao_laudo_atual,
		 desempenho_bimestre_1, desempenho_bimestre_2, desempenho_bimestre_3, desempenho_bimestre_4, resultado_final)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		f.EstudanteID, f.TurmaID, f.NecessidadeEspecifica, f.Telefone, f.AtendidoPorID, f.LaudoApresentado,
		f.EmailsEnviados, f.ObservacoesLaudosHistorico, f.ObservacaoLaudoAtual, f.DesempenhoBimestre1,
		f.DesempenhoBimestre2, f.DesempenhoBimestre3, f.DesempenhoBimestre4, f.ResultadoFinal,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt))
}

func (r *NapneRepository) UpdateFicha(ctx context.Context, f *model.FichaNAPNE) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE napne_fichas SET turma_id = $1, necessidade_especifica = $2, telefone = $3, atendido_por_id = $4,
		 laudo_apresentado = $5, emails_enviados = $6, observacoes_laudos_historico = $7, observacao_laudo_atual = $8,
		 desempenho_bimestre_1 = $9, desempenho_bimestre_2 = $10, desempenho_bimestre_3 = $11,
		 desempenho_bimestre_4 = $12, resultado_final = $13, updated_at = NOW()
		 WHERE id = $14`,
		f.TurmaID, f.NecessidadeEspecifica, f.Telefone, f.AtendidoPorID, f.LaudoApresentado, f.EmailsEnviados,
		f.ObservacoesLaudosHistorico, f.ObservacaoLaudoAtual, f.DesempenhoBimestre1, f.DesempenhoBimestre2,
		f.DesempenhoBimestre3, f.DesempenhoBimestre4, f.ResultadoFinal, f.ID,
	))
}

// ─── Atendimentos ──────────────────────────────────────────────────────

const atendimentoNapneSelect = `SELECT a.id, a.estudante_id, e.nome, a.turma_id, a.origem, a.data, a.atendido_por_id,
	a.tipo_id, a.laudo_previo,
	ARRAY(SELECT necessidade_id FROM napne_atendimento_necessidades WHERE atendimento_id = a.id ORDER BY necessidade_id),
	a.detalhamento, a.acoes, a.resumo, a.publicar_ficha_aluno, a.status_id, a.created_at
	FROM napne_atendimentos a JOIN estudantes e ON e.id = a.estudante_id`

func (r *NapneRepository) queryAtendimentos(ctx context.Context, sql string, args ...interface{}) ([]model.AtendimentoNAPNE, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AtendimentoNAPNE, error) {
		var a model.AtendimentoNAPNE
		err := row.Scan(&a.ID, &a.EstudanteID, &a.EstudanteNome, &a.TurmaID, &a.Origem, &a.Data, &a.AtendidoPorID,
			&a.TipoID, &a.LaudoPrevio, &a.NecessidadeIDs, &a.Detalhamento, &a.Acoes, &a.Resumo,
			&a.PublicarFichaAluno, &a.StatusID, &a.CreatedAt)
		return a, err
	})
}

func (r *NapneRepository) ListAtendimentos(ctx context.Context, estudanteID *int, limit, offset int) ([]model.AtendimentoNAPNE, int, error) {
	var f filter
	if estudanteID != nil {
		f.add(`a.estudante_id = ?`, *estudanteID)
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM napne_atendimentos a`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.queryAtendimentos(ctx, atendimentoNapneSelect+f.where()+` ORDER BY a.data DESC, a.id DESC`+paging, args...)
	return list, total, err
}

// ListPublicadosByEstudante returns the student's NAPNE attendances flagged for the ficha.
func (r *NapneRepository) ListPublicadosByEstudante(ctx context.Context, estudanteID int) ([]model.AtendimentoNAPNE, error) {
	return r.queryAtendimentos(ctx,
		atendimentoNapneSelect+` WHERE a.estudante_id = $1 AND a.publicar_ficha_aluno ORDER BY a.data DESC`, estudanteID)
}

func (r *NapneRepository) GetAtendimento(ctx context.Context, id int) (*model.AtendimentoNAPNE, error) {
	list, err := r.queryAtendimentos(ctx, atendimentoNapneSelect+` WHERE a.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	a := &list[0]
	if a.Encaminhamentos, err = r.ListEncaminhamentos(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *NapneRepository) CreateAtendimento(ctx context.Context, a *model.AtendimentoNAPNE) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO napne_atendimentos (estudante_id, turma_id, origem, data, atendido_por_id, tipo_id, laudo_previo,
			 detalhamento, acoes, resumo, publicar_ficha_aluno, status_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`,
			a.EstudanteID, a.TurmaID, a.Origem, a.Data, a.AtendidoPorID, a.TipoID, a.LaudoPrevio,
			a.Detalhamento, a.Acoes, a.Resumo, a.PublicarFichaAluno, a.StatusID,
		).Scan(&a.ID, &a.CreatedAt); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "napne_atendimento_necessidades", "atendimento_id", "necessidade_id", a.ID, a.NecessidadeIDs)
	}))
}

func (r *NapneRepository) UpdateAtendimento(ctx context.Context, a *model.AtendimentoNAPNE) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE napne_atendimentos SET estudante_id = $1, turma_id = $2, origem = $3, data = $4, atendido_por_id = $5,
			 tipo_id = $6, laudo_previo = $7, detalhamento = $8, acoes = $9, resumo = $10,
			 publicar_ficha_aluno = $11, status_id = $12
			 WHERE id = $13`,
			a.EstudanteID, a.TurmaID, a.Origem, a.Data, a.AtendidoPorID, a.TipoID, a.LaudoPrevio,
			a.Detalhamento, a.Acoes, a.Resumo, a.PublicarFichaAluno, a.StatusID, a.ID,
		)); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "napne_atendimento_necessidades", "atendimento_id", "necessidade_id", a.ID, a.NecessidadeIDs)
	}))
}

func (r *NapneRepository) DeleteAtendimento(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM napne_atendimentos WHERE id = $1`, id))
}

func (r *NapneRepository) ListEncaminhamentos(ctx context.Context, atendimentoID int) ([]model.ObservacaoEncaminhamento, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.atendimento_id, o.setor_id, s.nome, o.observacao, o.created_at
		 FROM napne_encaminhamentos o JOIN napne_setores s ON s.id = o.setor_id
		 WHERE o.atendimento_id = $1 ORDER BY o.created_at`, atendimentoID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ObservacaoEncaminhamento])
}

func (r *NapneRepository) CreateEncaminhamento(ctx context.Context, o *model.ObservacaoEncaminhamento) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO napne_encaminhamentos (atendimento_id, setor_id, observacao) VALUES ($1, $2, $3) RETURNING id, created_at`,
		o.AtendimentoID, o.SetorID, o.Observacao,
	).Scan(&o.ID, &o.CreatedAt))
}
