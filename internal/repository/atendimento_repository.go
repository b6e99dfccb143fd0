package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AtendimentoRepository handles attendance records and their catalogs.
type AtendimentoRepository struct {
	pool *pgxpool.Pool
}

// NewAtendimentoRepository creates a new AtendimentoRepository.
func NewAtendimentoRepository(pool *pgxpool.Pool) *AtendimentoRepository {
	return &AtendimentoRepository{pool: pool}
}

// ─── Catalogs ──────────────────────────────────────────────────────────

// catalogoAtendimento is the shape shared by tipos and situações.
type catalogoAtendimento struct {
	ID    int
	Nome  string
	Cor   string
	Ativo bool
}

func (r *AtendimentoRepository) listCatalogo(ctx context.Context, table string, soAtivos bool) ([]catalogoAtendimento, error) {
	query := `SELECT id, nome, cor, ativo FROM ` + table
	if soAtivos {
		query += ` WHERE ativo`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[catalogoAtendimento])
}

func (r *AtendimentoRepository) ListTipos(ctx context.Context, soAtivos bool) ([]model.TipoAtendimento, error) {
	items, err := r.listCatalogo(ctx, "tipos_atendimento", soAtivos)
	if err != nil {
		return nil, err
	}
	out := make([]model.TipoAtendimento, len(items))
	for i, c := range items {
		out[i] = model.TipoAtendimento(c)
	}
	return out, nil
}

func (r *AtendimentoRepository) ListSituacoes(ctx context.Context, soAtivos bool) ([]model.SituacaoAtendimento, error) {
	items, err := r.listCatalogo(ctx, "situacoes_atendimento", soAtivos)
	if err != nil {
		return nil, err
	}
	out := make([]model.SituacaoAtendimento, len(items))
	for i, c := range items {
		out[i] = model.SituacaoAtendimento(c)
	}
	return out, nil
}

func (r *AtendimentoRepository) createCatalogo(ctx context.Context, table, nome, cor string, ativo bool) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (nome, cor, ativo) VALUES ($1, $2, $3) RETURNING id`, nome, cor, ativo,
	).Scan(&id)
	return id, mapErr(err)
}

func (r *AtendimentoRepository) updateCatalogo(ctx context.Context, table string, id int, nome, cor string, ativo bool) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE `+table+` SET nome = $1, cor = $2, ativo = $3 WHERE id = $4`, nome, cor, ativo, id))
}

func (r *AtendimentoRepository) CreateTipo(ctx context.Context, t *model.TipoAtendimento) (err error) {
	t.ID, err = r.createCatalogo(ctx, "tipos_atendimento", t.Nome, t.Cor, t.Ativo)
	return err
}

func (r *AtendimentoRepository) UpdateTipo(ctx context.Context, t *model.TipoAtendimento) error {
	return r.updateCatalogo(ctx, "tipos_atendimento", t.ID, t.Nome, t.Cor, t.Ativo)
}

func (r *AtendimentoRepository) CreateSituacao(ctx context.Context, s *model.SituacaoAtendimento) (err error) {
	s.ID, err = r.createCatalogo(ctx, "situacoes_atendimento", s.Nome, s.Cor, s.Ativo)
	return err
}

func (r *AtendimentoRepository) UpdateSituacao(ctx context.Context, s *model.SituacaoAtendimento) error {
	return r.updateCatalogo(ctx, "situacoes_atendimento", s.ID, s.Nome, s.Cor, s.Ativo)
}

// ─── Atendimentos ──────────────────────────────────────────────────────

const atendimentoSelect = `SELECT a.id, a.coordenacao,
	ARRAY(SELECT estudante_id FROM atendimento_estudantes WHERE atendimento_id = a.id ORDER BY estudante_id),
	a.servidor_responsavel_id, s.nome, a.participantes, a.data, to_char(a.hora, 'HH24:MI'),
	a.tipo_id, COALESCE(t.nome, ''), a.situacao_id, COALESCE(st.nome, ''), a.origem, a.informacoes, a.observacoes,
	a.anexos, a.publicar_ficha_aluno, a.created_at, a.updated_at
	FROM atendimentos a
	JOIN servidores s ON s.id = a.servidor_responsavel_id
	LEFT JOIN tipos_atendimento t ON t.id = a.tipo_id
	LEFT JOIN situacoes_atendimento st ON st.id = a.situacao_id`

func scanAtendimento(row interface{ Scan(...interface{}) error }, a *model.Atendimento) error {
	return row.Scan(&a.ID, &a.Coordenacao, &a.EstudanteIDs, &a.ServidorResponsavelID, &a.ServidorNome, &a.Participantes,
		&a.Data, &a.Hora, &a.TipoID, &a.TipoNome, &a.SituacaoID, &a.SituacaoNome, &a.Origem, &a.Informacoes,
		&a.Observacoes, &a.Anexos, &a.PublicarFichaAluno, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AtendimentoRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Atendimento, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Atendimento, error) {
		var a model.Atendimento
		err := scanAtendimento(row, &a)
		return a, err
	})
}

func (r *AtendimentoRepository) GetByID(ctx context.Context, id int) (*model.Atendimento, error) {
	a := &model.Atendimento{}
	if err := scanAtendimento(r.pool.QueryRow(ctx, atendimentoSelect+` WHERE a.id = $1`, id), a); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func buildAtendimentoFilter(af model.AtendimentoFilter) filter {
	var f filter
	if af.Coordenacao != "" {
		f.add(`a.coordenacao = ?`, af.Coordenacao)
	}
	if af.EstudanteID != nil {
		f.add(`EXISTS (SELECT 1 FROM atendimento_estudantes ae WHERE ae.atendimento_id = a.id AND ae.estudante_id = ?)`, *af.EstudanteID)
	}
	if af.TipoID != nil {
		f.add(`a.tipo_id = ?`, *af.TipoID)
	}
	if af.SituacaoID != nil {
		f.add(`a.situacao_id = ?`, *af.SituacaoID)
	}
	if af.Inicio != nil {
		f.add(`a.data >= ?`, *af.Inicio)
	}
	if af.Fim != nil {
		f.add(`a.data <= ?`, *af.Fim)
	}
	if af.Publicados {
		f.addRaw(`a.publicar_ficha_aluno`)
	}
	return f
}

func (r *AtendimentoRepository) ListPaginated(ctx context.Context, af model.AtendimentoFilter, limit, offset int) ([]model.Atendimento, int, error) {
	f := buildAtendimentoFilter(af)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM atendimentos a`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, atendimentoSelect+f.where()+` ORDER BY a.data DESC, a.hora DESC`+paging, args...)
	return list, total, err
}

// ListPublicadosByEstudante returns the student's attendances flagged for the ficha.
func (r *AtendimentoRepository) ListPublicadosByEstudante(ctx context.Context, estudanteID int) ([]model.Atendimento, error) {
	f := buildAtendimentoFilter(model.AtendimentoFilter{EstudanteID: &estudanteID, Publicados: true})
	return r.query(ctx, atendimentoSelect+f.where()+` ORDER BY a.data DESC`, f.args...)
}

func (r *AtendimentoRepository) Create(ctx context.Context, a *model.Atendimento) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO atendimentos (coordenacao, servidor_responsavel_id, participantes, data, hora, tipo_id, situacao_id,
			 origem, informacoes, observacoes, anexos, publicar_ficha_aluno)
			 VALUES ($1, $2, $3, $4, $5::time, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING id, created_at, updated_at`,
			a.Coordenacao, a.ServidorResponsavelID, a.Participantes, a.Data, a.Hora, a.TipoID, a.SituacaoID,
			a.Origem, a.Informacoes, a.Observacoes, a.Anexos, a.PublicarFichaAluno,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "atendimento_estudantes", "atendimento_id", "estudante_id", a.ID, a.EstudanteIDs)
	}))
}

func (r *AtendimentoRepository) Update(ctx context.Context, a *model.Atendimento) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE atendimentos SET coordenacao = $1, participantes = $2, data = $3, hora = $4::time, tipo_id = $5,
			 situacao_id = $6, origem = $7, informacoes = $8, observacoes = $9, anexos = $10,
			 publicar_ficha_aluno = $11, updated_at = NOW()
			 WHERE id = $12`,
			a.Coordenacao, a.Participantes, a.Data, a.Hora, a.TipoID, a.SituacaoID, a.Origem, a.Informacoes,
			a.Observacoes, a.Anexos, a.PublicarFichaAluno, a.ID,
		)); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "atendimento_estudantes", "atendimento_id", "estudante_id", a.ID, a.EstudanteIDs)
	}))
}

func (r *AtendimentoRepository) Delete(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM atendimentos WHERE id = $1`, id))
}
