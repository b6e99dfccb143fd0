package repository

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PedagogicoRepository handles subjects and class councils.
type PedagogicoRepository struct {
	pool *pgxpool.Pool
}

// NewPedagogicoRepository creates a new PedagogicoRepository.
func NewPedagogicoRepository(pool *pgxpool.Pool) *PedagogicoRepository {
	return &PedagogicoRepository{pool: pool}
}

// ─── Disciplinas ───────────────────────────────────────────────────────

const disciplinaSelect = `SELECT id, nome, codigo, curso_id, carga_horaria, ementa, ativa, created_at FROM disciplinas`

func (r *PedagogicoRepository) ListDisciplinas(ctx context.Context, cursoID *int, soAtivas bool) ([]model.Disciplina, error) {
	var f filter
	if cursoID != nil {
		f.add(`curso_id = ?`, *cursoID)
	}
	if soAtivas {
		f.addRaw(`ativa`)
	}
	rows, err := r.pool.Query(ctx, disciplinaSelect+f.where()+` ORDER BY nome`, f.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.Disciplina])
}

func (r *PedagogicoRepository) GetDisciplina(ctx context.Context, id int) (*model.Disciplina, error) {
	rows, err := r.pool.Query(ctx, disciplinaSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[model.Disciplina])
	return d, mapErr(err)
}

func (r *PedagogicoRepository) CreateDisciplina(ctx context.Context, d *model.Disciplina) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO disciplinas (nome, codigo, curso_id, carga_horaria, ementa, ativa)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		d.Nome, d.Codigo, d.CursoID, d.CargaHoraria, d.Ementa, d.Ativa,
	).Scan(&d.ID, &d.CreatedAt))
}

// UpsertDisciplina creates the subject or updates the one with the same code.
// It reports whether a new row was inserted.
func (r *PedagogicoRepository) UpsertDisciplina(ctx context.Context, d *model.Disciplina) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO disciplinas (nome, codigo, curso_id, carga_horaria, ementa, ativa)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (codigo) DO UPDATE SET nome = EXCLUDED.nome,
		   curso_id = COALESCE(EXCLUDED.curso_id, disciplinas.curso_id),
		   carga_horaria = EXCLUDED.carga_horaria, ementa = EXCLUDED.ementa
		 RETURNING id, created_at, (xmax = 0)`,
		d.Nome, d.Codigo, d.CursoID, d.CargaHoraria, d.Ementa, d.Ativa,
	).Scan(&d.ID, &d.CreatedAt, &inserted)
	return inserted, mapErr(err)
}

func (r *PedagogicoRepository) UpdateDisciplina(ctx context.Context, d *model.Disciplina) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE disciplinas SET nome = $1, codigo = $2, curso_id = $3, carga_horaria = $4, ementa = $5, ativa = $6
		 WHERE id = $7`,
		d.Nome, d.Codigo, d.CursoID, d.CargaHoraria, d.Ementa, d.Ativa, d.ID,
	))
}

func (r *PedagogicoRepository) DeactivateDisciplina(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `UPDATE disciplinas SET ativa = FALSE WHERE id = $1`, id))
}

// ─── Disciplinas por turma ─────────────────────────────────────────────

const disciplinaTurmaSelect = `SELECT dt.id, dt.disciplina_id, d.nome, dt.turma_id, dt.docente_id, COALESCE(s.nome, ''), dt.periodo
	FROM disciplinas_turma dt
	JOIN disciplinas d ON d.id = dt.disciplina_id
	LEFT JOIN servidores s ON s.id = dt.docente_id`

func (r *PedagogicoRepository) ListDisciplinasTurma(ctx context.Context, turmaID int, periodo string) ([]model.DisciplinaTurma, error) {
	var f filter
	f.add(`dt.turma_id = ?`, turmaID)
	if periodo != "" {
		f.add(`dt.periodo = ?`, periodo)
	}
	rows, err := r.pool.Query(ctx, disciplinaTurmaSelect+f.where()+` ORDER BY d.nome`, f.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.DisciplinaTurma])
}

func (r *PedagogicoRepository) CreateDisciplinaTurma(ctx context.Context, dt *model.DisciplinaTurma) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO disciplinas_turma (disciplina_id, turma_id, docente_id, periodo) VALUES ($1, $2, $3, $4) RETURNING id`,
		dt.DisciplinaID, dt.TurmaID, dt.DocenteID, dt.Periodo,
	).Scan(&dt.ID))
}

func (r *PedagogicoRepository) UpdateDisciplinaTurma(ctx context.Context, dt *model.DisciplinaTurma) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE disciplinas_turma SET disciplina_id = $1, turma_id = $2, docente_id = $3, periodo = $4 WHERE id = $5`,
		dt.DisciplinaID, dt.TurmaID, dt.DocenteID, dt.Periodo, dt.ID,
	))
}

func (r *PedagogicoRepository) DeleteDisciplinaTurma(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM disciplinas_turma WHERE id = $1`, id))
}

// ─── Conselhos de classe ───────────────────────────────────────────────

const conselhoSelect = `SELECT c.id, c.turma_id, t.nome, c.periodo, c.data_realizacao, c.informacoes_gerais,
	c.pontos_positivos, c.pontos_atencao, c.encaminhamentos, c.coordenacao_curso_id, c.coordenacao_pedagogica_id,
	ARRAY(SELECT servidor_id FROM conselho_docentes WHERE conselho_id = c.id ORDER BY servidor_id),
	c.created_at
	FROM conselhos_classe c JOIN turmas t ON t.id = c.turma_id`

func (r *PedagogicoRepository) queryConselhos(ctx context.Context, sql string, args ...interface{}) ([]model.ConselhoClasse, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ConselhoClasse])
}

func (r *PedagogicoRepository) ListConselhos(ctx context.Context, turmaID *int, periodo string) ([]model.ConselhoClasse, error) {
	var f filter
	if turmaID != nil {
		f.add(`c.turma_id = ?`, *turmaID)
	}
	if periodo != "" {
		f.add(`c.periodo = ?`, periodo)
	}
	return r.queryConselhos(ctx, conselhoSelect+f.where()+` ORDER BY c.data_realizacao DESC`, f.args...)
}

func (r *PedagogicoRepository) GetConselho(ctx context.Context, id int) (*model.ConselhoClasse, error) {
	list, err := r.queryConselhos(ctx, conselhoSelect+` WHERE c.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (r *PedagogicoRepository) CreateConselho(ctx context.Context, c *model.ConselhoClasse) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO conselhos_classe (turma_id, periodo, data_realizacao, informacoes_gerais, pontos_positivos,
			 pontos_atencao, encaminhamentos, coordenacao_curso_id, coordenacao_pedagogica_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`,
			c.TurmaID, c.Periodo, c.DataRealizacao, c.InformacoesGerais, c.PontosPositivos, c.PontosAtencao,
			c.Encaminhamentos, c.CoordenacaoCursoID, c.CoordenacaoPedagogicaID,
		).Scan(&c.ID, &c.CreatedAt); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "conselho_docentes", "conselho_id", "servidor_id", c.ID, c.DocenteIDs)
	}))
}

func (r *PedagogicoRepository) UpdateConselho(ctx context.Context, c *model.ConselhoClasse) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE conselhos_classe SET turma_id = $1, periodo = $2, data_realizacao = $3, informacoes_gerais = $4,
			 pontos_positivos = $5, pontos_atencao = $6, encaminhamentos = $7, coordenacao_curso_id = $8,
			 coordenacao_pedagogica_id = $9
			 WHERE id = $10`,
			c.TurmaID, c.Periodo, c.DataRealizacao, c.InformacoesGerais, c.PontosPositivos, c.PontosAtencao,
			c.Encaminhamentos, c.CoordenacaoCursoID, c.CoordenacaoPedagogicaID, c.ID,
		)); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "conselho_docentes", "conselho_id", "servidor_id", c.ID, c.DocenteIDs)
	}))
}

func (r *PedagogicoRepository) DeleteConselho(ctx context.Context, id int) error {
	return execAffected(r.pool.Exec(ctx, `DELETE FROM conselhos_classe WHERE id = $1`, id))
}

// ─── Informações por estudante ─────────────────────────────────────────

const informacaoSelect = `SELECT i.id, i.conselho_id, i.estudante_id, e.nome, i.observacoes, i.frequencia, i.situacao_geral,
	i.participacao, i.relacionamento, i.dificuldades, i.potencialidades, i.necessita_acompanhamento,
	i.encaminhamento_cdpd, i.encaminhamento_cdae, i.encaminhamento_napne, i.observacoes_encaminhamento
	FROM conselho_estudantes i JOIN estudantes e ON e.id = i.estudante_id`

func (r *PedagogicoRepository) queryInformacoes(ctx context.Context, sql string, args ...interface{}) ([]model.InformacaoEstudanteConselho, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.InformacaoEstudanteConselho])
}

func (r *PedagogicoRepository) ListInformacoes(ctx context.Context, conselhoID int) ([]model.InformacaoEstudanteConselho, error) {
	return r.queryInformacoes(ctx, informacaoSelect+` WHERE i.conselho_id = $1 ORDER BY e.nome`, conselhoID)
}

// ListInformacoesByEstudante returns every council record of a student, newest council first.
func (r *PedagogicoRepository) ListInformacoesByEstudante(ctx context.Context, estudanteID int) ([]model.InformacaoEstudanteConselho, error) {
	return r.queryInformacoes(ctx, informacaoSelect+`
		JOIN conselhos_classe c ON c.id = i.conselho_id
		WHERE i.estudante_id = $1 ORDER BY c.data_realizacao DESC`, estudanteID)
}

// SaveInformacao upserts a student's council record and replaces its per-subject grades.
func (r *PedagogicoRepository) SaveInformacao(ctx context.Context, i *model.InformacaoEstudanteConselho, disciplinas []model.InformacaoDisciplinaConselho) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO conselho_estudantes (conselho_id, estudante_id, observacoes, frequencia, situacao_geral,
			 participacao, relacionamento, dificuldades, potencialidades, necessita_acompanhamento,
			 encaminhamento_cdpd, encaminhamento_cdae, encaminhamento_napne, observacoes_encaminhamento)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (conselho_id, estudante_id) DO UPDATE SET observacoes = EXCLUDED.observacoes,
			   frequencia = EXCLUDED.frequencia, situacao_geral = EXCLUDED.situacao_geral,
			   participacao = EXCLUDED.participacao, relacionamento = EXCLUDED.relacionamento,
			   dificuldades = EXCLUDED.dificuldades, potencialidades = EXCLUDED.potencialidades,
			   necessita_acompanhamento = EXCLUDED.necessita_acompanhamento,
			   encaminhamento_cdpd = EXCLUDED.encaminhamento_cdpd, encaminhamento_cdae = EXCLUDED.encaminhamento_cdae,
			   encaminhamento_napne = EXCLUDED.encaminhamento_napne,
			   observacoes_encaminhamento = EXCLUDED.observacoes_encaminhamento
			 RETURNING id`,
			i.ConselhoID, i.EstudanteID, i.Observacoes, i.Frequencia, i.SituacaoGeral, i.Participacao,
			i.Relacionamento, i.Dificuldades, i.Potencialidades, i.NecessitaAcompanhamento,
			i.EncaminhamentoCDPD, i.EncaminhamentoCDAE, i.EncaminhamentoNAPNE, i.ObservacoesEncaminhamento,
		).Scan(&i.ID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM conselho_disciplinas WHERE informacao_id = $1`, i.ID); err != nil {
			return err
		}
		for k := range disciplinas {
			d := &disciplinas[k]
			d.InformacaoID = i.ID
			if err := tx.QueryRow(ctx,
				`INSERT INTO conselho_disciplinas (informacao_id, disciplina_turma_id, nota, frequencia, observacoes)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				d.InformacaoID, d.DisciplinaTurmaID, d.Nota, d.Frequencia, d.Observacoes,
			).Scan(&d.ID); err != nil {
				return err
			}
		}
		return nil
	}))
}

func (r *PedagogicoRepository) ListInformacoesDisciplina(ctx context.Context, informacaoID int) ([]model.InformacaoDisciplinaConselho, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, informacao_id, disciplina_turma_id, nota::float8, frequencia::float8, observacoes
		 FROM conselho_disciplinas WHERE informacao_id = $1 ORDER BY id`, informacaoID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.InformacaoDisciplinaConselho])
}
