package repository

import (
	"context"
	"errors"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStaleStatus is returned when the stored status changed since the ocorrência was read.
var ErrStaleStatus = errors.New("ocorrencia status changed concurrently")

// OcorrenciaRepository handles disciplinary occurrences and their process records.
type OcorrenciaRepository struct {
	pool *pgxpool.Pool
}

// NewOcorrenciaRepository creates a new OcorrenciaRepository.
func NewOcorrenciaRepository(pool *pgxpool.Pool) *OcorrenciaRepository {
	return &OcorrenciaRepository{pool: pool}
}

const ocorrenciaSelect = `SELECT o.id, o.data, to_char(o.horario, 'HH24:MI'), o.curso_id, o.turma_id, COALESCE(t.nome, ''),
	ARRAY(SELECT estudante_id FROM ocorrencia_estudantes WHERE ocorrencia_id = o.id ORDER BY estudante_id),
	o.testemunhas, o.descricao, o.infracao_id, COALESCE(i.gravidade, ''), o.evidencias, o.status,
	o.prazo_defesa, o.data_defesa, o.defesa_texto, o.medida_preventiva, o.sancao_id, o.sancao_detalhes,
	o.responsavel_registro_id, s.nome, o.created_at, o.updated_at
	FROM ocorrencias o
	JOIN servidores s ON s.id = o.responsavel_registro_id
	LEFT JOIN turmas t ON t.id = o.turma_id
	LEFT JOIN infracoes i ON i.id = o.infracao_id`

func scanOcorrencia(row interface{ Scan(...interface{}) error }, o *model.Ocorrencia) error {
	return row.Scan(&o.ID, &o.Data, &o.Horario, &o.CursoID, &o.TurmaID, &o.TurmaNome,
		&o.EstudanteIDs, &o.Testemunhas, &o.Descricao, &o.InfracaoID, &o.Gravidade, &o.Evidencias, &o.Status,
		&o.PrazoDefesa, &o.DataDefesa, &o.DefesaTexto, &o.MedidaPreventiva, &o.SancaoID, &o.SancaoDetalhes,
		&o.ResponsavelRegistroID, &o.ResponsavelNome, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OcorrenciaRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Ocorrencia, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Ocorrencia
	for rows.Next() {
		var o model.Ocorrencia
		if err := scanOcorrencia(rows, &o); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *OcorrenciaRepository) GetByID(ctx context.Context, id int) (*model.Ocorrencia, error) {
	o := &model.Ocorrencia{}
	if err := scanOcorrencia(r.pool.QueryRow(ctx, ocorrenciaSelect+` WHERE o.id = $1`, id), o); err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func buildOcorrenciaFilter(of model.OcorrenciaFilter) filter {
	var f filter
	if of.Status != "" {
		f.add(`o.status = ?`, of.Status)
	}
	if of.EstudanteID != nil {
		f.add(`EXISTS (SELECT 1 FROM ocorrencia_estudantes oe WHERE oe.ocorrencia_id = o.id AND oe.estudante_id = ?)`, *of.EstudanteID)
	}
	if of.TurmaID != nil {
		f.add(`o.turma_id = ?`, *of.TurmaID)
	}
	if of.Inicio != nil {
		f.add(`o.data >= ?`, *of.Inicio)
	}
	if of.Fim != nil {
		f.add(`o.data <= ?`, *of.Fim)
	}
	return f
}

// ListPaginated retrieves occurrences matching the filter, newest first.
func (r *OcorrenciaRepository) ListPaginated(ctx context.Context, of model.OcorrenciaFilter, limit, offset int) ([]model.Ocorrencia, int, error) {
	f := buildOcorrenciaFilter(of)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ocorrencias o`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := r.query(ctx, ocorrenciaSelect+f.where()+` ORDER BY o.data DESC, o.horario DESC, o.id DESC`+paging, args...)
	return list, total, err
}

// ListByEstudante retrieves every occurrence involving the student.
func (r *OcorrenciaRepository) ListByEstudante(ctx context.Context, estudanteID int) ([]model.Ocorrencia, error) {
	f := buildOcorrenciaFilter(model.OcorrenciaFilter{EstudanteID: &estudanteID})
	return r.query(ctx, ocorrenciaSelect+f.where()+` ORDER BY o.data DESC, o.id DESC`, f.args...)
}

// ListRecent returns the last n registered occurrences.
func (r *OcorrenciaRepository) ListRecent(ctx context.Context, n int) ([]model.Ocorrencia, error) {
	return r.query(ctx, ocorrenciaSelect+` ORDER BY o.created_at DESC LIMIT $1`, n)
}

// ListByStatus returns occurrences in any of the statuses, oldest first.
func (r *OcorrenciaRepository) ListByStatus(ctx context.Context, statuses []model.OcorrenciaStatus) ([]model.Ocorrencia, error) {
	codes := make([]string, len(statuses))
	for i, s := range statuses {
		codes[i] = string(s)
	}
	return r.query(ctx, ocorrenciaSelect+` WHERE o.status = ANY($1) ORDER BY o.data, o.id`, codes)
}

// ListPrazosEntre returns open processes whose defence deadline falls in [inicio, fim].
func (r *OcorrenciaRepository) ListPrazosEntre(ctx context.Context, inicio, fim model.Date) ([]model.Ocorrencia, error) {
	return r.query(ctx, ocorrenciaSelect+`
		WHERE o.prazo_defesa BETWEEN $1 AND $2
		  AND o.status IN ('ESTUDANTE_NOTIFICADO', 'AGUARDANDO_DEFESA')
		ORDER BY o.prazo_defesa, o.id`, inicio, fim)
}

// Create inserts the occurrence and its students in one transaction.
func (r *OcorrenciaRepository) Create(ctx context.Context, o *model.Ocorrencia) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO ocorrencias (data, horario, curso_id, turma_id, testemunhas, descricao, infracao_id, evidencias,
			 status, medida_preventiva, responsavel_registro_id)
			 VALUES ($1, $2::time, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id, created_at, updated_at`,
			o.Data, o.Horario, o.CursoID, o.TurmaID, o.Testemunhas, o.Descricao, o.InfracaoID, o.Evidencias,
			o.Status, o.MedidaPreventiva, o.ResponsavelRegistroID,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "ocorrencia_estudantes", "ocorrencia_id", "estudante_id", o.ID, o.EstudanteIDs)
	}))
}

// Update rewrites the registration fields. Process fields are changed only through Transition.
func (r *OcorrenciaRepository) Update(ctx context.Context, o *model.Ocorrencia) error {
	return mapErr(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := execAffected(tx.Exec(ctx,
			`UPDATE ocorrencias SET data = $1, horario = $2::time, curso_id = $3, turma_id = $4, testemunhas = $5,
			 descricao = $6, infracao_id = $7, evidencias = $8, medida_preventiva = $9, updated_at = NOW()
			 WHERE id = $10`,
			o.Data, o.Horario, o.CursoID, o.TurmaID, o.Testemunhas, o.Descricao, o.InfracaoID, o.Evidencias,
			o.MedidaPreventiva, o.ID,
		)); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "ocorrencia_estudantes", "ocorrencia_id", "estudante_id", o.ID, o.EstudanteIDs)
	}))
}

// UpdateEvidencias stores the path of an uploaded evidence file.
func (r *OcorrenciaRepository) UpdateEvidencias(ctx context.Context, id int, path string) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE ocorrencias SET evidencias = $1, updated_at = NOW() WHERE id = $2`, path, id))
}

// ─── Flow ──────────────────────────────────────────────────────────────

// Transicao is one applied flow action and the records created with it.
type Transicao struct {
	Ocorrencia *model.Ocorrencia
	Anterior   model.OcorrenciaStatus
	Acao       model.FlowAction
	ServidorID int
	Observacao string

	Comissao    *model.Comissao
	Recurso     *model.Recurso
	Notificacao *model.NotificacaoOficial
}

// Transition persists the new process state, the history row and any
// attached record atomically. It fails with ErrStaleStatus when another
// request moved the process first.
func (r *OcorrenciaRepository) Transition(ctx context.Context, t Transicao) (*model.OcorrenciaHistorico, error) {
	o := t.Ocorrencia
	h := &model.OcorrenciaHistorico{
		OcorrenciaID:   o.ID,
		StatusAnterior: t.Anterior,
		StatusNovo:     o.Status,
		Acao:           t.Acao,
		ServidorID:     &t.ServidorID,
		Observacao:     t.Observacao,
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE ocorrencias SET status = $1, prazo_defesa = $2, data_defesa = $3, defesa_texto = $4,
			 sancao_id = $5, sancao_detalhes = $6, updated_at = NOW()
			 WHERE id = $7 AND status = $8`,
			o.Status, o.PrazoDefesa, o.DataDefesa, o.DefesaTexto, o.SancaoID, o.SancaoDetalhes, o.ID, t.Anterior,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrStaleStatus
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO ocorrencia_historico (ocorrencia_id, status_anterior, status_novo, acao, servidor_id, observacao)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
			h.OcorrenciaID, h.StatusAnterior, h.StatusNovo, h.Acao, h.ServidorID, h.Observacao,
		).Scan(&h.ID, &h.CreatedAt); err != nil {
			return err
		}

		if t.Comissao != nil {
			if err := createComissao(ctx, tx, t.Comissao); err != nil {
				return err
			}
		}
		if t.Recurso != nil {
			if err := tx.QueryRow(ctx,
				`INSERT INTO recursos (ocorrencia_id, argumentacao) VALUES ($1, $2) RETURNING id, resultado, created_at`,
				t.Recurso.OcorrenciaID, t.Recurso.Argumentacao,
			).Scan(&t.Recurso.ID, &t.Recurso.Resultado, &t.Recurso.CreatedAt); err != nil {
				return err
			}
		}
		if n := t.Notificacao; n != nil {
			if err := tx.QueryRow(ctx,
				`INSERT INTO notificacoes_oficiais (ocorrencia_id, destinatarios, tipo, meio_envio, texto)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id, data_envio`,
				n.OcorrenciaID, n.Destinatarios, n.Tipo, n.MeioEnvio, n.Texto,
			).Scan(&n.ID, &n.DataEnvio); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleStatus) {
			return nil, err
		}
		return nil, mapErr(err)
	}
	return h, nil
}

func (r *OcorrenciaRepository) ListHistorico(ctx context.Context, ocorrenciaID int) ([]model.OcorrenciaHistorico, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT h.id, h.ocorrencia_id, h.status_anterior, h.status_novo, h.acao, h.servidor_id, COALESCE(s.nome, ''),
		 h.observacao, h.created_at
		 FROM ocorrencia_historico h LEFT JOIN servidores s ON s.id = h.servidor_id
		 WHERE h.ocorrencia_id = $1 ORDER BY h.created_at, h.id`, ocorrenciaID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OcorrenciaHistorico, error) {
		var h model.OcorrenciaHistorico
		err := row.Scan(&h.ID, &h.OcorrenciaID, &h.StatusAnterior, &h.StatusNovo, &h.Acao, &h.ServidorID, &h.ServidorNome,
			&h.Observacao, &h.CreatedAt)
		return h, err
	})
}

// ─── Comissão ──────────────────────────────────────────────────────────

func createComissao(ctx context.Context, q querier, c *model.Comissao) error {
	if err := q.QueryRow(ctx,
		`INSERT INTO comissoes (ocorrencia_id, presidente_id, data_instauracao)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		c.OcorrenciaID, c.PresidenteID, c.DataInstauracao,
	).Scan(&c.ID, &c.CreatedAt); err != nil {
		return err
	}
	return replaceLinks(ctx, q, "comissao_membros", "comissao_id", "servidor_id", c.ID, c.MembroIDs)
}

// GetComissao returns the committee of an occurrence, or ErrNotFound.
func (r *OcorrenciaRepository) GetComissao(ctx context.Context, ocorrenciaID int) (*model.Comissao, error) {
	c := &model.Comissao{}
	err := r.pool.QueryRow(ctx,
		`SELECT c.id, c.ocorrencia_id,
		 ARRAY(SELECT servidor_id FROM comissao_membros WHERE comissao_id = c.id ORDER BY servidor_id),
		 c.presidente_id, c.data_instauracao, c.data_conclusao, c.parecer_final, c.created_at
		 FROM comissoes c WHERE c.ocorrencia_id = $1`, ocorrenciaID,
	).Scan(&c.ID, &c.OcorrenciaID, &c.MembroIDs, &c.PresidenteID, &c.DataInstauracao, &c.DataConclusao, &c.ParecerFinal, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// ConcluirComissao records the final opinion of the committee.
func (r *OcorrenciaRepository) ConcluirComissao(ctx context.Context, ocorrenciaID int, parecer string, data model.Date) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE comissoes SET parecer_final = $1, data_conclusao = $2 WHERE ocorrencia_id = $3`,
		parecer, data, ocorrenciaID,
	))
}

// ─── Notificações oficiais, recursos, documentos ───────────────────────

func (r *OcorrenciaRepository) ListNotificacoesOficiais(ctx context.Context, ocorrenciaID int) ([]model.NotificacaoOficial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ocorrencia_id, destinatarios, tipo, meio_envio, texto, data_envio, data_recebimento
		 FROM notificacoes_oficiais WHERE ocorrencia_id = $1 ORDER BY data_envio`, ocorrenciaID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.NotificacaoOficial, error) {
		var n model.NotificacaoOficial
		err := row.Scan(&n.ID, &n.OcorrenciaID, &n.Destinatarios, &n.Tipo, &n.MeioEnvio, &n.Texto, &n.DataEnvio, &n.DataRecebimento)
		return n, err
	})
}

// ConfirmarRecebimento stamps the receipt time of an official notice.
func (r *OcorrenciaRepository) ConfirmarRecebimento(ctx context.Context, ocorrenciaID, notificacaoID int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE notificacoes_oficiais SET data_recebimento = NOW()
		 WHERE id = $1 AND ocorrencia_id = $2 AND data_recebimento IS NULL`,
		notificacaoID, ocorrenciaID,
	))
}

func (r *OcorrenciaRepository) ListRecursos(ctx context.Context, ocorrenciaID int) ([]model.Recurso, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ocorrencia_id, argumentacao, parecer, data_decisao, resultado, created_at
		 FROM recursos WHERE ocorrencia_id = $1 ORDER BY created_at`, ocorrenciaID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Recurso, error) {
		var x model.Recurso
		err := row.Scan(&x.ID, &x.OcorrenciaID, &x.Argumentacao, &x.Parecer, &x.DataDecisao, &x.Resultado, &x.CreatedAt)
		return x, err
	})
}

// DecidirRecurso records the decision of a pending appeal.
func (r *OcorrenciaRepository) DecidirRecurso(ctx context.Context, ocorrenciaID, recursoID int, parecer string, resultado model.ResultadoRecurso, data model.Date) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE recursos SET parecer = $1, resultado = $2, data_decisao = $3
		 WHERE id = $4 AND ocorrencia_id = $5 AND resultado = 'PENDENTE'`,
		parecer, resultado, data, recursoID, ocorrenciaID,
	))
}

func (r *OcorrenciaRepository) CreateDocumento(ctx context.Context, d *model.DocumentoGerado) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO documentos_gerados (ocorrencia_id, ocorrencia_rapida_id, tipo, arquivo, assinado_por_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		d.OcorrenciaID, d.OcorrenciaRapidaID, d.Tipo, d.Arquivo, d.AssinadoPorID,
	).Scan(&d.ID, &d.CreatedAt))
}

const documentoSelect = `SELECT id, ocorrencia_id, ocorrencia_rapida_id, tipo, arquivo, assinado_por_id, created_at
	FROM documentos_gerados`

func scanDocumento(row interface{ Scan(...interface{}) error }, d *model.DocumentoGerado) error {
	return row.Scan(&d.ID, &d.OcorrenciaID, &d.OcorrenciaRapidaID, &d.Tipo, &d.Arquivo, &d.AssinadoPorID, &d.CreatedAt)
}

func (r *OcorrenciaRepository) GetDocumento(ctx context.Context, id int) (*model.DocumentoGerado, error) {
	d := &model.DocumentoGerado{}
	if err := scanDocumento(r.pool.QueryRow(ctx, documentoSelect+` WHERE id = $1`, id), d); err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

// ListDocumentos lists the documents of an occurrence (rapida false) or a quick occurrence (rapida true).
func (r *OcorrenciaRepository) ListDocumentos(ctx context.Context, ownerID int, rapida bool) ([]model.DocumentoGerado, error) {
	col := "ocorrencia_id"
	if rapida {
		col = "ocorrencia_rapida_id"
	}
	rows, err := r.pool.Query(ctx, documentoSelect+` WHERE `+col+` = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DocumentoGerado, error) {
		var d model.DocumentoGerado
		err := scanDocumento(row, &d)
		return d, err
	})
}
