package repository

import (
	"context"
	"errors"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificacaoRepository handles in-app notifications and user preferences.
type NotificacaoRepository struct {
	pool *pgxpool.Pool
}

// NewNotificacaoRepository creates a new NotificacaoRepository.
func NewNotificacaoRepository(pool *pgxpool.Pool) *NotificacaoRepository {
	return &NotificacaoRepository{pool: pool}
}

const notificacaoSelect = `SELECT id, usuario_id, tipo, titulo, mensagem, prioridade, ocorrencia_id, lida, lida_em, created_at
	FROM notificacoes`

func collectNotificacoes(rows pgx.Rows, err error) ([]model.Notificacao, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notificacao, error) {
		var n model.Notificacao
		err := row.Scan(&n.ID, &n.UsuarioID, &n.Tipo, &n.Titulo, &n.Mensagem, &n.Prioridade, &n.OcorrenciaID,
			&n.Lida, &n.LidaEm, &n.CreatedAt)
		return n, err
	})
}

func (r *NotificacaoRepository) Create(ctx context.Context, n *model.Notificacao) error {
	return mapErr(r.pool.QueryRow(ctx,
		`INSERT INTO notificacoes (usuario_id, tipo, titulo, mensagem, prioridade, ocorrencia_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		n.UsuarioID, n.Tipo, n.Titulo, n.Mensagem, n.Prioridade, n.OcorrenciaID,
	).Scan(&n.ID, &n.CreatedAt))
}

// ListPaginated retrieves a user's notifications, unread first when soNaoLidas is false.
func (r *NotificacaoRepository) ListPaginated(ctx context.Context, usuarioID int, soNaoLidas bool, limit, offset int) ([]model.Notificacao, int, error) {
	var f filter
	f.add(`usuario_id = ?`, usuarioID)
	if soNaoLidas {
		f.addRaw(`NOT lida`)
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notificacoes`+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	paging, args := f.page(limit, offset)
	list, err := collectNotificacoes(r.pool.Query(ctx, notificacaoSelect+f.where()+` ORDER BY lida, created_at DESC`+paging, args...))
	return list, total, err
}

// ListRecent returns the n newest notifications of a user.
func (r *NotificacaoRepository) ListRecent(ctx context.Context, usuarioID, n int) ([]model.Notificacao, error) {
	return collectNotificacoes(r.pool.Query(ctx,
		notificacaoSelect+` WHERE usuario_id = $1 ORDER BY created_at DESC LIMIT $2`, usuarioID, n))
}

// MarkRead marks one notification of the user as read.
func (r *NotificacaoRepository) MarkRead(ctx context.Context, usuarioID, id int) error {
	return execAffected(r.pool.Exec(ctx,
		`UPDATE notificacoes SET lida = TRUE, lida_em = COALESCE(lida_em, NOW()) WHERE id = $1 AND usuario_id = $2`,
		id, usuarioID,
	))
}

// MarkAllRead marks every unread notification of the user and returns how many changed.
func (r *NotificacaoRepository) MarkAllRead(ctx context.Context, usuarioID int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notificacoes SET lida = TRUE, lida_em = NOW() WHERE usuario_id = $1 AND NOT lida`, usuarioID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificacaoRepository) CountUnread(ctx context.Context, usuarioID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notificacoes WHERE usuario_id = $1 AND NOT lida`, usuarioID).Scan(&n)
	return n, err
}

// GetPreferencia returns the user's preferences, or the defaults when none were saved.
func (r *NotificacaoRepository) GetPreferencia(ctx context.Context, usuarioID int) (*model.PreferenciaNotificacao, error) {
	p := model.DefaultPreferencia(usuarioID)
	err := r.pool.QueryRow(ctx,
		`SELECT receber_email_novas_ocorrencias, receber_email_atualizacoes, receber_email_prazos,
		 receber_notificacoes_urgentes
		 FROM preferencias_notificacao WHERE usuario_id = $1`, usuarioID,
	).Scan(&p.ReceberEmailNovasOcorrencias, &p.ReceberEmailAtualizacoes, &p.ReceberEmailPrazos, &p.ReceberNotificacoesUrgentes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &p, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *NotificacaoRepository) UpsertPreferencia(ctx context.Context, p *model.PreferenciaNotificacao) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO preferencias_notificacao (usuario_id, receber_email_novas_ocorrencias, receber_email_atualizacoes,
		 receber_email_prazos, receber_notificacoes_urgentes)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (usuario_id) DO UPDATE SET
		   receber_email_novas_ocorrencias = EXCLUDED.receber_email_novas_ocorrencias,
		   receber_email_atualizacoes = EXCLUDED.receber_email_atualizacoes,
		   receber_email_prazos = EXCLUDED.receber_email_prazos,
		   receber_notificacoes_urgentes = EXCLUDED.receber_notificacoes_urgentes`,
		p.UsuarioID, p.ReceberEmailNovasOcorrencias, p.ReceberEmailAtualizacoes, p.ReceberEmailPrazos,
		p.ReceberNotificacoesUrgentes,
	)
	return mapErr(err)
}
