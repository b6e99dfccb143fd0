package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const unreadCountTTL = 5 * time.Minute

// NovaNotificacao is an in-app notice to be delivered to one user.
type NovaNotificacao struct {
	Destinatario model.Destinatario
	Tipo         model.TipoNotificacao
	Titulo       string
	Mensagem     string
	Prioridade   model.Prioridade
	OcorrenciaID *int
}

// Notificador creates in-app notifications.
type Notificador interface {
	Criar(ctx context.Context, n NovaNotificacao) (*model.Notificacao, error)
}

// NotificacaoService persists notifications and fans them out to the
// realtime channel and, for urgent notices, to email.
type NotificacaoService struct {
	repo    *repository.NotificacaoRepository
	rdb     *redis.Client
	queue   notify.Enqueuer
	baseURL string
	log     zerolog.Logger
}

// NewNotificacaoService creates a new NotificacaoService.
func NewNotificacaoService(repo *repository.NotificacaoRepository, rdb *redis.Client, queue notify.Enqueuer, cfg *config.Config, log zerolog.Logger) *NotificacaoService {
	return &NotificacaoService{
		repo:    repo,
		rdb:     rdb,
		queue:   queue,
		baseURL: cfg.PublicBaseURL,
		log:     log.With().Str("component", "notificacao_service").Logger(),
	}
}

// Criar persists n, publishes it to the user's channel, drops the cached
// unread count and queues an email when the notice is urgent and the user
// accepts urgent notices.
func (s *NotificacaoService) Criar(ctx context.Context, n NovaNotificacao) (*model.Notificacao, error) {
	if n.Prioridade == "" {
		n.Prioridade = model.PrioridadeMedia
	}
	uid := n.Destinatario.UsuarioID
	notif := &model.Notificacao{
		UsuarioID:    uid,
		Tipo:         n.Tipo,
		Titulo:       n.Titulo,
		Mensagem:     n.Mensagem,
		Prioridade:   n.Prioridade,
		OcorrenciaID: n.OcorrenciaID,
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("create notificacao: %w", err)
	}

	if payload, err := json.Marshal(notif); err == nil {
		if err := s.rdb.Publish(ctx, config.CacheKey.UserNotificationChannel(uid), payload).Err(); err != nil {
			s.log.Warn().Err(err).Int("usuario_id", uid).Msg("Failed to publish notificacao")
		}
	}
	s.invalidateUnread(ctx, uid)

	if n.Prioridade.Urgent() && n.Destinatario.Email != "" {
		pref := s.preferencia(ctx, uid)
		if pref.ReceberNotificacoesUrgentes {
			s.enqueueEmail(ctx, n.Destinatario.Email, notif)
		}
	}
	return notif, nil
}

func (s *NotificacaoService) enqueueEmail(ctx context.Context, to string, n *model.Notificacao) {
	body := n.Mensagem + "\n\n"
	if n.OcorrenciaID != nil {
		body += fmt.Sprintf("Acesse: %s/ocorrencias/%d\n", s.baseURL, *n.OcorrenciaID)
	} else {
		body += "Acesse o sistema: " + s.baseURL + "\n"
	}
	err := s.queue.EnqueueEmail(ctx, notify.Email{
		To:      []string{to},
		Subject: n.Titulo,
		Text:    body,
	})
	if err != nil {
		s.log.Error().Err(err).Int("notificacao_id", n.ID).Msg("Failed to queue notificacao email")
	}
}

func (s *NotificacaoService) invalidateUnread(ctx context.Context, usuarioID int) {
	if err := s.rdb.Del(ctx, config.CacheKey.UnreadCountKey(usuarioID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("usuario_id", usuarioID).Msg("Failed to invalidate unread count")
	}
}

// preferencia falls back to the defaults when the user never saved preferences
// or they cannot be read.
func (s *NotificacaoService) preferencia(ctx context.Context, usuarioID int) model.PreferenciaNotificacao {
	p, err := s.repo.GetPreferencia(ctx, usuarioID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Int("usuario_id", usuarioID).Msg("Failed to load preferencias")
		}
		return model.DefaultPreferencia(usuarioID)
	}
	return *p
}

// List retrieves a page of the user's notifications.
func (s *NotificacaoService) List(ctx context.Context, usuarioID int, soNaoLidas bool, page, perPage int) ([]model.Notificacao, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, usuarioID, soNaoLidas, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Notificacao{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

// Recentes returns the last five notifications.
func (s *NotificacaoService) Recentes(ctx context.Context, usuarioID int) ([]model.Notificacao, error) {
	items, err := s.repo.ListRecent(ctx, usuarioID, 5)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notificacao{}
	}
	return items, nil
}

// MarcarLida marks one of the user's notifications as read.
func (s *NotificacaoService) MarcarLida(ctx context.Context, usuarioID, id int) error {
	if err := s.repo.MarkRead(ctx, usuarioID, id); err != nil {
		return err
	}
	s.invalidateUnread(ctx, usuarioID)
	return nil
}

// MarcarTodasLidas marks every unread notification as read and returns how many changed.
func (s *NotificacaoService) MarcarTodasLidas(ctx context.Context, usuarioID int) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, usuarioID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnread(ctx, usuarioID)
	return n, nil
}

// ContarNaoLidas returns the unread count, served from Redis when cached.
func (s *NotificacaoService) ContarNaoLidas(ctx context.Context, usuarioID int) (int, error) {
	key := config.CacheKey.UnreadCountKey(usuarioID)
	if n, err := s.rdb.Get(ctx, key).Int(); err == nil {
		return n, nil
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Failed to read unread count cache")
	}

	n, err := s.repo.CountUnread(ctx, usuarioID)
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, key, n, unreadCountTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache unread count")
	}
	return n, nil
}

// GetPreferencias returns the user's email preferences.
func (s *NotificacaoService) GetPreferencias(ctx context.Context, usuarioID int) (*model.PreferenciaNotificacao, error) {
	p, err := s.repo.GetPreferencia(ctx, usuarioID)
	if errors.Is(err, repository.ErrNotFound) {
		d := model.DefaultPreferencia(usuarioID)
		return &d, nil
	}
	return p, err
}

// UpdatePreferencias applies the fields present in req.
func (s *NotificacaoService) UpdatePreferencias(ctx context.Context, usuarioID int, req model.PreferenciaRequest) (*model.PreferenciaNotificacao, error) {
	p, err := s.GetPreferencias(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	p.ReceberEmailNovasOcorrencias = model.BoolOr(req.ReceberEmailNovasOcorrencias, p.ReceberEmailNovasOcorrencias)
	p.ReceberEmailAtualizacoes = model.BoolOr(req.ReceberEmailAtualizacoes, p.ReceberEmailAtualizacoes)
	p.ReceberEmailPrazos = model.BoolOr(req.ReceberEmailPrazos, p.ReceberEmailPrazos)
	p.ReceberNotificacoesUrgentes = model.BoolOr(req.ReceberNotificacoesUrgentes, p.ReceberNotificacoesUrgentes)
	if err := s.repo.UpsertPreferencia(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Subscribe opens the realtime channel of a user. The caller must close it.
func (s *NotificacaoService) Subscribe(ctx context.Context, usuarioID int) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.UserNotificationChannel(usuarioID))
}
