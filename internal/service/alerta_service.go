package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// alertaStore is the persistence the threshold recompute needs.
type alertaStore interface {
	GetConfiguracaoAtiva(ctx context.Context, tipoID int) (*model.ConfiguracaoLimite, error)
	GetAlerta(ctx context.Context, k model.AlertaChave) (*model.AlertaLimite, error)
	InsertAlerta(ctx context.Context, a *model.AlertaLimite) (bool, error)
	UpdateQuantidade(ctx context.Context, id, quantidade int) error
	DeleteAlerta(ctx context.Context, id int) error
	MarkCanais(ctx context.Context, id int, sistema, emailCoordenacao, emailResponsaveis bool) error
}

type rapidaCounter interface {
	Count(ctx context.Context, estudanteID, tipoID int, inicio, fim model.Date) (int, error)
}

type estudanteGetter interface {
	GetByID(ctx context.Context, id int) (*model.Estudante, error)
}

type tipoRapidoGetter interface {
	GetTiposRapidosByIDs(ctx context.Context, ids []int) ([]model.TipoOcorrenciaRapida, error)
}

type coordenacaoDestinatarios interface {
	ListDestinatariosByCoordenacoes(ctx context.Context, coords []model.Coordenacao) ([]model.Destinatario, error)
}

type responsavelLister interface {
	ListByEstudante(ctx context.Context, estudanteID int) ([]model.Responsavel, error)
}

// AlertaDeps wires the collaborators of AlertaService.
type AlertaDeps struct {
	Alertas      alertaStore
	Rapidas      rapidaCounter
	Estudantes   estudanteGetter
	Tipos        tipoRapidoGetter
	Servidores   coordenacaoDestinatarios
	Responsaveis responsavelLister
	Notificador  Notificador
	Queue        notify.Enqueuer
	BaseURL      string
}

// AlertaService keeps the monthly threshold alerts equal to the quick
// occurrence counts and fires the configured channels on new alerts.
type AlertaService struct {
	d   AlertaDeps
	log zerolog.Logger
}

// NewAlertaService creates a new AlertaService.
func NewAlertaService(d AlertaDeps, log zerolog.Logger) *AlertaService {
	return &AlertaService{d: d, log: log.With().Str("component", "alerta_service").Logger()}
}

// Recalcular recomputes every key. A failing key is logged and the others
// still run; the joined errors are returned.
func (s *AlertaService) Recalcular(ctx context.Context, chaves []model.AlertaChave) error {
	var errs []error
	for _, k := range chaves {
		if err := s.recalcular(ctx, k); err != nil {
			s.log.Error().Err(err).
				Int("estudante_id", k.EstudanteID).
				Int("tipo_id", k.TipoID).
				Str("mes", k.Mes.String()).
				Msg("Failed to recompute alerta")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *AlertaService) recalcular(ctx context.Context, k model.AlertaChave) error {
	k.Mes = k.Mes.MonthStart()

	cfg, err := s.d.Alertas.GetConfiguracaoAtiva(ctx, k.TipoID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load configuracao: %w", err)
	}

	count, err := s.d.Rapidas.Count(ctx, k.EstudanteID, k.TipoID, k.Mes, k.Mes.NextMonthStart())
	if err != nil {
		return fmt.Errorf("count rapidas: %w", err)
	}

	existing, err := s.d.Alertas.GetAlerta(ctx, k)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load alerta: %w", err)
	}

	if count < cfg.LimiteMensal {
		if existing == nil {
			return nil
		}
		if err := s.d.Alertas.DeleteAlerta(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete alerta: %w", err)
		}
		s.log.Info().Int("alerta_id", existing.ID).Int("quantidade", count).Msg("Alerta removed below limit")
		return nil
	}

	if existing != nil {
		return s.atualizar(ctx, existing.ID, existing.QuantidadeOcorrencias, count)
	}

	a := &model.AlertaLimite{
		EstudanteID:           k.EstudanteID,
		TipoOcorrenciaID:      k.TipoID,
		MesReferencia:         k.Mes,
		QuantidadeOcorrencias: count,
	}
	inserted, err := s.d.Alertas.InsertAlerta(ctx, a)
	if err != nil {
		return fmt.Errorf("insert alerta: %w", err)
	}
	if !inserted {
		// Another request created it first and owns the notification.
		current, err := s.d.Alertas.GetAlerta(ctx, k)
		if err != nil {
			return fmt.Errorf("reload alerta: %w", err)
		}
		return s.atualizar(ctx, current.ID, current.QuantidadeOcorrencias, count)
	}

	s.log.Info().Int("alerta_id", a.ID).Int("estudante_id", k.EstudanteID).Int("quantidade", count).Msg("Alerta created")
	s.disparar(ctx, cfg, a)
	return nil
}

func (s *AlertaService) atualizar(ctx context.Context, id, atual, count int) error {
	if atual == count {
		return nil
	}
	if err := s.d.Alertas.UpdateQuantidade(ctx, id, count); err != nil {
		return fmt.Errorf("update alerta: %w", err)
	}
	return nil
}

// disparar runs each enabled channel. Channel failures are logged only.
func (s *AlertaService) disparar(ctx context.Context, cfg *model.ConfiguracaoLimite, a *model.AlertaLimite) {
	if !cfg.GerarNotificacaoSistema && !cfg.GerarEmailCoordenacao && !cfg.GerarEmailResponsaveis {
		return
	}

	est, err := s.d.Estudantes.GetByID(ctx, a.EstudanteID)
	if err != nil {
		s.log.Error().Err(err).Int("alerta_id", a.ID).Msg("Failed to load estudante for alerta")
		return
	}
	tipo := model.TipoOcorrenciaRapida{ID: a.TipoOcorrenciaID}
	if tipos, err := s.d.Tipos.GetTiposRapidosByIDs(ctx, []int{a.TipoOcorrenciaID}); err == nil && len(tipos) > 0 {
		tipo = tipos[0]
	} else if err != nil {
		s.log.Warn().Err(err).Int("tipo_id", a.TipoOcorrenciaID).Msg("Failed to load tipo for alerta")
	}

	var destinatarios []model.Destinatario
	if (cfg.GerarNotificacaoSistema || cfg.GerarEmailCoordenacao) && len(cfg.CoordenacoesNotificar) > 0 {
		destinatarios, err = s.d.Servidores.ListDestinatariosByCoordenacoes(ctx, cfg.CoordenacoesNotificar)
		if err != nil {
			s.log.Error().Err(err).Int("alerta_id", a.ID).Msg("Failed to load coordenacao destinatarios")
		}
	}

	var sistema, emailCoord, emailResp bool
	if cfg.GerarNotificacaoSistema {
		sistema = s.canalSistema(ctx, cfg, a, est, tipo, destinatarios)
	}
	if cfg.GerarEmailCoordenacao {
		emailCoord = s.canalEmailCoordenacao(ctx, cfg, a, est, tipo, destinatarios)
	}
	if cfg.GerarEmailResponsaveis {
		emailResp = s.canalEmailResponsaveis(ctx, a, est, tipo)
	}

	if !sistema && !emailCoord && !emailResp {
		return
	}
	if err := s.d.Alertas.MarkCanais(ctx, a.ID, sistema, emailCoord, emailResp); err != nil {
		s.log.Error().Err(err).Int("alerta_id", a.ID).Msg("Failed to mark alerta channels")
	}
}

func (s *AlertaService) canalSistema(ctx context.Context, cfg *model.ConfiguracaoLimite, a *model.AlertaLimite, est *model.Estudante, tipo model.TipoOcorrenciaRapida, dest []model.Destinatario) bool {
	if len(dest) == 0 {
		s.log.Warn().Int("alerta_id", a.ID).Msg("No servidor in the configured coordenacoes")
		return false
	}
	msg := fmt.Sprintf("O estudante %s (%s) atingiu %d ocorrências do tipo '%s' no mês atual. Limite configurado: %d.",
		est.Nome, est.MatriculaSGA, a.QuantidadeOcorrencias, tipo.Codigo, cfg.LimiteMensal)
	if est.TurmaNome != "" {
		msg += " Turma: " + est.TurmaNome + "."
	}

	created := 0
	for _, d := range dest {
		_, err := s.d.Notificador.Criar(ctx, NovaNotificacao{
			Destinatario: model.Destinatario{UsuarioID: d.UsuarioID, ServidorID: d.ServidorID, Nome: d.Nome},
			Tipo:         model.NotificacaoAlerta,
			Titulo:       "Alerta: limite de ocorrências atingido",
			Mensagem:     msg,
			Prioridade:   model.PrioridadeAlta,
		})
		if err != nil {
			s.log.Error().Err(err).Int("usuario_id", d.UsuarioID).Msg("Failed to create alerta notificacao")
			continue
		}
		created++
	}
	return created > 0
}

func (s *AlertaService) canalEmailCoordenacao(ctx context.Context, cfg *model.ConfiguracaoLimite, a *model.AlertaLimite, est *model.Estudante, tipo model.TipoOcorrenciaRapida, dest []model.Destinatario) bool {
	emails := make([]string, 0, len(dest))
	for _, d := range dest {
		if d.Email != "" {
			emails = append(emails, d.Email)
		}
	}
	if len(emails) == 0 {
		s.log.Warn().Int("alerta_id", a.ID).Msg("No coordenacao email for alerta")
		return false
	}

	var b strings.Builder
	b.WriteString("Prezado(a) Servidor(a),\n\n")
	b.WriteString("Este é um alerta automático do Sistema de Ocorrências.\n\n")
	fmt.Fprintf(&b, "Estudante: %s\nMatrícula: %s\n", est.Nome, est.MatriculaSGA)
	if est.TurmaNome != "" {
		fmt.Fprintf(&b, "Turma: %s\n", est.TurmaNome)
	}
	fmt.Fprintf(&b, "\nTipo de ocorrência: %s - %s\nQuantidade no mês: %d\nLimite configurado: %d\n\n",
		tipo.Codigo, tipo.Descricao, a.QuantidadeOcorrencias, cfg.LimiteMensal)
	b.WriteString("Recomenda-se analisar o histórico do estudante, contatar os responsáveis e avaliar medidas pedagógicas preventivas.\n\n")
	fmt.Fprintf(&b, "Detalhes: %s/estudantes/%d\n", s.d.BaseURL, est.ID)

	err := s.d.Queue.EnqueueEmail(ctx, notify.Email{
		To:      emails,
		Subject: "Alerta: estudante atingiu o limite de ocorrências",
		Text:    b.String(),
	})
	if err != nil {
		s.log.Error().Err(err).Int("alerta_id", a.ID).Msg("Failed to queue coordenacao email")
		return false
	}
	return true
}

func (s *AlertaService) canalEmailResponsaveis(ctx context.Context, a *model.AlertaLimite, est *model.Estudante, tipo model.TipoOcorrenciaRapida) bool {
	resps, err := s.d.Responsaveis.ListByEstudante(ctx, est.ID)
	if err != nil {
		s.log.Error().Err(err).Int("alerta_id", a.ID).Msg("Failed to load responsaveis")
		return false
	}
	sent := false
	for _, r := range resps {
		if r.Email == "" {
			continue
		}
		body := fmt.Sprintf("Prezado(a) %s,\n\nInformamos que o(a) estudante %s registrou %d ocorrências do tipo \"%s\" neste mês.\n\n"+
			"Solicitamos sua atenção e, se possível, contato com a coordenação do campus.\n\nAtenciosamente,\nInstituto Federal de Brasília",
			r.Nome, est.Nome, a.QuantidadeOcorrencias, tipo.Descricao)
		err := s.d.Queue.EnqueueEmail(ctx, notify.Email{
			To:      []string{r.Email},
			Subject: "Aviso de ocorrências - " + est.Nome,
			Text:    body,
		})
		if err != nil {
			s.log.Error().Err(err).Int("responsavel_id", r.ID).Msg("Failed to queue responsavel email")
			continue
		}
		sent = true
	}
	return sent
}

// ─── Configuração de limites ───────────────────────────────────────────

// LimiteService maintains threshold configurations and lists alerts.
type LimiteService struct {
	repo *repository.AlertaRepository
}

// NewLimiteService creates a new LimiteService.
func NewLimiteService(repo *repository.AlertaRepository) *LimiteService {
	return &LimiteService{repo: repo}
}

func (s *LimiteService) ListConfiguracoes(ctx context.Context) ([]model.ConfiguracaoLimite, error) {
	return s.repo.ListConfiguracoes(ctx)
}

func (s *LimiteService) GetConfiguracao(ctx context.Context, id int) (*model.ConfiguracaoLimite, error) {
	return s.repo.GetConfiguracao(ctx, id)
}

func (s *LimiteService) CreateConfiguracao(ctx context.Context, req model.ConfiguracaoLimiteRequest) (*model.ConfiguracaoLimite, error) {
	c := configuracaoFromRequest(req)
	c.Ativo = model.BoolOr(req.Ativo, true)
	if err := s.repo.CreateConfiguracao(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LimiteService) UpdateConfiguracao(ctx context.Context, id int, req model.ConfiguracaoLimiteRequest) (*model.ConfiguracaoLimite, error) {
	current, err := s.repo.GetConfiguracao(ctx, id)
	if err != nil {
		return nil, err
	}
	c := configuracaoFromRequest(req)
	c.ID = id
	c.Ativo = model.BoolOr(req.Ativo, current.Ativo)
	if err := s.repo.UpdateConfiguracao(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LimiteService) DeactivateConfiguracao(ctx context.Context, id int) error {
	return s.repo.DeactivateConfiguracao(ctx, id)
}

// ListAlertas retrieves a page of alerts.
func (s *LimiteService) ListAlertas(ctx context.Context, af model.AlertaFilter, page, perPage int) ([]model.AlertaLimite, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, af, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.AlertaLimite{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func configuracaoFromRequest(req model.ConfiguracaoLimiteRequest) *model.ConfiguracaoLimite {
	coords := req.CoordenacoesNotificar
	if coords == nil {
		coords = []model.Coordenacao{}
	}
	return &model.ConfiguracaoLimite{
		TipoOcorrenciaID:        req.TipoOcorrenciaID,
		LimiteMensal:            req.LimiteMensal,
		CoordenacoesNotificar:   coords,
		GerarNotificacaoSistema: req.GerarNotificacaoSistema,
		GerarEmailCoordenacao:   req.GerarEmailCoordenacao,
		GerarEmailResponsaveis:  req.GerarEmailResponsaveis,
	}
}
