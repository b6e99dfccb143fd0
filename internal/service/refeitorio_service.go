package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Check-in rejections, in the order they are checked.
var (
	ErrCheckinCodigoVazio    = errors.New("empty check-in code")
	ErrCheckinNaoCadastrado  = errors.New("code not registered")
	ErrCheckinBloqueado      = errors.New("access blocked")
	ErrCheckinForaDoHorario  = errors.New("no meal being served")
	ErrCheckinJaRealizado    = errors.New("meal already taken")
	ErrBloqueioPessoaInvalid = errors.New("exactly one of estudante_id or servidor_id is required")
	ErrJanelaInvertida       = errors.New("meal window ends before it starts")
)

// CheckinError describes a rejected check-in for the kiosk screen.
type CheckinError struct {
	Err      error
	Mensagem string
	Detalhes string
	Nome     string
}

func (e *CheckinError) Error() string { return e.Err.Error() + ": " + e.Detalhes }

func (e *CheckinError) Unwrap() error { return e.Err }

// CheckinResult is shown on the kiosk after a successful check-in.
type CheckinResult struct {
	Registro     *model.RegistroRefeicao `json:"registro"`
	Nome         string                  `json:"nome"`
	FotoURL      string                  `json:"foto_url,omitempty"`
	TipoRefeicao model.TipoRefeicao      `json:"tipo_refeicao"`
	Horario      string                  `json:"horario"`
}

type refeitorioStore interface {
	ListConfigs(ctx context.Context, soAtivas bool) ([]model.ConfigRefeitorio, error)
	ListBloqueiosPessoa(ctx context.Context, p model.Pessoa) ([]model.BloqueioAcesso, error)
	UltimoRegistro(ctx context.Context, p model.Pessoa, tipo model.TipoRefeicao, desde time.Time) (*model.RegistroRefeicao, error)
	CreateRegistro(ctx context.Context, reg *model.RegistroRefeicao) error
}

type estudanteByMatricula interface {
	GetByMatricula(ctx context.Context, matricula string) (*model.Estudante, error)
}

type servidorBySiape interface {
	GetBySiape(ctx context.Context, siape string) (*model.Servidor, error)
}

// feedPublisher pushes a served meal to the live feed.
type feedPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Checkin validates kiosk codes and records served meals.
type Checkin struct {
	store      refeitorioStore
	estudantes estudanteByMatricula
	servidores servidorBySiape
	feed       feedPublisher
	now        func() time.Time
	log        zerolog.Logger
}

// Registrar resolves codigo to a student (matrícula) or servidor (SIAPE) and
// records the meal being served now. Every rejection is a *CheckinError.
func (c *Checkin) Registrar(ctx context.Context, codigo, ip string) (*CheckinResult, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, &CheckinError{Err: ErrCheckinCodigoVazio, Mensagem: "Código inválido", Detalhes: "Aproxime novamente o cartão do leitor"}
	}

	p, err := c.pessoa(ctx, codigo)
	if err != nil {
		return nil, err
	}

	agora := c.now()
	hoje := model.NewDate(agora)
	bloqueios, err := c.store.ListBloqueiosPessoa(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("list bloqueios: %w", err)
	}
	for _, b := range bloqueios {
		if b.VigenteEm(hoje) {
			return nil, &CheckinError{Err: ErrCheckinBloqueado, Mensagem: "ACESSO BLOQUEADO", Detalhes: b.Motivo, Nome: p.Nome}
		}
	}

	configs, err := c.store.ListConfigs(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	hhmm := agora.Format("15:04")
	var atual *model.ConfigRefeitorio
	for i := range configs {
		if configs[i].Ativo && configs[i].Contains(hhmm) {
			atual = &configs[i]
			break
		}
	}
	if atual == nil {
		return nil, &CheckinError{Err: ErrCheckinForaDoHorario, Mensagem: "Fora do horário", Detalhes: "Não há refeição disponível neste momento", Nome: p.Nome}
	}

	desde := agora.Add(-time.Duration(atual.IntervaloMinimoHoras) * time.Hour)
	_, err = c.store.UltimoRegistro(ctx, *p, atual.Nome, desde)
	switch {
	case err == nil:
		return nil, &CheckinError{Err: ErrCheckinJaRealizado, Mensagem: "Já realizou esta refeição", Detalhes: string(atual.Nome) + " já registrado", Nome: p.Nome}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("check ultimo registro: %w", err)
	}

	reg := &model.RegistroRefeicao{
		EstudanteID:       p.EstudanteID,
		ServidorID:        p.ServidorID,
		Nome:              p.Nome,
		TipoRefeicao:      atual.Nome,
		DataHora:          agora,
		CodigoBarrasUsado: codigo,
		IPAcesso:          ip,
	}
	if err := c.store.CreateRegistro(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registro: %w", err)
	}

	if c.feed != nil {
		if payload, err := json.Marshal(reg); err == nil {
			if err := c.feed.Publish(ctx, config.CacheKey.RefeitorioFeedChannel(), payload).Err(); err != nil {
				c.log.Warn().Err(err).Msg("Failed to publish check-in")
			}
		}
	}

	return &CheckinResult{Registro: reg, Nome: p.Nome, FotoURL: p.FotoURL, TipoRefeicao: atual.Nome, Horario: hhmm}, nil
}

func (c *Checkin) pessoa(ctx context.Context, codigo string) (*model.Pessoa, error) {
	e, err := c.estudantes.GetByMatricula(ctx, codigo)
	if err == nil {
		id := e.ID
		return &model.Pessoa{EstudanteID: &id, Nome: e.Nome, Codigo: codigo, FotoURL: e.FotoProxyURL()}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup estudante: %w", err)
	}

	s, err := c.servidores.GetBySiape(ctx, codigo)
	if err == nil {
		id := s.ID
		return &model.Pessoa{ServidorID: &id, Nome: s.Nome, Codigo: codigo}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup servidor: %w", err)
	}
	return nil, &CheckinError{Err: ErrCheckinNaoCadastrado, Mensagem: "Não cadastrado", Detalhes: fmt.Sprintf("Matrícula/SIAPE %s não encontrada", codigo)}
}

// ─── Service ───────────────────────────────────────────────────────────

// RefeitorioService runs the cafeteria kiosk and its management screens.
type RefeitorioService struct {
	*Checkin
	repo *repository.RefeitorioRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewRefeitorioService creates a new RefeitorioService.
func NewRefeitorioService(
	repo *repository.RefeitorioRepository,
	estudantes *repository.EstudanteRepository,
	servidores *repository.ServidorRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *RefeitorioService {
	l := log.With().Str("component", "refeitorio_service").Logger()
	c := &Checkin{
		store:      repo,
		estudantes: estudantes,
		servidores: servidores,
		now:        time.Now,
		log:        l,
	}
	if rdb != nil {
		c.feed = rdb
	}
	return &RefeitorioService{Checkin: c, repo: repo, rdb: rdb, log: l}
}

// Subscribe opens the live check-in feed. The caller must close it.
func (s *RefeitorioService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.RefeitorioFeedChannel())
}

func (s *RefeitorioService) Dashboard(ctx context.Context) (*model.DashboardRefeitorio, error) {
	d, err := s.repo.Dashboard(ctx, model.Today())
	if err != nil {
		return nil, err
	}
	if d.PorRefeicao == nil {
		d.PorRefeicao = []model.ContagemLabel{}
	}
	if d.Ultimos == nil {
		d.Ultimos = []model.RegistroRefeicao{}
	}
	return d, nil
}

// Registros lists the meals served between inicio and fim, both inclusive.
func (s *RefeitorioService) Registros(ctx context.Context, inicio, fim model.Date, page, perPage int) ([]model.RegistroRefeicao, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListRegistros(ctx, inicio.Time(), fim.AddDays(1).Time(), perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.RegistroRefeicao{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *RefeitorioService) Relatorio(ctx context.Context, inicio, fim model.Date) (*model.RelatorioRefeitorio, error) {
	if fim.Before(inicio) {
		inicio, fim = fim, inicio
	}
	rel, err := s.repo.Relatorio(ctx, inicio, fim)
	if err != nil {
		return nil, err
	}
	if rel.PorDia == nil {
		rel.PorDia = []model.ContagemLabel{}
	}
	if rel.PorRefeicao == nil {
		rel.PorRefeicao = []model.ContagemLabel{}
	}
	return rel, nil
}

// RelatorioXLSX exports the period's records, one per row.
func (s *RefeitorioService) RelatorioXLSX(ctx context.Context, inicio, fim model.Date) ([]byte, error) {
	if fim.Before(inicio) {
		inicio, fim = fim, inicio
	}
	items, _, err := s.repo.ListRegistros(ctx, inicio.Time(), fim.AddDays(1).Time(), 0, 0)
	if err != nil {
		return nil, err
	}
	p := &planilha{
		sheet:  "Refeições",
		header: []string{"Data", "Hora", "Refeição", "Nome", "Tipo", "Código", "IP"},
	}
	for _, r := range items {
		tipo := "Estudante"
		if r.ServidorID != nil {
			tipo = "Servidor"
		}
		p.add(r.DataHora.Format("02/01/2006"), r.DataHora.Format("15:04"), string(r.TipoRefeicao), r.Nome, tipo, r.CodigoBarrasUsado, r.IPAcesso)
	}
	return p.bytes()
}

// ─── Meal windows ──────────────────────────────────────────────────────

func (s *RefeitorioService) ListConfigs(ctx context.Context) ([]model.ConfigRefeitorio, error) {
	items, err := s.repo.ListConfigs(ctx, false)
	if items == nil && err == nil {
		items = []model.ConfigRefeitorio{}
	}
	return items, err
}

func (s *RefeitorioService) CreateConfig(ctx context.Context, req model.ConfigRefeitorioRequest) (*model.ConfigRefeitorio, error) {
	c, err := configFromRequest(&model.ConfigRefeitorio{}, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateConfig(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RefeitorioService) UpdateConfig(ctx context.Context, id int, req model.ConfigRefeitorioRequest) (*model.ConfigRefeitorio, error) {
	c, err := configFromRequest(&model.ConfigRefeitorio{ID: id}, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateConfig(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RefeitorioService) DeleteConfig(ctx context.Context, id int) error {
	return s.repo.DeleteConfig(ctx, id)
}

// SeedConfigs inserts the default meal windows that are missing.
func (s *RefeitorioService) SeedConfigs(ctx context.Context) (int, error) {
	n := 0
	for _, d := range model.DefaultRefeicoes {
		c := d
		created, err := s.repo.EnsureConfig(ctx, &c)
		if err != nil {
			return n, err
		}
		if created {
			n++
		}
	}
	return n, nil
}

func configFromRequest(c *model.ConfigRefeitorio, req model.ConfigRefeitorioRequest) (*model.ConfigRefeitorio, error) {
	inicio, err := model.ParseHorario(req.HorarioInicio)
	if err != nil {
		return nil, err
	}
	fim, err := model.ParseHorario(req.HorarioFim)
	if err != nil {
		return nil, err
	}
	// HH:MM strings order the same way as the times they name.
	if fim < inicio {
		return nil, fmt.Errorf("%w: %s-%s", ErrJanelaInvertida, inicio, fim)
	}

	c.Nome = req.Nome
	c.HorarioInicio = inicio
	c.HorarioFim = fim
	c.Ativo = model.BoolOr(req.Ativo, true)
	c.IntervaloMinimoHoras = req.IntervaloMinimoHoras
	if c.IntervaloMinimoHoras == 0 {
		c.IntervaloMinimoHoras = 3
	}
	return c, nil
}

// ─── Bloqueios ─────────────────────────────────────────────────────────

func (s *RefeitorioService) ListBloqueios(ctx context.Context, soAtivos bool) ([]model.BloqueioAcesso, error) {
	items, err := s.repo.ListBloqueios(ctx, soAtivos)
	if items == nil && err == nil {
		items = []model.BloqueioAcesso{}
	}
	return items, err
}

func (s *RefeitorioService) GetBloqueio(ctx context.Context, id int) (*model.BloqueioAcesso, error) {
	return s.repo.GetBloqueio(ctx, id)
}

func (s *RefeitorioService) CreateBloqueio(ctx context.Context, actor Actor, req model.BloqueioRequest) (*model.BloqueioAcesso, error) {
	b := &model.BloqueioAcesso{CriadoPorID: actor.ServidorID}
	if err := bloqueioFromRequest(b, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateBloqueio(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info().Int("bloqueio_id", b.ID).Msg("Bloqueio created")
	return b, nil
}

func (s *RefeitorioService) UpdateBloqueio(ctx context.Context, id int, req model.BloqueioRequest) (*model.BloqueioAcesso, error) {
	b, err := s.repo.GetBloqueio(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bloqueioFromRequest(b, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBloqueio(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *RefeitorioService) DeactivateBloqueio(ctx context.Context, id int) error {
	return s.repo.DeactivateBloqueio(ctx, id)
}

func bloqueioFromRequest(b *model.BloqueioAcesso, req model.BloqueioRequest) error {
	if (req.EstudanteID == nil) == (req.ServidorID == nil) {
		return ErrBloqueioPessoaInvalid
	}
	inicio, err := model.ParseDate(req.DataInicio)
	if err != nil {
		return err
	}
	b.DataFim = nil
	if req.DataFim != "" {
		fim, err := model.ParseDate(req.DataFim)
		if err != nil {
			return err
		}
		if fim.Before(inicio) {
			return ErrPeriodoInvalido
		}
		b.DataFim = &fim
	}
	b.EstudanteID = req.EstudanteID
	b.ServidorID = req.ServidorID
	b.Motivo = req.Motivo
	b.DataInicio = inicio
	b.Ativo = model.BoolOr(req.Ativo, true)
	return nil
}
