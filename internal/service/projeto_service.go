package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

var (
	ErrLimiteHorasExcedido     = errors.New("weekly hours limit exceeded for the semester")
	ErrCoordenadorParticipante = errors.New("project coordinator cannot be a participant")
	ErrProjetoSemRelatorio     = errors.New("project has no report schedule")
	ErrParticipacaoPeriodo     = errors.New("participation ends before it starts")
)

// DiasAvisoRelatorio is how many days ahead a report reminder is sent.
const DiasAvisoRelatorio = 7

// ─── Report check ──────────────────────────────────────────────────────

type relatorioStore interface {
	ListAtivosComRelatorio(ctx context.Context) ([]model.Projeto, error)
	EnsureAlerta(ctx context.Context, a *model.AlertaRelatorio) (bool, error)
}

// VerificadorRelatorios raises the daily report alerts and mails the coordinators.
type VerificadorRelatorios struct {
	store relatorioStore
	queue notify.Enqueuer
	log   zerolog.Logger
}

func NewVerificadorRelatorios(store relatorioStore, queue notify.Enqueuer, log zerolog.Logger) *VerificadorRelatorios {
	return &VerificadorRelatorios{
		store: store,
		queue: queue,
		log:   log.With().Str("component", "verificador_relatorios").Logger(),
	}
}

// Verificar creates at most one alert per project, type and day. Projects past
// their report date get a VENCIDO alert, those due within DiasAvisoRelatorio
// get a PROXIMO one. Only new alerts produce an email.
func (v *VerificadorRelatorios) Verificar(ctx context.Context, hoje model.Date) (*model.ResultadoVerificacao, error) {
	projetos, err := v.store.ListAtivosComRelatorio(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projetos: %w", err)
	}

	res := &model.ResultadoVerificacao{}
	limite := hoje.AddDays(DiasAvisoRelatorio)
	for i := range projetos {
		p := &projetos[i]
		if p.ProximoRelatorio == nil {
			continue
		}

		var tipo model.TipoAlertaRelatorio
		switch {
		case p.ProximoRelatorio.Before(hoje):
			tipo = model.AlertaRelatorioVencido
		case !p.ProximoRelatorio.After(limite):
			tipo = model.AlertaRelatorioProximo
		default:
			continue
		}

		alerta := &model.AlertaRelatorio{ProjetoID: p.ID, Tipo: tipo, DataAlerta: hoje}
		created, err := v.store.EnsureAlerta(ctx, alerta)
		if err != nil {
			v.log.Error().Err(err).Int("projeto_id", p.ID).Msg("Failed to create report alert")
			continue
		}
		if !created {
			continue
		}
		res.AlertasCriados++

		if p.CoordenadorEmail == "" {
			continue
		}
		if err := v.queue.EnqueueEmail(ctx, emailRelatorio(p, tipo)); err != nil {
			v.log.Error().Err(err).Int("projeto_id", p.ID).Msg("Failed to enqueue report email")
			continue
		}
		res.EmailsEnviados++
	}

	v.log.Info().
		Int("projetos", len(projetos)).
		Int("alertas", res.AlertasCriados).
		Int("emails", res.EmailsEnviados).
		Msg("Report check finished")
	return res, nil
}

func emailRelatorio(p *model.Projeto, tipo model.TipoAlertaRelatorio) notify.Email {
	data := p.ProximoRelatorio.BR()
	if tipo == model.AlertaRelatorioVencido {
		return notify.Email{
			To:      []string{p.CoordenadorEmail},
			Subject: fmt.Sprintf("⚠️ Relatório VENCIDO - %s", p.Titulo),
			Text: fmt.Sprintf(
				"Prezado(a) %s,\n\nO relatório do projeto \"%s\" (Processo: %s) está VENCIDO desde %s.\n\n"+
					"Por favor, providencie a entrega do relatório o quanto antes.\n",
				p.CoordenadorNome, p.Titulo, p.NumeroProcesso, data),
		}
	}
	return notify.Email{
		To:      []string{p.CoordenadorEmail},
		Subject: fmt.Sprintf("📅 Lembrete: Relatório próximo - %s", p.Titulo),
		Text: fmt.Sprintf(
			"Prezado(a) %s,\n\nO relatório do projeto \"%s\" (Processo: %s) deve ser entregue até %s.\n",
			p.CoordenadorNome, p.Titulo, p.NumeroProcesso, data),
	}
}

// ─── Service ───────────────────────────────────────────────────────────

// ProjetoService handles research and extension projects.
type ProjetoService struct {
	repo        *repository.ProjetoRepository
	verificador *VerificadorRelatorios
	now         func() time.Time
	log         zerolog.Logger
}

// NewProjetoService creates a new ProjetoService.
func NewProjetoService(repo *repository.ProjetoRepository, queue notify.Enqueuer, log zerolog.Logger) *ProjetoService {
	return &ProjetoService{
		repo:        repo,
		verificador: NewVerificadorRelatorios(repo, queue, log),
		now:         time.Now,
		log:         log.With().Str("component", "projeto_service").Logger(),
	}
}

// VerificarRelatorios runs the report check for today.
func (s *ProjetoService) VerificarRelatorios(ctx context.Context) (*model.ResultadoVerificacao, error) {
	return s.verificador.Verificar(ctx, model.NewDate(s.now()))
}

// PodeEditar is true for project managers and the project's coordinator.
func PodeEditar(actor Actor, p *model.Projeto) bool {
	return actor.Has(model.PermissionProjetosManage) || actor.IsServidor(p.CoordenadorID)
}

func (s *ProjetoService) podeVisualizar(ctx context.Context, actor Actor, p *model.Projeto) (bool, error) {
	if PodeEditar(actor, p) {
		return true, nil
	}
	if actor.ServidorID == nil {
		return false, nil
	}
	return s.repo.IsParticipante(ctx, p.ID, *actor.ServidorID)
}

// List shows every project to managers; other servidores see the projects
// they coordinate or take part in.
func (s *ProjetoService) List(ctx context.Context, actor Actor, pf model.ProjetoFilter, page, perPage int) ([]model.ProjetoView, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	if !actor.Has(model.PermissionProjetosManage) {
		servidorID, err := actor.Servidor()
		if err != nil {
			return []model.ProjetoView{}, response.NewPagination(page, perPage, 0), nil
		}
		pf.ParticipanteID = &servidorID
	}
	items, total, err := s.repo.ListPaginated(ctx, pf, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	hoje := model.NewDate(s.now())
	views := make([]model.ProjetoView, 0, len(items))
	for i := range items {
		views = append(views, model.ProjetoView{Projeto: &items[i], RelatorioAtrasado: items[i].RelatorioAtrasado(hoje)})
	}
	return views, response.NewPagination(page, perPage, total), nil
}

func (s *ProjetoService) Get(ctx context.Context, actor Actor, id int) (*model.ProjetoView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.podeVisualizar(ctx, actor, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAllowed
	}
	return &model.ProjetoView{Projeto: p, RelatorioAtrasado: p.RelatorioAtrasado(model.NewDate(s.now()))}, nil
}

func (s *ProjetoService) Create(ctx context.Context, actor Actor, req model.ProjetoRequest) (*model.Projeto, error) {
	if !actor.Has(model.PermissionProjetosWrite) && !actor.Has(model.PermissionProjetosManage) {
		return nil, ErrNotAllowed
	}
	p := &model.Projeto{}
	if err := projetoFromRequest(p, req); err != nil {
		return nil, err
	}
	p.CalcularProximoRelatorio()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Int("projeto_id", p.ID).Str("numero_processo", p.NumeroProcesso).Msg("Projeto created")
	return p, nil
}

func (s *ProjetoService) Update(ctx context.Context, actor Actor, id int, req model.ProjetoRequest) (*model.Projeto, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := projetoFromRequest(p, req); err != nil {
		return nil, err
	}
	participa, err := s.repo.IsParticipante(ctx, p.ID, p.CoordenadorID)
	if err != nil {
		return nil, err
	}
	if participa {
		return nil, ErrCoordenadorParticipante
	}
	p.CalcularProximoRelatorio()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjetoService) Delete(ctx context.Context, actor Actor, id int) error {
	if !actor.Has(model.PermissionProjetosManage) {
		return ErrNotAllowed
	}
	return s.repo.Delete(ctx, id)
}

// RegistrarRelatorio records a report delivered today and moves the next
// report date forward by the project's periodicity.
func (s *ProjetoService) RegistrarRelatorio(ctx context.Context, actor Actor, id int) (*model.Projeto, error) {
	p, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.PeriodicidadeRelatorio <= 0 {
		return nil, ErrProjetoSemRelatorio
	}
	p.RegistrarRelatorio(model.NewDate(s.now()))
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Int("projeto_id", p.ID).Str("proximo", p.ProximoRelatorio.String()).Msg("Relatório registered")
	return p, nil
}

func (s *ProjetoService) editable(ctx context.Context, actor Actor, id int) (*model.Projeto, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !PodeEditar(actor, p) {
		return nil, ErrNotAllowed
	}
	return p, nil
}

func projetoFromRequest(p *model.Projeto, req model.ProjetoRequest) error {
	inicio, err := model.ParseDate(req.DataInicio)
	if err != nil {
		return err
	}
	final, err := model.ParseDate(req.DataFinal)
	if err != nil {
		return err
	}
	if final.Before(inicio) {
		return ErrPeriodoInvalido
	}
	p.NumeroProcesso = req.NumeroProcesso
	p.Titulo = req.Titulo
	p.Tipo = req.Tipo
	p.DataInicio = inicio
	p.DataFinal = final
	p.Tema = req.Tema
	p.Area = req.Area
	p.CoordenadorID = req.CoordenadorID
	p.EnvolveEstudantes = req.EnvolveEstudantes
	p.Situacao = req.Situacao
	if p.Situacao == "" {
		p.Situacao = model.ProjetoAtivo
	}
	p.PeriodicidadeRelatorio = req.PeriodicidadeRelatorio
	if p.PeriodicidadeRelatorio == 0 {
		p.PeriodicidadeRelatorio = 6
	}
	return nil
}

// ─── Participações ─────────────────────────────────────────────────────

func (s *ProjetoService) ListServidores(ctx context.Context, actor Actor, projetoID int) ([]model.ParticipacaoServidor, error) {
	if _, err := s.Get(ctx, actor, projetoID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListServidores(ctx, projetoID)
	if items == nil && err == nil {
		items = []model.ParticipacaoServidor{}
	}
	return items, err
}

// AdicionarServidor adds or updates a servidor's weekly hours. The servidor's
// total across projects in the semester may not exceed MaxHorasSemanais.
func (s *ProjetoService) AdicionarServidor(ctx context.Context, actor Actor, projetoID int, req model.ParticipacaoServidorRequest) (*model.ParticipacaoServidor, error) {
	p, err := s.editable(ctx, actor, projetoID)
	if err != nil {
		return nil, err
	}
	if req.ServidorID == p.CoordenadorID {
		return nil, ErrCoordenadorParticipante
	}
	ps := &model.ParticipacaoServidor{
		ProjetoID:     projetoID,
		ServidorID:    req.ServidorID,
		Semestre:      req.Semestre,
		HorasSemanais: req.HorasSemanais,
	}
	if ps.Semestre == "" {
		ps.Semestre = model.SemestreAtual(s.now())
	}
	excedeu, err := s.repo.SaveServidor(ctx, ps, model.MaxHorasSemanais)
	if err != nil {
		return nil, err
	}
	if excedeu {
		return nil, ErrLimiteHorasExcedido
	}
	return ps, nil
}

func (s *ProjetoService) RemoverServidor(ctx context.Context, actor Actor, projetoID, participacaoID int) error {
	if _, err := s.editable(ctx, actor, projetoID); err != nil {
		return err
	}
	return s.repo.DeleteServidor(ctx, projetoID, participacaoID)
}

func (s *ProjetoService) ListEstudantes(ctx context.Context, actor Actor, projetoID int) ([]model.ParticipacaoEstudante, error) {
	if _, err := s.Get(ctx, actor, projetoID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListEstudantes(ctx, projetoID)
	if items == nil && err == nil {
		items = []model.ParticipacaoEstudante{}
	}
	return items, err
}

func (s *ProjetoService) AdicionarEstudante(ctx context.Context, actor Actor, projetoID int, req model.ParticipacaoEstudanteRequest) (*model.ParticipacaoEstudante, error) {
	if _, err := s.editable(ctx, actor, projetoID); err != nil {
		return nil, err
	}
	inicio, err := model.ParseDate(req.DataInicio)
	if err != nil {
		return nil, err
	}
	pe := &model.ParticipacaoEstudante{
		ProjetoID:   projetoID,
		EstudanteID: req.EstudanteID,
		Bolsista:    req.Bolsista,
		DataInicio:  inicio,
		Ativo:       model.BoolOr(req.Ativo, true),
	}
	if req.Bolsista {
		pe.ValorBolsa = req.ValorBolsa
	}
	if req.DataFim != "" {
		fim, err := model.ParseDate(req.DataFim)
		if err != nil {
			return nil, err
		}
		if fim.Before(inicio) {
			return nil, ErrParticipacaoPeriodo
		}
		pe.DataFim = &fim
	}
	if err := s.repo.SaveEstudante(ctx, pe); err != nil {
		return nil, err
	}
	return pe, nil
}

func (s *ProjetoService) RemoverEstudante(ctx context.Context, actor Actor, projetoID, participacaoID int) error {
	if _, err := s.editable(ctx, actor, projetoID); err != nil {
		return err
	}
	return s.repo.DeleteEstudante(ctx, projetoID, participacaoID)
}

// ─── Alertas ───────────────────────────────────────────────────────────

// ListAlertas returns every alert to managers and the own projects' alerts
// to coordinators.
func (s *ProjetoService) ListAlertas(ctx context.Context, actor Actor, soNaoVisualizados bool) ([]model.AlertaRelatorio, error) {
	var coordenador *int
	if !actor.Has(model.PermissionProjetosManage) {
		id, err := actor.Servidor()
		if err != nil {
			return nil, err
		}
		coordenador = &id
	}
	items, err := s.repo.ListAlertas(ctx, coordenador, soNaoVisualizados)
	if items == nil && err == nil {
		items = []model.AlertaRelatorio{}
	}
	return items, err
}

func (s *ProjetoService) MarcarAlertaVisualizado(ctx context.Context, id int) error {
	return s.repo.MarcarAlertaVisualizado(ctx, id)
}

// ─── Reports ───────────────────────────────────────────────────────────

func (s *ProjetoService) HorasPorServidor(ctx context.Context, semestre string) ([]model.HorasServidor, error) {
	items, err := s.repo.HorasPorServidor(ctx, semestre)
	if items == nil && err == nil {
		items = []model.HorasServidor{}
	}
	return items, err
}

// HorasPorServidorXLSX exports the hours report as a spreadsheet.
func (s *ProjetoService) HorasPorServidorXLSX(ctx context.Context, semestre string) ([]byte, error) {
	items, err := s.repo.HorasPorServidor(ctx, semestre)
	if err != nil {
		return nil, err
	}
	p := planilha{sheet: "Horas", header: []string{"Servidor", "SIAPE", "Semestre", "Projetos", "Horas semanais", "Excede limite"}}
	for _, h := range items {
		excede := "Não"
		if h.TotalHoras > model.MaxHorasSemanais {
			excede = "Sim"
		}
		p.add(h.Nome, h.Siape, h.Semestre, h.Projetos, h.TotalHoras, excede)
	}
	return p.bytes()
}

func (s *ProjetoService) Estatisticas(ctx context.Context) (*model.EstatisticasProjetos, error) {
	e, err := s.repo.Estatisticas(ctx, model.NewDate(s.now()))
	if err != nil {
		return nil, err
	}
	if e.PorSituacao == nil {
		e.PorSituacao = []model.ContagemLabel{}
	}
	if e.PorTipo == nil {
		e.PorTipo = []model.ContagemLabel{}
	}
	if e.PorArea == nil {
		e.PorArea = []model.ContagemLabel{}
	}
	return e, nil
}

// RelatoriosPendentes lists active projects whose report is overdue or due
// within DiasAvisoRelatorio days.
func (s *ProjetoService) RelatoriosPendentes(ctx context.Context) ([]model.ProjetoView, error) {
	hoje := model.NewDate(s.now())
	items, err := s.repo.ListRelatoriosPendentes(ctx, hoje.AddDays(DiasAvisoRelatorio))
	if err != nil {
		return nil, err
	}
	views := make([]model.ProjetoView, 0, len(items))
	for i := range items {
		views = append(views, model.ProjetoView{Projeto: &items[i], RelatorioAtrasado: items[i].RelatorioAtrasado(hoje)})
	}
	return views, nil
}
