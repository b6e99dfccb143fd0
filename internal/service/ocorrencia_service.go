package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// Ocorrência errors.
var (
	ErrOcorrenciaClosed    = errors.New("ocorrencia is closed")
	ErrComissaoExists      = errors.New("ocorrencia already has a comissao")
	ErrPresidenteNaoMembro = errors.New("presidente must be a member of the comissao")
	ErrRecursoDecidido     = errors.New("recurso already decided")
)

// OcorrenciaService runs the disciplinary process.
type OcorrenciaService struct {
	repo         *repository.OcorrenciaRepository
	estudantes   *repository.EstudanteRepository
	servidores   *repository.ServidorRepository
	catalogo     *repository.CatalogoRepository
	notificacoes Notificador
	queue        notify.Enqueuer
	aviso        *avisador
	prazoDias    int
	log          zerolog.Logger
}

// NewOcorrenciaService creates a new OcorrenciaService.
func NewOcorrenciaService(
	cfg *config.Config,
	repo *repository.OcorrenciaRepository,
	estudantes *repository.EstudanteRepository,
	responsaveis *repository.ResponsavelRepository,
	servidores *repository.ServidorRepository,
	catalogo *repository.CatalogoRepository,
	notificacoes Notificador,
	queue notify.Enqueuer,
	log zerolog.Logger,
) *OcorrenciaService {
	l := log.With().Str("component", "ocorrencia_service").Logger()
	return &OcorrenciaService{
		repo:         repo,
		estudantes:   estudantes,
		servidores:   servidores,
		catalogo:     catalogo,
		notificacoes: notificacoes,
		queue:        queue,
		aviso:        &avisador{estudantes: estudantes, responsaveis: responsaveis, queue: queue, log: l},
		prazoDias:    cfg.PrazoDefesaDias,
		log:          l,
	}
}

// ─── Queries ───────────────────────────────────────────────────────────

// List retrieves a page of occurrences.
func (s *OcorrenciaService) List(ctx context.Context, of model.OcorrenciaFilter, page, perPage int) ([]model.Ocorrencia, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, of, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Ocorrencia{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *OcorrenciaService) Get(ctx context.Context, id int) (*model.Ocorrencia, error) {
	return s.repo.GetByID(ctx, id)
}

// Detalhe returns the occurrence with every process record attached.
func (s *OcorrenciaService) Detalhe(ctx context.Context, id int) (*model.OcorrenciaDetalhe, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.OcorrenciaDetalhe{
		Ocorrencia:       o,
		StatusLabel:      o.Status.Label(),
		AcoesDisponiveis: model.AvailableActions(o.Status),
	}

	if d.Estudantes, err = s.estudantes.ListByIDs(ctx, o.EstudanteIDs); err != nil {
		return nil, err
	}
	if d.Comissao, err = s.repo.GetComissao(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if d.Notificacoes, err = s.repo.ListNotificacoesOficiais(ctx, id); err != nil {
		return nil, err
	}
	if d.Recursos, err = s.repo.ListRecursos(ctx, id); err != nil {
		return nil, err
	}
	if d.Documentos, err = s.repo.ListDocumentos(ctx, id, false); err != nil {
		return nil, err
	}
	if d.Historico, err = s.repo.ListHistorico(ctx, id); err != nil {
		return nil, err
	}

	if d.Estudantes == nil {
		d.Estudantes = []model.Estudante{}
	}
	if d.Notificacoes == nil {
		d.Notificacoes = []model.NotificacaoOficial{}
	}
	if d.Recursos == nil {
		d.Recursos = []model.Recurso{}
	}
	if d.Documentos == nil {
		d.Documentos = []model.DocumentoGerado{}
	}
	if d.Historico == nil {
		d.Historico = []model.OcorrenciaHistorico{}
	}
	return d, nil
}

func (s *OcorrenciaService) Historico(ctx context.Context, id int) ([]model.OcorrenciaHistorico, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHistorico(ctx, id)
}

// ─── Registration ──────────────────────────────────────────────────────

// Create registers an occurrence, notifies the committee and warns the guardians.
func (s *OcorrenciaService) Create(ctx context.Context, actor Actor, req model.OcorrenciaRequest) (*model.Ocorrencia, error) {
	servidorID, err := actor.Servidor()
	if err != nil {
		return nil, err
	}
	o, err := ocorrenciaFromRequest(req)
	if err != nil {
		return nil, err
	}
	o.Status = model.StatusRegistrada
	o.ResponsavelRegistroID = servidorID

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info().Int("ocorrencia_id", o.ID).Int("servidor_id", servidorID).Msg("Ocorrencia registered")

	if full, err := s.repo.GetByID(ctx, o.ID); err == nil {
		o = full
	}

	s.notificarNova(ctx, o)
	s.aviso.avisar(ctx, o.EstudanteIDs, avisoOcorrencia(o))
	return o, nil
}

// notificarNova tells the committee about a new occurrence. Serious
// infractions are sent with high priority.
func (s *OcorrenciaService) notificarNova(ctx context.Context, o *model.Ocorrencia) {
	dest, err := s.servidores.ListDestinatariosComissao(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("ocorrencia_id", o.ID).Msg("Failed to load comissao")
		return
	}
	prioridade := model.PrioridadeMedia
	if o.Gravidade.Serious() {
		prioridade = model.PrioridadeAlta
	}
	msg := fmt.Sprintf("Ocorrência #%d registrada em %s: %s", o.ID, o.Data.BR(), resumo(o.Descricao, 200))
	for _, d := range dest {
		s.notificar(ctx, d, NovaNotificacao{
			Tipo:         model.NotificacaoNovaOcorrencia,
			Titulo:       "Nova ocorrência registrada",
			Mensagem:     msg,
			Prioridade:   prioridade,
			OcorrenciaID: &o.ID,
		})
	}
}

// Update edits the registration fields. Only the registrar or the committee
// may edit, and never after the process is closed.
func (s *OcorrenciaService) Update(ctx context.Context, actor Actor, id int, req model.OcorrenciaRequest) (*model.Ocorrencia, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !podeEditarOcorrencia(actor, current) {
		return nil, ErrNotAllowed
	}
	if current.Status.Closed() {
		return nil, ErrOcorrenciaClosed
	}

	o, err := ocorrenciaFromRequest(req)
	if err != nil {
		return nil, err
	}
	o.ID = id
	if o.Evidencias == "" {
		o.Evidencias = current.Evidencias
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// AnexarEvidencia stores the path of an uploaded evidence file.
func (s *OcorrenciaService) AnexarEvidencia(ctx context.Context, actor Actor, id int, path string) (*model.Ocorrencia, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !podeEditarOcorrencia(actor, o) {
		return nil, ErrNotAllowed
	}
	if o.Status.Closed() {
		return nil, ErrOcorrenciaClosed
	}
	if err := s.repo.UpdateEvidencias(ctx, id, path); err != nil {
		return nil, err
	}
	o.Evidencias = path
	return o, nil
}

func podeEditarOcorrencia(actor Actor, o *model.Ocorrencia) bool {
	return actor.Superuser || actor.Comissao || actor.IsServidor(o.ResponsavelRegistroID)
}

// ─── Flow ──────────────────────────────────────────────────────────────

// Acao applies a plain flow action.
func (s *OcorrenciaService) Acao(ctx context.Context, actor Actor, id int, acao model.FlowAction, observacao string) (*model.Ocorrencia, error) {
	return s.transicionar(ctx, actor, id, acao, observacao, nil)
}

// Notificar sends an official notice and moves the process to ESTUDANTE_NOTIFICADO.
func (s *OcorrenciaService) Notificar(ctx context.Context, actor Actor, id int, req model.NotificarRequest) (*model.Ocorrencia, error) {
	dest := make([]string, 0, len(req.Destinatarios))
	for _, e := range req.Destinatarios {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" && !slices.Contains(dest, e) {
			dest = append(dest, e)
		}
	}
	n := &model.NotificacaoOficial{
		OcorrenciaID:  id,
		Destinatarios: strings.Join(dest, ","),
		Tipo:          req.Tipo,
		MeioEnvio:     req.MeioEnvio,
		Texto:         strings.TrimSpace(req.Texto),
	}
	o, err := s.transicionar(ctx, actor, id, model.ActionNotificarEstudante, "Notificação oficial enviada", func(o *model.Ocorrencia, t *repository.Transicao) error {
		t.Notificacao = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	body := n.Texto
	if o.PrazoDefesa != nil {
		body += fmt.Sprintf("\n\nPrazo para apresentação de defesa: %s.", o.PrazoDefesa.BR())
	}
	err = s.queue.EnqueueEmail(ctx, notify.Email{
		To:      dest,
		Subject: fmt.Sprintf("%s - Ocorrência #%d", tipoNotificacaoLabel(n.Tipo), o.ID),
		Text:    body,
	})
	if err != nil {
		s.log.Error().Err(err).Int("ocorrencia_id", o.ID).Msg("Failed to queue notificacao oficial")
	}
	return o, nil
}

// RegistrarDefesa stores the defence text and moves the process to DEFESA_APRESENTADA.
func (s *OcorrenciaService) RegistrarDefesa(ctx context.Context, actor Actor, id int, req model.DefesaRequest) (*model.Ocorrencia, error) {
	return s.transicionar(ctx, actor, id, model.ActionRegistrarDefesa, "Defesa registrada", func(o *model.Ocorrencia, _ *repository.Transicao) error {
		o.DefesaTexto = strings.TrimSpace(req.DefesaTexto)
		return nil
	})
}

// AplicarSancao sets the sanction and moves the process to SANCAO_APLICADA.
func (s *OcorrenciaService) AplicarSancao(ctx context.Context, actor Actor, id int, req model.SancaoAplicarRequest) (*model.Ocorrencia, error) {
	sancao, err := s.catalogo.GetSancao(ctx, req.SancaoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrInvalidRef
		}
		return nil, err
	}
	return s.transicionar(ctx, actor, id, model.ActionAplicarSancao, "Sanção aplicada: "+string(sancao.Tipo), func(o *model.Ocorrencia, _ *repository.Transicao) error {
		o.SancaoID = &sancao.ID
		o.SancaoDetalhes = strings.TrimSpace(req.SancaoDetalhes)
		return nil
	})
}

// DesignarComissao creates the committee and moves the process to COMISSAO_DESIGNADA.
func (s *OcorrenciaService) DesignarComissao(ctx context.Context, actor Actor, id int, req model.ComissaoRequest) (*model.Ocorrencia, error) {
	membros := uniqueInts(req.MembroIDs)
	if req.PresidenteID != nil && !slices.Contains(membros, *req.PresidenteID) {
		return nil, ErrPresidenteNaoMembro
	}
	instauracao := model.Today()
	if req.DataInstauracao != "" {
		d, err := model.ParseDate(req.DataInstauracao)
		if err != nil {
			return nil, err
		}
		instauracao = d
	}

	return s.transicionar(ctx, actor, id, model.ActionDesignarComissao, "Comissão designada", func(o *model.Ocorrencia, t *repository.Transicao) error {
		if _, err := s.repo.GetComissao(ctx, o.ID); err == nil {
			return ErrComissaoExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		t.Comissao = &model.Comissao{
			OcorrenciaID:    o.ID,
			MembroIDs:       membros,
			PresidenteID:    req.PresidenteID,
			DataInstauracao: instauracao,
		}
		return nil
	})
}

// ConcluirComissao records the committee's final opinion.
func (s *OcorrenciaService) ConcluirComissao(ctx context.Context, actor Actor, id int, parecer string) error {
	if !actor.Has(model.PermissionOcorrenciasFlow) {
		return ErrNotAllowed
	}
	return s.repo.ConcluirComissao(ctx, id, strings.TrimSpace(parecer), model.Today())
}

// AbrirRecurso files an appeal and moves the process to EM_RECURSO.
func (s *OcorrenciaService) AbrirRecurso(ctx context.Context, actor Actor, id int, req model.RecursoRequest) (*model.Ocorrencia, error) {
	return s.transicionar(ctx, actor, id, model.ActionAbrirRecurso, "Recurso interposto", func(o *model.Ocorrencia, t *repository.Transicao) error {
		t.Recurso = &model.Recurso{OcorrenciaID: o.ID, Argumentacao: strings.TrimSpace(req.Argumentacao)}
		return nil
	})
}

// DecidirRecurso records the decision of a pending appeal.
func (s *OcorrenciaService) DecidirRecurso(ctx context.Context, actor Actor, id, recursoID int, req model.DecidirRecursoRequest) (*model.Recurso, error) {
	if !actor.Has(model.PermissionOcorrenciasFlow) {
		return nil, ErrNotAllowed
	}
	recursos, err := s.repo.ListRecursos(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(recursos, func(r model.Recurso) bool { return r.ID == recursoID })
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	if recursos[idx].Resultado != model.RecursoPendente {
		return nil, ErrRecursoDecidido
	}

	hoje := model.Today()
	parecer := strings.TrimSpace(req.Parecer)
	if err := s.repo.DecidirRecurso(ctx, id, recursoID, parecer, req.Resultado, hoje); err != nil {
		return nil, err
	}
	r := recursos[idx]
	r.Parecer = parecer
	r.Resultado = req.Resultado
	r.DataDecisao = &hoje
	return &r, nil
}

// ConfirmarRecebimento stamps the receipt of an official notice.
func (s *OcorrenciaService) ConfirmarRecebimento(ctx context.Context, id, notificacaoID int) error {
	return s.repo.ConfirmarRecebimento(ctx, id, notificacaoID)
}

// transicionar loads the occurrence, lets prepare fill the fields and records
// the action needs, applies the action and persists everything atomically.
func (s *OcorrenciaService) transicionar(
	ctx context.Context,
	actor Actor,
	id int,
	acao model.FlowAction,
	observacao string,
	prepare func(o *model.Ocorrencia, t *repository.Transicao) error,
) (*model.Ocorrencia, error) {
	if !actor.Has(model.PermissionOcorrenciasFlow) {
		return nil, ErrNotAllowed
	}
	servidorID, err := actor.Servidor()
	if err != nil {
		return nil, err
	}
	if !acao.Valid() {
		return nil, model.ErrUnknownAction
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := model.NextStatus(o.Status, acao); !ok {
		return nil, fmt.Errorf("%w: %s from %s", model.ErrInvalidTransition, acao, o.Status)
	}

	t := repository.Transicao{
		Ocorrencia: o,
		Anterior:   o.Status,
		Acao:       acao,
		ServidorID: servidorID,
		Observacao: strings.TrimSpace(observacao),
	}
	if prepare != nil {
		if err := prepare(o, &t); err != nil {
			return nil, err
		}
	}
	if err := o.Apply(acao, model.Today(), s.prazoDias); err != nil {
		return nil, err
	}

	if _, err := s.repo.Transition(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().
		Int("ocorrencia_id", o.ID).
		Str("acao", string(acao)).
		Str("de", string(t.Anterior)).
		Str("para", string(o.Status)).
		Msg("Ocorrencia transitioned")

	s.notificarMudanca(ctx, o, t.Anterior, acao, servidorID)
	return o, nil
}

// notificarMudanca tells the registrar about every transition and the rest
// of the committee when the process enters analysis or judgement.
func (s *OcorrenciaService) notificarMudanca(ctx context.Context, o *model.Ocorrencia, anterior model.OcorrenciaStatus, acao model.FlowAction, autorID int) {
	tipo := model.NotificacaoAtualizacaoStatus
	prioridade := model.PrioridadeMedia
	switch acao {
	case model.ActionRegistrarDefesa:
		tipo = model.NotificacaoDefesa
	case model.ActionAplicarSancao:
		tipo = model.NotificacaoSancao
		prioridade = model.PrioridadeAlta
	}
	n := NovaNotificacao{
		Tipo:         tipo,
		Titulo:       fmt.Sprintf("Ocorrência #%d: %s", o.ID, o.Status.Label()),
		Mensagem:     fmt.Sprintf("O status da ocorrência #%d mudou de %s para %s.", o.ID, anterior.Label(), o.Status.Label()),
		Prioridade:   prioridade,
		OcorrenciaID: &o.ID,
	}

	notified := map[int]struct{}{}
	if reg, err := s.servidores.GetDestinatario(ctx, o.ResponsavelRegistroID); err == nil {
		s.notificar(ctx, *reg, n)
		notified[reg.UsuarioID] = struct{}{}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error().Err(err).Int("ocorrencia_id", o.ID).Msg("Failed to load registrar")
	}

	if o.Status != model.StatusEmAnalise && o.Status != model.StatusEmJulgamento {
		return
	}
	dest, err := s.servidores.ListDestinatariosComissao(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("ocorrencia_id", o.ID).Msg("Failed to load comissao")
		return
	}
	for _, d := range dest {
		if _, ok := notified[d.UsuarioID]; ok || d.ServidorID == autorID {
			continue
		}
		notified[d.UsuarioID] = struct{}{}
		s.notificar(ctx, d, n)
	}
}

func (s *OcorrenciaService) notificar(ctx context.Context, d model.Destinatario, n NovaNotificacao) {
	n.Destinatario = d
	if _, err := s.notificacoes.Criar(ctx, n); err != nil {
		s.log.Error().Err(err).Int("usuario_id", d.UsuarioID).Msg("Failed to create notificacao")
	}
}

// ─── Scheduled reminders ───────────────────────────────────────────────

// LembrarPrazos sends a PRAZO notice to the registrar and the committee for
// every open process whose defence deadline is hoje or the next day.
// It returns how many processes were reminded.
func (s *OcorrenciaService) LembrarPrazos(ctx context.Context, hoje model.Date) (int, error) {
	list, err := s.repo.ListPrazosEntre(ctx, hoje, hoje.AddDays(1))
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	comissao, err := s.servidores.ListDestinatariosComissao(ctx)
	if err != nil {
		return 0, err
	}

	for i := range list {
		o := &list[i]
		quando := "amanhã"
		if o.PrazoDefesa.Equal(hoje) {
			quando = "hoje"
		}
		n := NovaNotificacao{
			Tipo:         model.NotificacaoPrazo,
			Titulo:       fmt.Sprintf("Prazo de defesa: ocorrência #%d", o.ID),
			Mensagem:     fmt.Sprintf("O prazo de defesa da ocorrência #%d vence %s (%s).", o.ID, quando, o.PrazoDefesa.BR()),
			Prioridade:   model.PrioridadeAlta,
			OcorrenciaID: &o.ID,
		}
		notified := map[int]struct{}{}
		if reg, err := s.servidores.GetDestinatario(ctx, o.ResponsavelRegistroID); err == nil {
			s.notificar(ctx, *reg, n)
			notified[reg.UsuarioID] = struct{}{}
		}
		for _, d := range comissao {
			if _, ok := notified[d.UsuarioID]; ok {
				continue
			}
			notified[d.UsuarioID] = struct{}{}
			s.notificar(ctx, d, n)
		}
	}
	s.log.Info().Int("ocorrencias", len(list)).Msg("Prazo de defesa reminders sent")
	return len(list), nil
}

// ─── Helpers ───────────────────────────────────────────────────────────

func ocorrenciaFromRequest(req model.OcorrenciaRequest) (*model.Ocorrencia, error) {
	data, err := model.ParseDate(req.Data)
	if err != nil {
		return nil, err
	}
	horario, err := model.ParseHorario(req.Horario)
	if err != nil {
		return nil, err
	}
	return &model.Ocorrencia{
		Data:             data,
		Horario:          horario,
		CursoID:          req.CursoID,
		TurmaID:          req.TurmaID,
		EstudanteIDs:     uniqueInts(req.EstudanteIDs),
		Testemunhas:      strings.TrimSpace(req.Testemunhas),
		Descricao:        strings.TrimSpace(req.Descricao),
		InfracaoID:       req.InfracaoID,
		Evidencias:       strings.TrimSpace(req.Evidencias),
		MedidaPreventiva: strings.TrimSpace(req.MedidaPreventiva),
	}, nil
}

func avisoOcorrencia(o *model.Ocorrencia) Aviso {
	return Aviso{
		Assunto: "Registro de ocorrência disciplinar - IFB",
		Email: func(est *model.Estudante, r *model.Responsavel) string {
			return fmt.Sprintf("Prezado(a) %s,\n\nInformamos que foi registrada uma ocorrência disciplinar envolvendo o(a) estudante %s "+
				"em %s às %s.\n\nDescrição: %s\n\nA coordenação entrará em contato caso seja necessário.\n\n"+
				"Atenciosamente,\nInstituto Federal de Brasília",
				r.Nome, est.Nome, o.Data.BR(), o.Horario, o.Descricao)
		},
		SMS: func(est *model.Estudante) string {
			return fmt.Sprintf("IFB: ocorrência disciplinar registrada para %s em %s. Verifique seu e-mail.", est.Nome, o.Data.BR())
		},
	}
}

func tipoNotificacaoLabel(t model.TipoNotificacaoOficial) string {
	switch t {
	case model.NotificacaoTipoIntimacao:
		return "Intimação"
	case model.NotificacaoTipoComunicado:
		return "Comunicado"
	default:
		return "Notificação"
	}
}

// resumo truncates s to at most n runes.
func resumo(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
