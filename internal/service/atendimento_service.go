package service

import (
	"context"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// AtendimentoService handles sector attendances and their catalogs.
type AtendimentoService struct {
	repo *repository.AtendimentoRepository
	log  zerolog.Logger
}

// NewAtendimentoService creates a new AtendimentoService.
func NewAtendimentoService(repo *repository.AtendimentoRepository, log zerolog.Logger) *AtendimentoService {
	return &AtendimentoService{
		repo: repo,
		log:  log.With().Str("component", "atendimento_service").Logger(),
	}
}

// ─── Catalogs ──────────────────────────────────────────────────────────

func (s *AtendimentoService) ListTipos(ctx context.Context, soAtivos bool) ([]model.TipoAtendimento, error) {
	items, err := s.repo.ListTipos(ctx, soAtivos)
	if items == nil && err == nil {
		items = []model.TipoAtendimento{}
	}
	return items, err
}

func (s *AtendimentoService) CreateTipo(ctx context.Context, req model.CatalogoRequest) (*model.TipoAtendimento, error) {
	t := &model.TipoAtendimento{Nome: req.Nome, Cor: corOrDefault(req.Cor), Ativo: model.BoolOr(req.Ativo, true)}
	if err := s.repo.CreateTipo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *AtendimentoService) UpdateTipo(ctx context.Context, id int, req model.CatalogoRequest) (*model.TipoAtendimento, error) {
	t := &model.TipoAtendimento{ID: id, Nome: req.Nome, Cor: corOrDefault(req.Cor), Ativo: model.BoolOr(req.Ativo, true)}
	if err := s.repo.UpdateTipo(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *AtendimentoService) ListSituacoes(ctx context.Context, soAtivos bool) ([]model.SituacaoAtendimento, error) {
	items, err := s.repo.ListSituacoes(ctx, soAtivos)
	if items == nil && err == nil {
		items = []model.SituacaoAtendimento{}
	}
	return items, err
}

func (s *AtendimentoService) CreateSituacao(ctx context.Context, req model.CatalogoRequest) (*model.SituacaoAtendimento, error) {
	x := &model.SituacaoAtendimento{Nome: req.Nome, Cor: corOrDefault(req.Cor), Ativo: model.BoolOr(req.Ativo, true)}
	if err := s.repo.CreateSituacao(ctx, x); err != nil {
		return nil, err
	}
	return x, nil
}

func (s *AtendimentoService) UpdateSituacao(ctx context.Context, id int, req model.CatalogoRequest) (*model.SituacaoAtendimento, error) {
	x := &model.SituacaoAtendimento{ID: id, Nome: req.Nome, Cor: corOrDefault(req.Cor), Ativo: model.BoolOr(req.Ativo, true)}
	if err := s.repo.UpdateSituacao(ctx, x); err != nil {
		return nil, err
	}
	return x, nil
}

func corOrDefault(cor string) string {
	if cor == "" {
		return model.DefaultCor
	}
	return cor
}

// ─── Atendimentos ──────────────────────────────────────────────────────

func (s *AtendimentoService) List(ctx context.Context, af model.AtendimentoFilter, page, perPage int) ([]model.Atendimento, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, af, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Atendimento{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *AtendimentoService) Get(ctx context.Context, id int) (*model.Atendimento, error) {
	return s.repo.GetByID(ctx, id)
}

// Create records an attendance with the acting servidor as responsible.
func (s *AtendimentoService) Create(ctx context.Context, actor Actor, req model.AtendimentoRequest) (*model.Atendimento, error) {
	if !actor.Has(model.PermissionAtendimentosWrite) {
		return nil, ErrNotAllowed
	}
	servidorID, err := actor.Servidor()
	if err != nil {
		return nil, err
	}
	a := &model.Atendimento{ServidorResponsavelID: servidorID}
	if err := atendimentoFromRequest(a, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Int("atendimento_id", a.ID).Str("coordenacao", string(a.Coordenacao)).Msg("Atendimento created")
	return a, nil
}

// Update is allowed to the responsible servidor and superusers.
func (s *AtendimentoService) Update(ctx context.Context, actor Actor, id int, req model.AtendimentoRequest) (*model.Atendimento, error) {
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := atendimentoFromRequest(a, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AtendimentoService) Delete(ctx context.Context, actor Actor, id int) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *AtendimentoService) editable(ctx context.Context, actor Actor, id int) (*model.Atendimento, error) {
	if !actor.Has(model.PermissionAtendimentosWrite) {
		return nil, ErrNotAllowed
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Superuser && !actor.IsServidor(a.ServidorResponsavelID) {
		return nil, ErrNotAllowed
	}
	return a, nil
}

func atendimentoFromRequest(a *model.Atendimento, req model.AtendimentoRequest) error {
	data, err := model.ParseDate(req.Data)
	if err != nil {
		return err
	}
	hora, err := model.ParseHorario(req.Hora)
	if err != nil {
		return err
	}
	a.Coordenacao = req.Coordenacao
	a.EstudanteIDs = uniqueInts(req.EstudanteIDs)
	a.Participantes = req.Participantes
	a.Data = data
	a.Hora = hora
	a.TipoID = req.TipoID
	a.SituacaoID = req.SituacaoID
	a.Origem = req.Origem
	a.Informacoes = req.Informacoes
	a.Observacoes = req.Observacoes
	a.Anexos = req.Anexos
	a.PublicarFichaAluno = req.PublicarFichaAluno
	return nil
}
