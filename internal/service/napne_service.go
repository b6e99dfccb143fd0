package service

import (
	"context"
	"errors"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// ErrCatalogoDesconhecido is returned for a NAPNE catalog name outside the known set.
var ErrCatalogoDesconhecido = errors.New("unknown napne catalog")

// NapneService handles the NAPNE records, attendances and catalogs.
type NapneService struct {
	repo *repository.NapneRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewNapneService creates a new NapneService.
func NewNapneService(repo *repository.NapneRepository, log zerolog.Logger) *NapneService {
	return &NapneService{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "napne_service").Logger(),
	}
}

// ─── Catalogs ──────────────────────────────────────────────────────────

func (s *NapneService) ListCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, soAtivos bool) ([]model.CatalogoNAPNE, error) {
	if _, ok := kind.Table(); !ok {
		return nil, ErrCatalogoDesconhecido
	}
	items, err := s.repo.ListCatalogo(ctx, kind, soAtivos)
	if items == nil && err == nil {
		items = []model.CatalogoNAPNE{}
	}
	return items, err
}

func (s *NapneService) CreateCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, req model.CatalogoNAPNERequest) (*model.CatalogoNAPNE, error) {
	if _, ok := kind.Table(); !ok {
		return nil, ErrCatalogoDesconhecido
	}
	c := catalogoNAPNEFromRequest(kind, &model.CatalogoNAPNE{}, req)
	if err := s.repo.CreateCatalogo(ctx, kind, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *NapneService) UpdateCatalogo(ctx context.Context, kind model.CatalogoNAPNEKind, id int, req model.CatalogoNAPNERequest) (*model.CatalogoNAPNE, error) {
	if _, ok := kind.Table(); !ok {
		return nil, ErrCatalogoDesconhecido
	}
	c := catalogoNAPNEFromRequest(kind, &model.CatalogoNAPNE{ID: id}, req)
	if err := s.repo.UpdateCatalogo(ctx, kind, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Only referral sectors carry a sigla and only statuses carry a color.
func catalogoNAPNEFromRequest(kind model.CatalogoNAPNEKind, c *model.CatalogoNAPNE, req model.CatalogoNAPNERequest) *model.CatalogoNAPNE {
	c.Nome = req.Nome
	c.Ativo = model.BoolOr(req.Ativo, true)
	if kind == model.CatalogoSetor {
		c.Sigla = req.Sigla
	}
	if kind == model.CatalogoStatus {
		c.Cor = corOrDefault(req.Cor)
	}
	return c
}

// ─── Fichas ────────────────────────────────────────────────────────────

func (s *NapneService) ListFichas(ctx context.Context, busca string, page, perPage int) ([]model.FichaNAPNE, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListFichas(ctx, busca, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.FichaNAPNE{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *NapneService) GetFicha(ctx context.Context, id int) (*model.FichaNAPNE, error) {
	return s.repo.GetFicha(ctx, id)
}

func (s *NapneService) GetFichaByEstudante(ctx context.Context, estudanteID int) (*model.FichaNAPNE, error) {
	return s.repo.GetFichaByEstudante(ctx, estudanteID)
}

// CreateFicha opens the NAPNE record of a student. A student has at most one.
func (s *NapneService) CreateFicha(ctx context.Context, req model.FichaNAPNERequest) (*model.FichaNAPNE, error) {
	f := fichaFromRequest(&model.FichaNAPNE{EstudanteID: req.EstudanteID}, req)
	if err := s.repo.CreateFicha(ctx, f); err != nil {
		return nil, err
	}
	s.log.Info().Int("ficha_id", f.ID).Int("estudante_id", f.EstudanteID).Msg("Ficha NAPNE created")
	return f, nil
}

// UpdateFicha changes the record; the laudo notes are kept as they are.
func (s *NapneService) UpdateFicha(ctx context.Context, id int, req model.FichaNAPNERequest) (*model.FichaNAPNE, error) {
	f, err := s.repo.GetFicha(ctx, id)
	if err != nil {
		return nil, err
	}
	fichaFromRequest(f, req)
	if err := s.repo.UpdateFicha(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// AdicionarObservacaoLaudo archives the current laudo note and stores the new one.
func (s *NapneService) AdicionarObservacaoLaudo(ctx context.Context, id int, observacao string) (*model.FichaNAPNE, error) {
	f, err := s.repo.GetFicha(ctx, id)
	if err != nil {
		return nil, err
	}
	f.AdicionarObservacaoLaudo(observacao, s.now())
	if err := s.repo.UpdateFicha(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func fichaFromRequest(f *model.FichaNAPNE, req model.FichaNAPNERequest) *model.FichaNAPNE {
	f.TurmaID = req.TurmaID
	f.NecessidadeEspecifica = req.NecessidadeEspecifica
	f.Telefone = req.Telefone
	f.AtendidoPorID = req.AtendidoPorID
	f.LaudoApresentado = req.LaudoApresentado
	f.EmailsEnviados = req.EmailsEnviados
	f.DesempenhoBimestre1 = req.DesempenhoBimestre1
	f.DesempenhoBimestre2 = req.DesempenhoBimestre2
	f.DesempenhoBimestre3 = req.DesempenhoBimestre3
	f.DesempenhoBimestre4 = req.DesempenhoBimestre4
	f.ResultadoFinal = req.ResultadoFinal
	return f
}

// ─── Atendimentos ──────────────────────────────────────────────────────

func (s *NapneService) ListAtendimentos(ctx context.Context, estudanteID *int, page, perPage int) ([]model.AtendimentoNAPNE, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListAtendimentos(ctx, estudanteID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.AtendimentoNAPNE{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *NapneService) GetAtendimento(ctx context.Context, id int) (*model.AtendimentoNAPNE, error) {
	a, err := s.repo.GetAtendimento(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Encaminhamentos == nil {
		a.Encaminhamentos = []model.ObservacaoEncaminhamento{}
	}
	return a, nil
}

// CreateAtendimento records an attendance. The acting servidor is used
// when no attendant is given.
func (s *NapneService) CreateAtendimento(ctx context.Context, actor Actor, req model.AtendimentoNAPNERequest) (*model.AtendimentoNAPNE, error) {
	a := &model.AtendimentoNAPNE{}
	if err := atendimentoNAPNEFromRequest(a, req); err != nil {
		return nil, err
	}
	if a.AtendidoPorID == nil {
		a.AtendidoPorID = actor.ServidorID
	}
	if err := s.repo.CreateAtendimento(ctx, a); err != nil {
		return nil, err
	}
	a.Encaminhamentos = []model.ObservacaoEncaminhamento{}
	return a, nil
}

func (s *NapneService) UpdateAtendimento(ctx context.Context, id int, req model.AtendimentoNAPNERequest) (*model.AtendimentoNAPNE, error) {
	a, err := s.repo.GetAtendimento(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := atendimentoNAPNEFromRequest(a, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAtendimento(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *NapneService) DeleteAtendimento(ctx context.Context, id int) error {
	return s.repo.DeleteAtendimento(ctx, id)
}

// Encaminhar refers the attendance to a sector.
func (s *NapneService) Encaminhar(ctx context.Context, atendimentoID int, req model.EncaminhamentoRequest) (*model.ObservacaoEncaminhamento, error) {
	if _, err := s.repo.GetAtendimento(ctx, atendimentoID); err != nil {
		return nil, err
	}
	o := &model.ObservacaoEncaminhamento{AtendimentoID: atendimentoID, SetorID: req.SetorID, Observacao: req.Observacao}
	if err := s.repo.CreateEncaminhamento(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func atendimentoNAPNEFromRequest(a *model.AtendimentoNAPNE, req model.AtendimentoNAPNERequest) error {
	data, err := model.ParseDate(req.Data)
	if err != nil {
		return err
	}
	a.EstudanteID = req.EstudanteID
	a.TurmaID = req.TurmaID
	a.Origem = req.Origem
	a.Data = data
	if req.AtendidoPorID != nil {
		a.AtendidoPorID = req.AtendidoPorID
	}
	a.TipoID = req.TipoID
	a.LaudoPrevio = req.LaudoPrevio
	a.NecessidadeIDs = uniqueInts(req.NecessidadeIDs)
	a.Detalhamento = req.Detalhamento
	a.Acoes = req.Acoes
	a.Resumo = req.Resumo
	a.PublicarFichaAluno = req.PublicarFichaAluno
	a.StatusID = req.StatusID
	return nil
}
