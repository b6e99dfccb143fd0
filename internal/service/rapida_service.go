package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// ErrTipoRapidoInvalido is returned when a quick occurrence names an unknown type.
var ErrTipoRapidoInvalido = fmt.Errorf("%w: tipo de ocorrência rápida", repository.ErrInvalidRef)

// RapidaService registers quick occurrences and keeps the threshold alerts current.
type RapidaService struct {
	repo     *repository.OcorrenciaRapidaRepository
	catalogo *repository.CatalogoRepository
	alertas  *AlertaService
	aviso    *avisador
	log      zerolog.Logger
}

// NewRapidaService creates a new RapidaService.
func NewRapidaService(
	repo *repository.OcorrenciaRapidaRepository,
	catalogo *repository.CatalogoRepository,
	estudantes *repository.EstudanteRepository,
	responsaveis *repository.ResponsavelRepository,
	alertas *AlertaService,
	queue notify.Enqueuer,
	log zerolog.Logger,
) *RapidaService {
	l := log.With().Str("component", "rapida_service").Logger()
	return &RapidaService{
		repo:     repo,
		catalogo: catalogo,
		alertas:  alertas,
		aviso:    &avisador{estudantes: estudantes, responsaveis: responsaveis, queue: queue, log: l},
		log:      l,
	}
}

// List retrieves a page of quick occurrences.
func (s *RapidaService) List(ctx context.Context, rf model.OcorrenciaRapidaFilter, page, perPage int) ([]model.OcorrenciaRapida, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, rf, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.OcorrenciaRapida{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *RapidaService) Get(ctx context.Context, id int) (*model.OcorrenciaRapida, error) {
	return s.repo.GetByID(ctx, id)
}

// Dashboard returns the quick occurrence indicators relative to today.
func (s *RapidaService) Dashboard(ctx context.Context) (*model.DashboardRapidas, error) {
	return s.repo.Dashboard(ctx, model.Today())
}

// Create registers a quick occurrence by the acting servidor and warns the guardians.
func (s *RapidaService) Create(ctx context.Context, actor Actor, req model.OcorrenciaRapidaRequest) (*model.OcorrenciaRapida, error) {
	servidorID, err := actor.Servidor()
	if err != nil {
		return nil, err
	}
	x, err := rapidaFromRequest(req)
	if err != nil {
		return nil, err
	}
	x.ResponsavelRegistroID = servidorID

	tipos, err := s.prepare(ctx, x)
	if err != nil {
		return nil, err
	}
	if err := s.Registrar(ctx, x); err != nil {
		return nil, err
	}

	s.aviso.avisar(ctx, x.EstudanteIDs, avisoRapida(x, tipos))
	return x, nil
}

// Registrar persists an already validated quick occurrence and recomputes
// its alerts. Guardians are not warned.
func (s *RapidaService) Registrar(ctx context.Context, x *model.OcorrenciaRapida) error {
	if x.Descricao == "" {
		if _, err := s.prepare(ctx, x); err != nil {
			return err
		}
	}
	if err := s.repo.Create(ctx, x); err != nil {
		return err
	}
	s.log.Info().Int("rapida_id", x.ID).Ints("estudantes", x.EstudanteIDs).Msg("Ocorrencia rapida registered")
	s.recalcular(ctx, model.ChavesAfetadas(x))
	return nil
}

// Update changes a quick occurrence. Only its registrar or the committee may do it.
func (s *RapidaService) Update(ctx context.Context, actor Actor, id int, req model.OcorrenciaRapidaRequest) (*model.OcorrenciaRapida, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !podeAlterarRapida(actor, before) {
		return nil, ErrNotAllowed
	}

	x, err := rapidaFromRequest(req)
	if err != nil {
		return nil, err
	}
	x.ID = id
	x.ResponsavelRegistroID = before.ResponsavelRegistroID
	x.CreatedAt = before.CreatedAt
	if _, err := s.prepare(ctx, x); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, x); err != nil {
		return nil, err
	}

	s.recalcular(ctx, model.ChavesAfetadas(before, x))
	return s.repo.GetByID(ctx, id)
}

// Delete removes a quick occurrence. Only its registrar or the committee may do it.
func (s *RapidaService) Delete(ctx context.Context, actor Actor, id int) error {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !podeAlterarRapida(actor, before) {
		return ErrNotAllowed
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recalcular(ctx, model.ChavesAfetadas(before))
	return nil
}

// recalcular runs after the mutation is committed; a failure never undoes it.
func (s *RapidaService) recalcular(ctx context.Context, chaves []model.AlertaChave) {
	if s.alertas == nil {
		return
	}
	if err := s.alertas.Recalcular(ctx, chaves); err != nil {
		s.log.Warn().Err(err).Msg("Alert recompute finished with errors")
	}
}

// prepare validates the types and fills the default description.
func (s *RapidaService) prepare(ctx context.Context, x *model.OcorrenciaRapida) ([]model.TipoOcorrenciaRapida, error) {
	tipos, err := s.catalogo.GetTiposRapidosByIDs(ctx, x.TipoIDs)
	if err != nil {
		return nil, err
	}
	if len(tipos) != len(x.TipoIDs) {
		return nil, ErrTipoRapidoInvalido
	}
	if strings.TrimSpace(x.Descricao) == "" {
		x.Descricao = model.DescricaoPadrao(tipos)
	}
	return tipos, nil
}

func podeAlterarRapida(actor Actor, x *model.OcorrenciaRapida) bool {
	return actor.Superuser || actor.Comissao || actor.IsServidor(x.ResponsavelRegistroID)
}

func rapidaFromRequest(req model.OcorrenciaRapidaRequest) (*model.OcorrenciaRapida, error) {
	data, err := model.ParseDate(req.Data)
	if err != nil {
		return nil, err
	}
	horario, err := model.ParseHorario(req.Horario)
	if err != nil {
		return nil, err
	}
	return &model.OcorrenciaRapida{
		Data:         data,
		Horario:      horario,
		TurmaID:      req.TurmaID,
		EstudanteIDs: uniqueInts(req.EstudanteIDs),
		TipoIDs:      uniqueInts(req.TipoIDs),
		Descricao:    strings.TrimSpace(req.Descricao),
	}, nil
}

func avisoRapida(x *model.OcorrenciaRapida, tipos []model.TipoOcorrenciaRapida) Aviso {
	tipo := model.DescricaoPadrao(tipos)
	return Aviso{
		Assunto: "Registro de ocorrência - IFB",
		Email: func(est *model.Estudante, r *model.Responsavel) string {
			return fmt.Sprintf("Prezado(a) %s,\n\nInformamos que foi registrada uma ocorrência para o(a) estudante %s em %s às %s.\n\n"+
				"Tipo: %s\nDescrição: %s\n\nEm caso de dúvidas, procure a coordenação do campus.\n\nAtenciosamente,\nInstituto Federal de Brasília",
				r.Nome, est.Nome, x.Data.BR(), x.Horario, tipo, x.Descricao)
		},
		SMS: func(est *model.Estudante) string {
			return fmt.Sprintf("IFB: ocorrência registrada para %s em %s (%s).", est.Nome, x.Data.BR(), tipo)
		},
	}
}

// uniqueInts drops repeated ids keeping the first occurrence.
func uniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
