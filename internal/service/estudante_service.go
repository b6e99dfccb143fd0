package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// EstudanteService handles students, their guardians and the student reports.
type EstudanteService struct {
	repo         *repository.EstudanteRepository
	responsaveis *repository.ResponsavelRepository
	ocorrencias  *repository.OcorrenciaRepository
	rapidas      *repository.OcorrenciaRapidaRepository
	atendimentos *repository.AtendimentoRepository
	media        *MediaService
	log          zerolog.Logger
}

// NewEstudanteService creates a new EstudanteService.
func NewEstudanteService(
	repo *repository.EstudanteRepository,
	responsaveis *repository.ResponsavelRepository,
	ocorrencias *repository.OcorrenciaRepository,
	rapidas *repository.OcorrenciaRapidaRepository,
	atendimentos *repository.AtendimentoRepository,
	media *MediaService,
	log zerolog.Logger,
) *EstudanteService {
	return &EstudanteService{
		repo:         repo,
		responsaveis: responsaveis,
		ocorrencias:  ocorrencias,
		rapidas:      rapidas,
		atendimentos: atendimentos,
		media:        media,
		log:          log.With().Str("component", "estudante_service").Logger(),
	}
}

// ─── Estudantes ────────────────────────────────────────────────────────

// List retrieves a page of students with their derived fields.
func (s *EstudanteService) List(ctx context.Context, ef model.EstudanteFilter, page, perPage int) ([]model.EstudanteView, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.repo.ListPaginated(ctx, ef, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return views(items), response.NewPagination(page, perPage, total), nil
}

// Filtrar is the lightweight search used by pickers.
func (s *EstudanteService) Filtrar(ctx context.Context, ef model.EstudanteFilter) ([]model.EstudanteView, error) {
	items, err := s.repo.Search(ctx, ef, 50)
	if err != nil {
		return nil, err
	}
	return views(items), nil
}

func views(items []model.Estudante) []model.EstudanteView {
	out := make([]model.EstudanteView, 0, len(items))
	for i := range items {
		out = append(out, model.NewEstudanteView(&items[i]))
	}
	return out
}

func (s *EstudanteService) Get(ctx context.Context, id int) (*model.EstudanteView, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := model.NewEstudanteView(e)
	return &v, nil
}

func (s *EstudanteService) Create(ctx context.Context, req model.EstudanteRequest) (*model.EstudanteView, error) {
	e := estudanteFromRequest(&model.Estudante{}, req)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info().Int("estudante_id", e.ID).Str("matricula", e.MatriculaSGA).Msg("Estudante created")
	v := model.NewEstudanteView(e)
	return &v, nil
}

func (s *EstudanteService) Update(ctx context.Context, id int, req model.EstudanteRequest) (*model.EstudanteView, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	estudanteFromRequest(e, req)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	v := model.NewEstudanteView(e)
	return &v, nil
}

// Deactivate sets the student's situação to INATIVO.
func (s *EstudanteService) Deactivate(ctx context.Context, id int) error {
	return s.repo.Deactivate(ctx, id)
}

func estudanteFromRequest(e *model.Estudante, req model.EstudanteRequest) *model.Estudante {
	e.MatriculaSGA = req.MatriculaSGA
	e.Nome = req.Nome
	e.CPF = req.CPF
	e.DataNascimento = req.DataNascimento
	e.Email = req.Email
	e.Logradouro = req.Logradouro
	e.Bairro = req.Bairro
	e.Cidade = req.Cidade
	e.UF = req.UF
	e.CEP = req.CEP
	e.TurmaID = req.TurmaID
	e.CampusID = req.CampusID
	e.CursoID = req.CursoID
	e.DataIngresso = req.DataIngresso
	e.FotoURL = req.FotoURL
	e.Situacao = req.Situacao
	if e.Situacao == "" {
		e.Situacao = model.SituacaoAtivo
	}
	return e
}

// UploadFoto stores a square thumbnail of the uploaded photo and replaces
// the previous one.
func (s *EstudanteService) UploadFoto(ctx context.Context, id int, file multipart.File, header *multipart.FileHeader) (*model.EstudanteView, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := s.media.SaveFoto(file, header)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFoto(ctx, id, path); err != nil {
		s.media.Remove(path)
		return nil, err
	}
	s.media.Remove(e.Foto)
	e.Foto = path
	v := model.NewEstudanteView(e)
	return &v, nil
}

// ─── Reports ───────────────────────────────────────────────────────────

// Relatorio gathers every occurrence, quick occurrence and published attendance of a student.
func (s *EstudanteService) Relatorio(ctx context.Context, id int) (*model.RelatorioEstudante, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ocorrencias, err := s.ocorrencias.ListByEstudante(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list ocorrencias: %w", err)
	}
	rapidas, err := s.rapidas.ListByEstudante(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list rapidas: %w", err)
	}
	atendimentos, err := s.atendimentos.ListPublicadosByEstudante(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list atendimentos: %w", err)
	}

	rel := &model.RelatorioEstudante{
		Estudante:    model.NewEstudanteView(e),
		Ocorrencias:  ocorrencias,
		Rapidas:      rapidas,
		Atendimentos: atendimentos,
	}
	if rel.Ocorrencias == nil {
		rel.Ocorrencias = []model.Ocorrencia{}
	}
	if rel.Rapidas == nil {
		rel.Rapidas = []model.OcorrenciaRapida{}
	}
	if rel.Atendimentos == nil {
		rel.Atendimentos = []model.Atendimento{}
	}
	return rel, nil
}

// DashboardTurma lists the students of a class with their totals and alert level.
func (s *EstudanteService) DashboardTurma(ctx context.Context, turmaID int) ([]model.ResumoEstudanteTurma, error) {
	rows, err := s.repo.ResumoTurma(ctx, turmaID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ResumoEstudanteTurma{}
	}
	return rows, nil
}

// ─── Responsáveis ──────────────────────────────────────────────────────

func (s *EstudanteService) ListResponsaveis(ctx context.Context, busca string, page, perPage int) ([]model.Responsavel, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.responsaveis.ListPaginated(ctx, busca, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Responsavel{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

func (s *EstudanteService) ResponsaveisDoEstudante(ctx context.Context, estudanteID int) ([]model.Responsavel, error) {
	if _, err := s.repo.GetByID(ctx, estudanteID); err != nil {
		return nil, err
	}
	items, err := s.responsaveis.ListByEstudante(ctx, estudanteID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Responsavel{}
	}
	return items, nil
}

func (s *EstudanteService) GetResponsavel(ctx context.Context, id int) (*model.Responsavel, error) {
	return s.responsaveis.GetByID(ctx, id)
}

func (s *EstudanteService) CreateResponsavel(ctx context.Context, req model.ResponsavelRequest) (*model.Responsavel, error) {
	r := responsavelFromRequest(&model.Responsavel{}, req)
	if err := s.responsaveis.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *EstudanteService) UpdateResponsavel(ctx context.Context, id int, req model.ResponsavelRequest) (*model.Responsavel, error) {
	r, err := s.responsaveis.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	responsavelFromRequest(r, req)
	if err := s.responsaveis.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *EstudanteService) DeleteResponsavel(ctx context.Context, id int) error {
	return s.responsaveis.Delete(ctx, id)
}

func responsavelFromRequest(r *model.Responsavel, req model.ResponsavelRequest) *model.Responsavel {
	r.Nome = req.Nome
	r.Email = req.Email
	r.Celular = req.Celular
	r.Endereco = req.Endereco
	r.TipoVinculo = req.TipoVinculo
	r.PreferenciaContato = req.PreferenciaContato
	return r
}

// VincularResponsavel links a guardian to a student.
func (s *EstudanteService) VincularResponsavel(ctx context.Context, estudanteID, responsavelID int) error {
	if _, err := s.repo.GetByID(ctx, estudanteID); err != nil {
		return err
	}
	if _, err := s.responsaveis.GetByID(ctx, responsavelID); err != nil {
		return err
	}
	return s.responsaveis.Link(ctx, estudanteID, responsavelID)
}

func (s *EstudanteService) DesvincularResponsavel(ctx context.Context, estudanteID, responsavelID int) error {
	return s.responsaveis.Unlink(ctx, estudanteID, responsavelID)
}
