package service

import (
	"context"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/rs/zerolog"
)

// CadastroService maintains the core registry: campi, cursos, turmas,
// servidores and the disciplinary catalogs.
type CadastroService struct {
	campusRepo   *repository.CampusRepository
	servidorRepo *repository.ServidorRepository
	catalogoRepo *repository.CatalogoRepository
	log          zerolog.Logger
}

// NewCadastroService creates a new CadastroService.
func NewCadastroService(
	campusRepo *repository.CampusRepository,
	servidorRepo *repository.ServidorRepository,
	catalogoRepo *repository.CatalogoRepository,
	log zerolog.Logger,
) *CadastroService {
	return &CadastroService{
		campusRepo:   campusRepo,
		servidorRepo: servidorRepo,
		catalogoRepo: catalogoRepo,
		log:          log.With().Str("component", "cadastro_service").Logger(),
	}
}

// ─── Campus ────────────────────────────────────────────────────────────

func (s *CadastroService) ListCampi(ctx context.Context, soAtivos bool) ([]model.Campus, error) {
	return s.campusRepo.ListCampi(ctx, soAtivos)
}

func (s *CadastroService) GetCampus(ctx context.Context, id int) (*model.Campus, error) {
	return s.campusRepo.GetCampus(ctx, id)
}

func (s *CadastroService) CreateCampus(ctx context.Context, req model.CampusRequest) (*model.Campus, error) {
	c := &model.Campus{
		Nome:  strings.TrimSpace(req.Nome),
		Sigla: strings.ToUpper(strings.TrimSpace(req.Sigla)),
		Ativo: model.BoolOr(req.Ativo, true),
	}
	if err := s.campusRepo.CreateCampus(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CadastroService) UpdateCampus(ctx context.Context, id int, req model.CampusRequest) (*model.Campus, error) {
	c, err := s.campusRepo.GetCampus(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Nome = strings.TrimSpace(req.Nome)
	c.Sigla = strings.ToUpper(strings.TrimSpace(req.Sigla))
	c.Ativo = model.BoolOr(req.Ativo, c.Ativo)
	if err := s.campusRepo.UpdateCampus(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CadastroService) DeactivateCampus(ctx context.Context, id int) error {
	return s.campusRepo.DeactivateCampus(ctx, id)
}

// ─── Curso ─────────────────────────────────────────────────────────────

func (s *CadastroService) ListCursos(ctx context.Context, campusID *int, soAtivos bool) ([]model.Curso, error) {
	return s.campusRepo.ListCursos(ctx, campusID, soAtivos)
}

func (s *CadastroService) GetCurso(ctx context.Context, id int) (*model.Curso, error) {
	return s.campusRepo.GetCurso(ctx, id)
}

func (s *CadastroService) CreateCurso(ctx context.Context, req model.CursoRequest) (*model.Curso, error) {
	c := &model.Curso{
		Nome:     strings.TrimSpace(req.Nome),
		CampusID: req.CampusID,
		Codigo:   strings.ToUpper(strings.TrimSpace(req.Codigo)),
		Ativo:    model.BoolOr(req.Ativo, true),
	}
	if err := s.campusRepo.CreateCurso(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CadastroService) UpdateCurso(ctx context.Context, id int, req model.CursoRequest) (*model.Curso, error) {
	c, err := s.campusRepo.GetCurso(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Nome = strings.TrimSpace(req.Nome)
	c.CampusID = req.CampusID
	c.Codigo = strings.ToUpper(strings.TrimSpace(req.Codigo))
	c.Ativo = model.BoolOr(req.Ativo, c.Ativo)
	if err := s.campusRepo.UpdateCurso(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CadastroService) DeactivateCurso(ctx context.Context, id int) error {
	return s.campusRepo.DeactivateCurso(ctx, id)
}

// ─── Turma ─────────────────────────────────────────────────────────────

func (s *CadastroService) ListTurmas(ctx context.Context, cursoID, ano *int, soAtivas bool) ([]model.Turma, error) {
	return s.campusRepo.ListTurmas(ctx, cursoID, ano, soAtivas)
}

func (s *CadastroService) GetTurma(ctx context.Context, id int) (*model.Turma, error) {
	return s.campusRepo.GetTurma(ctx, id)
}

func (s *CadastroService) CreateTurma(ctx context.Context, req model.TurmaRequest) (*model.Turma, error) {
	t := turmaFromRequest(req)
	t.Ativa = model.BoolOr(req.Ativa, true)
	if err := s.campusRepo.CreateTurma(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CadastroService) UpdateTurma(ctx context.Context, id int, req model.TurmaRequest) (*model.Turma, error) {
	current, err := s.campusRepo.GetTurma(ctx, id)
	if err != nil {
		return nil, err
	}
	t := turmaFromRequest(req)
	t.ID = id
	t.Ativa = model.BoolOr(req.Ativa, current.Ativa)
	t.CreatedAt = current.CreatedAt
	if err := s.campusRepo.UpdateTurma(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CadastroService) DeactivateTurma(ctx context.Context, id int) error {
	return s.campusRepo.DeactivateTurma(ctx, id)
}

func turmaFromRequest(req model.TurmaRequest) *model.Turma {
	return &model.Turma{
		Nome:     strings.TrimSpace(req.Nome),
		CursoID:  req.CursoID,
		Ano:      req.Ano,
		Periodo:  req.Periodo,
		Semestre: req.Semestre,
		Sala:     strings.TrimSpace(req.Sala),
	}
}

// ─── Servidor ──────────────────────────────────────────────────────────

// ListServidores retrieves a page of staff members.
func (s *CadastroService) ListServidores(ctx context.Context, sf model.ServidorFilter, page, perPage int) ([]model.Servidor, *response.Pagination, error) {
	page, perPage = pageBounds(page, perPage)
	items, total, err := s.servidorRepo.ListPaginated(ctx, sf, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Servidor{}
	}
	return items, response.NewPagination(page, perPage, total), nil
}

// FiltrarServidores is the unpaginated lookup used by pickers.
func (s *CadastroService) FiltrarServidores(ctx context.Context, sf model.ServidorFilter) ([]model.Servidor, error) {
	sf.SoAtivos = true
	return s.servidorRepo.List(ctx, sf)
}

func (s *CadastroService) GetServidor(ctx context.Context, id int) (*model.Servidor, error) {
	return s.servidorRepo.GetByID(ctx, id)
}

func (s *CadastroService) CreateServidor(ctx context.Context, req model.ServidorRequest) (*model.Servidor, error) {
	sv := servidorFromRequest(req)
	sv.Ativo = model.BoolOr(req.Ativo, true)
	if err := s.servidorRepo.Create(ctx, sv); err != nil {
		return nil, err
	}
	s.log.Info().Int("servidor_id", sv.ID).Str("siape", sv.Siape).Msg("Servidor created")
	return sv, nil
}

func (s *CadastroService) UpdateServidor(ctx context.Context, id int, req model.ServidorRequest) (*model.Servidor, error) {
	current, err := s.servidorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sv := servidorFromRequest(req)
	sv.ID = id
	sv.Ativo = model.BoolOr(req.Ativo, current.Ativo)
	sv.CreatedAt = current.CreatedAt
	if err := s.servidorRepo.Update(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *CadastroService) DeactivateServidor(ctx context.Context, id int) error {
	return s.servidorRepo.Deactivate(ctx, id)
}

func servidorFromRequest(req model.ServidorRequest) *model.Servidor {
	return &model.Servidor{
		UsuarioID:                 req.UsuarioID,
		Siape:                     strings.TrimSpace(req.Siape),
		Nome:                      strings.TrimSpace(req.Nome),
		Funcao:                    strings.TrimSpace(req.Funcao),
		Email:                     strings.ToLower(strings.TrimSpace(req.Email)),
		CampusID:                  req.CampusID,
		Coordenacao:               req.Coordenacao,
		MembroComissaoDisciplinar: req.MembroComissaoDisciplinar,
		PodeRegistrarAtendimento:  req.PodeRegistrarAtendimento,
		PodeVisualizarFichaAluno:  req.PodeVisualizarFichaAluno,
	}
}

// ─── Infrações e sanções ───────────────────────────────────────────────

func (s *CadastroService) ListInfracoes(ctx context.Context, soAtivas bool) ([]model.Infracao, error) {
	return s.catalogoRepo.ListInfracoes(ctx, soAtivas)
}

func (s *CadastroService) GetInfracao(ctx context.Context, id int) (*model.Infracao, error) {
	return s.catalogoRepo.GetInfracao(ctx, id)
}

func (s *CadastroService) CreateInfracao(ctx context.Context, req model.InfracaoRequest) (*model.Infracao, error) {
	i := &model.Infracao{
		Codigo:           strings.ToUpper(strings.TrimSpace(req.Codigo)),
		Descricao:        strings.TrimSpace(req.Descricao),
		Gravidade:        req.Gravidade,
		ReferenciaArtigo: strings.TrimSpace(req.ReferenciaArtigo),
		Ativo:            model.BoolOr(req.Ativo, true),
	}
	if err := s.catalogoRepo.CreateInfracao(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *CadastroService) UpdateInfracao(ctx context.Context, id int, req model.InfracaoRequest) (*model.Infracao, error) {
	i, err := s.catalogoRepo.GetInfracao(ctx, id)
	if err != nil {
		return nil, err
	}
	i.Codigo = strings.ToUpper(strings.TrimSpace(req.Codigo))
	i.Descricao = strings.TrimSpace(req.Descricao)
	i.Gravidade = req.Gravidade
	i.ReferenciaArtigo = strings.TrimSpace(req.ReferenciaArtigo)
	i.Ativo = model.BoolOr(req.Ativo, i.Ativo)
	if err := s.catalogoRepo.UpdateInfracao(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *CadastroService) DeactivateInfracao(ctx context.Context, id int) error {
	return s.catalogoRepo.DeactivateInfracao(ctx, id)
}

func (s *CadastroService) ListSancoes(ctx context.Context) ([]model.Sancao, error) {
	return s.catalogoRepo.ListSancoes(ctx)
}

func (s *CadastroService) GetSancao(ctx context.Context, id int) (*model.Sancao, error) {
	return s.catalogoRepo.GetSancao(ctx, id)
}

func (s *CadastroService) CreateSancao(ctx context.Context, req model.SancaoRequest) (*model.Sancao, error) {
	sc := &model.Sancao{Tipo: req.Tipo, Descricao: strings.TrimSpace(req.Descricao), InfracaoIDs: req.InfracaoIDs}
	if err := s.catalogoRepo.CreateSancao(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *CadastroService) UpdateSancao(ctx context.Context, id int, req model.SancaoRequest) (*model.Sancao, error) {
	sc, err := s.catalogoRepo.GetSancao(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.Tipo = req.Tipo
	sc.Descricao = strings.TrimSpace(req.Descricao)
	sc.InfracaoIDs = req.InfracaoIDs
	if err := s.catalogoRepo.UpdateSancao(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// DeleteSancao removes a sanction that no ocorrência references.
func (s *CadastroService) DeleteSancao(ctx context.Context, id int) error {
	return s.catalogoRepo.DeleteSancao(ctx, id)
}

// ─── Tipos de ocorrência rápida ────────────────────────────────────────

func (s *CadastroService) ListTiposRapidos(ctx context.Context, soAtivos bool) ([]model.TipoOcorrenciaRapida, error) {
	return s.catalogoRepo.ListTiposRapidos(ctx, soAtivos)
}

func (s *CadastroService) CreateTipoRapido(ctx context.Context, req model.TipoOcorrenciaRapidaRequest) (*model.TipoOcorrenciaRapida, error) {
	t := &model.TipoOcorrenciaRapida{
		Codigo:    strings.ToUpper(strings.TrimSpace(req.Codigo)),
		Descricao: strings.TrimSpace(req.Descricao),
		Ativo:     model.BoolOr(req.Ativo, true),
	}
	if err := s.catalogoRepo.CreateTipoRapido(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CadastroService) UpdateTipoRapido(ctx context.Context, id int, req model.TipoOcorrenciaRapidaRequest) (*model.TipoOcorrenciaRapida, error) {
	t := &model.TipoOcorrenciaRapida{
		ID:        id,
		Codigo:    strings.ToUpper(strings.TrimSpace(req.Codigo)),
		Descricao: strings.TrimSpace(req.Descricao),
		Ativo:     model.BoolOr(req.Ativo, true),
	}
	if err := s.catalogoRepo.UpdateTipoRapido(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CadastroService) DeactivateTipoRapido(ctx context.Context, id int) error {
	return s.catalogoRepo.DeactivateTipoRapido(ctx, id)
}

// SeedTiposRapidos inserts the default quick occurrence kinds that are missing.
func (s *CadastroService) SeedTiposRapidos(ctx context.Context) (int, error) {
	created := 0
	for _, t := range model.DefaultTiposRapidos {
		t.Ativo = true
		ok, err := s.catalogoRepo.EnsureTipoRapido(ctx, t)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}
