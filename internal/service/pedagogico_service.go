package service

import (
	"context"
	"fmt"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
	"github.com/rs/zerolog"
)

// PedagogicoService handles disciplines, class councils and the student ficha.
type PedagogicoService struct {
	repo         *repository.PedagogicoRepository
	estudantes   *repository.EstudanteRepository
	responsaveis *repository.ResponsavelRepository
	ocorrencias  *repository.OcorrenciaRepository
	rapidas      *repository.OcorrenciaRapidaRepository
	atendimentos *repository.AtendimentoRepository
	napne        *repository.NapneRepository
	log          zerolog.Logger
}

// NewPedagogicoService creates a new PedagogicoService.
func NewPedagogicoService(
	repo *repository.PedagogicoRepository,
	estudantes *repository.EstudanteRepository,
	responsaveis *repository.ResponsavelRepository,
	ocorrencias *repository.OcorrenciaRepository,
	rapidas *repository.OcorrenciaRapidaRepository,
	atendimentos *repository.AtendimentoRepository,
	napne *repository.NapneRepository,
	log zerolog.Logger,
) *PedagogicoService {
	return &PedagogicoService{
		repo:         repo,
		estudantes:   estudantes,
		responsaveis: responsaveis,
		ocorrencias:  ocorrencias,
		rapidas:      rapidas,
		atendimentos: atendimentos,
		napne:        napne,
		log:          log.With().Str("component", "pedagogico_service").Logger(),
	}
}

// ─── Disciplinas ───────────────────────────────────────────────────────

func (s *PedagogicoService) ListDisciplinas(ctx context.Context, cursoID *int, soAtivas bool) ([]model.Disciplina, error) {
	items, err := s.repo.ListDisciplinas(ctx, cursoID, soAtivas)
	if items == nil && err == nil {
		items = []model.Disciplina{}
	}
	return items, err
}

func (s *PedagogicoService) GetDisciplina(ctx context.Context, id int) (*model.Disciplina, error) {
	return s.repo.GetDisciplina(ctx, id)
}

func (s *PedagogicoService) CreateDisciplina(ctx context.Context, req model.DisciplinaRequest) (*model.Disciplina, error) {
	d := disciplinaFromRequest(&model.Disciplina{}, req)
	if err := s.repo.CreateDisciplina(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *PedagogicoService) UpdateDisciplina(ctx context.Context, id int, req model.DisciplinaRequest) (*model.Disciplina, error) {
	d := disciplinaFromRequest(&model.Disciplina{ID: id}, req)
	if err := s.repo.UpdateDisciplina(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *PedagogicoService) DeactivateDisciplina(ctx context.Context, id int) error {
	return s.repo.DeactivateDisciplina(ctx, id)
}

func disciplinaFromRequest(d *model.Disciplina, req model.DisciplinaRequest) *model.Disciplina {
	d.Nome = req.Nome
	d.Codigo = req.Codigo
	d.CursoID = req.CursoID
	d.CargaHoraria = req.CargaHoraria
	d.Ementa = req.Ementa
	d.Ativa = model.BoolOr(req.Ativa, true)
	return d
}

// ─── Disciplinas da turma ──────────────────────────────────────────────

func (s *PedagogicoService) ListDisciplinasTurma(ctx context.Context, turmaID int, periodo string) ([]model.DisciplinaTurma, error) {
	items, err := s.repo.ListDisciplinasTurma(ctx, turmaID, periodo)
	if items == nil && err == nil {
		items = []model.DisciplinaTurma{}
	}
	return items, err
}

func (s *PedagogicoService) CreateDisciplinaTurma(ctx context.Context, req model.DisciplinaTurmaRequest) (*model.DisciplinaTurma, error) {
	dt := &model.DisciplinaTurma{DisciplinaID: req.DisciplinaID, TurmaID: req.TurmaID, DocenteID: req.DocenteID, Periodo: req.Periodo}
	if err := s.repo.CreateDisciplinaTurma(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

func (s *PedagogicoService) UpdateDisciplinaTurma(ctx context.Context, id int, req model.DisciplinaTurmaRequest) (*model.DisciplinaTurma, error) {
	dt := &model.DisciplinaTurma{ID: id, DisciplinaID: req.DisciplinaID, TurmaID: req.TurmaID, DocenteID: req.DocenteID, Periodo: req.Periodo}
	if err := s.repo.UpdateDisciplinaTurma(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

func (s *PedagogicoService) DeleteDisciplinaTurma(ctx context.Context, id int) error {
	return s.repo.DeleteDisciplinaTurma(ctx, id)
}

// ─── Conselhos de classe ───────────────────────────────────────────────

func (s *PedagogicoService) ListConselhos(ctx context.Context, turmaID *int, periodo string) ([]model.ConselhoClasse, error) {
	items, err := s.repo.ListConselhos(ctx, turmaID, periodo)
	if items == nil && err == nil {
		items = []model.ConselhoClasse{}
	}
	return items, err
}

// GetConselho returns a council with its per-student records.
func (s *PedagogicoService) GetConselho(ctx context.Context, id int) (*model.ConselhoDetalhe, error) {
	c, err := s.repo.GetConselho(ctx, id)
	if err != nil {
		return nil, err
	}
	infos, err := s.repo.ListInformacoes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list informacoes: %w", err)
	}
	if infos == nil {
		infos = []model.InformacaoEstudanteConselho{}
	}
	return &model.ConselhoDetalhe{ConselhoClasse: c, Estudantes: infos}, nil
}

func (s *PedagogicoService) CreateConselho(ctx context.Context, req model.ConselhoRequest) (*model.ConselhoClasse, error) {
	c := &model.ConselhoClasse{}
	if err := conselhoFromRequest(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateConselho(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Int("conselho_id", c.ID).Int("turma_id", c.TurmaID).Str("periodo", c.Periodo).Msg("Conselho created")
	return c, nil
}

func (s *PedagogicoService) UpdateConselho(ctx context.Context, id int, req model.ConselhoRequest) (*model.ConselhoClasse, error) {
	c := &model.ConselhoClasse{ID: id}
	if err := conselhoFromRequest(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateConselho(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PedagogicoService) DeleteConselho(ctx context.Context, id int) error {
	return s.repo.DeleteConselho(ctx, id)
}

func conselhoFromRequest(c *model.ConselhoClasse, req model.ConselhoRequest) error {
	data, err := model.ParseDate(req.DataRealizacao)
	if err != nil {
		return err
	}
	c.TurmaID = req.TurmaID
	c.Periodo = req.Periodo
	c.DataRealizacao = data
	c.InformacoesGerais = req.InformacoesGerais
	c.PontosPositivos = req.PontosPositivos
	c.PontosAtencao = req.PontosAtencao
	c.Encaminhamentos = req.Encaminhamentos
	c.CoordenacaoCursoID = req.CoordenacaoCursoID
	c.CoordenacaoPedagogicaID = req.CoordenacaoPedagogicaID
	c.DocenteIDs = uniqueInts(req.DocenteIDs)
	return nil
}

// SalvarInformacao creates or replaces what the council recorded about a
// student, together with the per-subject grades.
func (s *PedagogicoService) SalvarInformacao(ctx context.Context, conselhoID int, req model.InformacaoEstudanteRequest) (*model.InformacaoEstudanteConselho, error) {
	if _, err := s.repo.GetConselho(ctx, conselhoID); err != nil {
		return nil, err
	}
	i := &model.InformacaoEstudanteConselho{
		ConselhoID:                conselhoID,
		EstudanteID:               req.EstudanteID,
		Observacoes:               req.Observacoes,
		Frequencia:                req.Frequencia,
		SituacaoGeral:             req.SituacaoGeral,
		Participacao:              req.Participacao,
		Relacionamento:            req.Relacionamento,
		Dificuldades:              req.Dificuldades,
		Potencialidades:           req.Potencialidades,
		NecessitaAcompanhamento:   req.NecessitaAcompanhamento,
		EncaminhamentoCDPD:        req.EncaminhamentoCDPD,
		EncaminhamentoCDAE:        req.EncaminhamentoCDAE,
		EncaminhamentoNAPNE:       req.EncaminhamentoNAPNE,
		ObservacoesEncaminhamento: req.ObservacoesEncaminhamento,
	}
	disciplinas := make([]model.InformacaoDisciplinaConselho, 0, len(req.Disciplinas))
	for _, d := range req.Disciplinas {
		disciplinas = append(disciplinas, model.InformacaoDisciplinaConselho{
			DisciplinaTurmaID: d.DisciplinaTurmaID,
			Nota:              d.Nota,
			Frequencia:        d.Frequencia,
			Observacoes:       d.Observacoes,
		})
	}
	if err := s.repo.SaveInformacao(ctx, i, disciplinas); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *PedagogicoService) ListInformacoesDisciplina(ctx context.Context, informacaoID int) ([]model.InformacaoDisciplinaConselho, error) {
	items, err := s.repo.ListInformacoesDisciplina(ctx, informacaoID)
	if items == nil && err == nil {
		items = []model.InformacaoDisciplinaConselho{}
	}
	return items, err
}

// ─── Ficha do aluno ────────────────────────────────────────────────────

// Ficha aggregates the student's occurrences, published attendances,
// council records and published NAPNE attendances.
func (s *PedagogicoService) Ficha(ctx context.Context, actor Actor, estudanteID int) (*model.FichaAluno, error) {
	if !actor.Has(model.PermissionFichaRead) {
		return nil, ErrNotAllowed
	}
	e, err := s.estudantes.GetByID(ctx, estudanteID)
	if err != nil {
		return nil, err
	}
	f := &model.FichaAluno{Estudante: model.NewEstudanteView(e)}

	if f.Responsaveis, err = s.responsaveis.ListByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list responsaveis: %w", err)
	}
	if f.Ocorrencias, err = s.ocorrencias.ListByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list ocorrencias: %w", err)
	}
	if f.Rapidas, err = s.rapidas.ListByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list rapidas: %w", err)
	}
	if f.Atendimentos, err = s.atendimentos.ListPublicadosByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list atendimentos: %w", err)
	}
	if f.Conselhos, err = s.repo.ListInformacoesByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list conselhos: %w", err)
	}
	if f.AtendimentosNAPNE, err = s.napne.ListPublicadosByEstudante(ctx, estudanteID); err != nil {
		return nil, fmt.Errorf("list atendimentos napne: %w", err)
	}

	if f.Responsaveis == nil {
		f.Responsaveis = []model.Responsavel{}
	}
	if f.Ocorrencias == nil {
		f.Ocorrencias = []model.Ocorrencia{}
	}
	if f.Rapidas == nil {
		f.Rapidas = []model.OcorrenciaRapida{}
	}
	if f.Atendimentos == nil {
		f.Atendimentos = []model.Atendimento{}
	}
	if f.Conselhos == nil {
		f.Conselhos = []model.InformacaoEstudanteConselho{}
	}
	if f.AtendimentosNAPNE == nil {
		f.AtendimentosNAPNE = []model.AtendimentoNAPNE{}
	}
	return f, nil
}
