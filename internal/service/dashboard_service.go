package service

import (
	"context"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/model"
	"github.com/ifb/ocorrencias-backend/internal/repository"
)

// DashboardData consolidates the metrics of the general dashboard.
type DashboardData struct {
	OcorrenciasMes     int                            `json:"ocorrencias_mes"`
	RapidasHoje        int                            `json:"rapidas_hoje"`
	AlertasMes         int                            `json:"alertas_mes"`
	EstudantesAtivos   int                            `json:"estudantes_ativos"`
	StatusCounts       map[model.OcorrenciaStatus]int `json:"status_counts"`
	UltimasOcorrencias []model.Ocorrencia             `json:"ultimas_ocorrencias"`
}

// ComissaoDashboardData is what the disciplinary committee works on.
type ComissaoDashboardData struct {
	Pendentes      int                `json:"pendentes"`
	EmAnalise      int                `json:"em_analise"`
	EmJulgamento   int                `json:"em_julgamento"`
	PrazosVencendo int                `json:"prazos_vencendo"`
	Aguardando     []model.Ocorrencia `json:"aguardando"`
	Prazos         []model.Ocorrencia `json:"prazos"`
}

// Estatisticas groups occurrence counts for the charts.
type Estatisticas struct {
	PorMes       []model.ContagemLabel `json:"por_mes"`
	PorGravidade []model.ContagemLabel `json:"por_gravidade"`
	PorTurma     []model.ContagemLabel `json:"por_turma"`
}

// DiasPrazoComissao is the window of defence deadlines shown to the committee.
const DiasPrazoComissao = 3

var statusAguardandoComissao = []model.OcorrenciaStatus{
	model.StatusRegistrada,
	model.StatusEmAnalise,
	model.StatusDefesaApresentada,
	model.StatusEmJulgamento,
	model.StatusEmRecurso,
}

// DashboardService handles dashboard business logic.
type DashboardService struct {
	repo        *repository.DashboardRepository
	ocorrencias *repository.OcorrenciaRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, ocorrencias *repository.OcorrenciaRepository) *DashboardService {
	return &DashboardService{repo: repo, ocorrencias: ocorrencias, now: time.Now}
}

// GetDashboardData fetches the general dashboard metrics sequentially.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	hoje := model.NewDate(s.now())
	ocorrenciasMes, rapidasHoje, alertasMes, estudantes, err := s.repo.GetSummaryCounts(ctx, hoje)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range model.AllOcorrenciaStatus {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	recentes, err := s.ocorrencias.ListRecent(ctx, 5)
	if err != nil {
		return nil, err
	}
	if recentes == nil {
		recentes = []model.Ocorrencia{}
	}

	return &DashboardData{
		OcorrenciasMes:     ocorrenciasMes,
		RapidasHoje:        rapidasHoje,
		AlertasMes:         alertasMes,
		EstudantesAtivos:   estudantes,
		StatusCounts:       statusCounts,
		UltimasOcorrencias: recentes,
	}, nil
}

// GetComissaoData lists the processes awaiting the committee and the defence
// deadlines ending in the next DiasPrazoComissao days.
func (s *DashboardService) GetComissaoData(ctx context.Context) (*ComissaoDashboardData, error) {
	aguardando, err := s.ocorrencias.ListByStatus(ctx, statusAguardandoComissao)
	if err != nil {
		return nil, err
	}
	hoje := model.NewDate(s.now())
	prazos, err := s.ocorrencias.ListPrazosEntre(ctx, hoje, hoje.AddDays(DiasPrazoComissao))
	if err != nil {
		return nil, err
	}

	d := &ComissaoDashboardData{
		Aguardando:     aguardando,
		Prazos:         prazos,
		PrazosVencendo: len(prazos),
	}
	if d.Aguardando == nil {
		d.Aguardando = []model.Ocorrencia{}
	}
	if d.Prazos == nil {
		d.Prazos = []model.Ocorrencia{}
	}
	for _, o := range aguardando {
		switch o.Status {
		case model.StatusRegistrada:
			d.Pendentes++
		case model.StatusEmAnalise:
			d.EmAnalise++
		case model.StatusEmJulgamento:
			d.EmJulgamento++
		}
	}
	return d, nil
}

// GetEstatisticas returns the 12-month series and the severity and class breakdowns.
func (s *DashboardService) GetEstatisticas(ctx context.Context) (*Estatisticas, error) {
	porMes, err := s.repo.GetPorMes(ctx, model.NewDate(s.now()))
	if err != nil {
		return nil, err
	}
	porGravidade, err := s.repo.GetPorGravidade(ctx)
	if err != nil {
		return nil, err
	}
	porTurma, err := s.repo.GetPorTurma(ctx, 10)
	if err != nil {
		return nil, err
	}
	e := &Estatisticas{PorMes: porMes, PorGravidade: porGravidade, PorTurma: porTurma}
	if e.PorMes == nil {
		e.PorMes = []model.ContagemLabel{}
	}
	if e.PorGravidade == nil {
		e.PorGravidade = []model.ContagemLabel{}
	}
	if e.PorTurma == nil {
		e.PorTurma = []model.ContagemLabel{}
	}
	return e, nil
}
