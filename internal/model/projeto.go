package model

import (
	"fmt"
	"time"
)

// MaxHorasSemanais is the weekly hour cap of a servidor across all projects in a semester.
const MaxHorasSemanais = 12.0

// TipoProjeto distinguishes research from extension projects.
type TipoProjeto string

const (
	ProjetoPesquisa TipoProjeto = "PESQUISA"
	ProjetoExtensao TipoProjeto = "EXTENSAO"
)

// SituacaoProjeto is the lifecycle state of a project.
type SituacaoProjeto string

const (
	ProjetoAtivo      SituacaoProjeto = "ATIVO"
	ProjetoFinalizado SituacaoProjeto = "FINALIZADO"
	ProjetoPendente   SituacaoProjeto = "PENDENTE"
)

// Projeto is a research or extension project.
type Projeto struct {
	ID                     int             `json:"id"`
	NumeroProcesso         string          `json:"numero_processo"`
	Titulo                 string          `json:"titulo"`
	Tipo                   TipoProjeto     `json:"tipo"`
	DataInicio             Date            `json:"data_inicio"`
	DataFinal              Date            `json:"data_final"`
	Tema                   string          `json:"tema"`
	Area                   string          `json:"area"`
	CoordenadorID          int             `json:"coordenador_id"`
	CoordenadorNome        string          `json:"coordenador_nome,omitempty"`
	CoordenadorEmail       string          `json:"-"`
	EnvolveEstudantes      bool            `json:"envolve_estudantes"`
	Situacao               SituacaoProjeto `json:"situacao"`
	PeriodicidadeRelatorio int             `json:"periodicidade_relatorio"`
	DataUltimoRelatorio    *Date           `json:"data_ultimo_relatorio"`
	ProximoRelatorio       *Date           `json:"proximo_relatorio"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// CalcularProximoRelatorio sets the next report date to 30 days per month of
// periodicity after the last report, or after the start date when none was sent.
func (p *Projeto) CalcularProximoRelatorio() {
	base := p.DataInicio
	if p.DataUltimoRelatorio != nil && !p.DataUltimoRelatorio.IsZero() {
		base = *p.DataUltimoRelatorio
	}
	if base.IsZero() {
		p.ProximoRelatorio = nil
		return
	}
	next := base.AddDays(30 * p.PeriodicidadeRelatorio)
	p.ProximoRelatorio = &next
}

// RegistrarRelatorio records a report delivered on hoje.
func (p *Projeto) RegistrarRelatorio(hoje Date) {
	d := hoje
	p.DataUltimoRelatorio = &d
	p.CalcularProximoRelatorio()
}

// RelatorioAtrasado reports whether an active project missed its report date.
func (p *Projeto) RelatorioAtrasado(hoje Date) bool {
	return p.Situacao == ProjetoAtivo && p.ProximoRelatorio != nil && p.ProximoRelatorio.Before(hoje)
}

// SemestreAtual returns "YYYY.1" for January to June and "YYYY.2" otherwise.
func SemestreAtual(t time.Time) string {
	if t.Month() <= time.June {
		return fmt.Sprintf("%d.1", t.Year())
	}
	return fmt.Sprintf("%d.2", t.Year())
}

// ProjetoView adds the derived report flag to a project.
type ProjetoView struct {
	*Projeto
	RelatorioAtrasado bool `json:"relatorio_atrasado"`
}

// ParticipacaoServidor is a servidor's weekly dedication to a project in a semester.
type ParticipacaoServidor struct {
	ID            int       `json:"id"`
	ProjetoID     int       `json:"projeto_id"`
	ServidorID    int       `json:"servidor_id"`
	ServidorNome  string    `json:"servidor_nome,omitempty"`
	Semestre      string    `json:"semestre"`
	HorasSemanais float64   `json:"horas_semanais"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParticipacaoEstudante is a student taking part in a project.
type ParticipacaoEstudante struct {
	ID            int      `json:"id"`
	ProjetoID     int      `json:"projeto_id"`
	EstudanteID   int      `json:"estudante_id"`
	EstudanteNome string   `json:"estudante_nome,omitempty"`
	Bolsista      bool     `json:"bolsista"`
	ValorBolsa    *float64 `json:"valor_bolsa"`
	DataInicio    Date     `json:"data_inicio"`
	DataFim       *Date    `json:"data_fim"`
	Ativo         bool     `json:"ativo"`
}

// TipoAlertaRelatorio tells whether a report is due soon or overdue.
type TipoAlertaRelatorio string

const (
	AlertaRelatorioProximo TipoAlertaRelatorio = "PROXIMO"
	AlertaRelatorioVencido TipoAlertaRelatorio = "VENCIDO"
)

// AlertaRelatorio warns a coordinator about a project report.
type AlertaRelatorio struct {
	ID               int                 `json:"id"`
	ProjetoID        int                 `json:"projeto_id"`
	ProjetoTitulo    string              `json:"projeto_titulo,omitempty"`
	Tipo             TipoAlertaRelatorio `json:"tipo"`
	DataAlerta       Date                `json:"data_alerta"`
	Visualizado      bool                `json:"visualizado"`
	DataVisualizacao *time.Time          `json:"data_visualizacao"`
}

// ResultadoVerificacao counts what a report check produced.
type ResultadoVerificacao struct {
	AlertasCriados int `json:"alertas_criados"`
	EmailsEnviados int `json:"emails_enviados"`
}

// HorasServidor is one row of the hours report.
type HorasServidor struct {
	ServidorID int     `json:"servidor_id"`
	Nome       string  `json:"nome"`
	Siape      string  `json:"siape"`
	Semestre   string  `json:"semestre"`
	Projetos   int     `json:"projetos"`
	TotalHoras float64 `json:"total_horas"`
}

// EstatisticasProjetos groups project counts.
type EstatisticasProjetos struct {
	Total       int             `json:"total"`
	PorSituacao []ContagemLabel `json:"por_situacao"`
	PorTipo     []ContagemLabel `json:"por_tipo"`
	PorArea     []ContagemLabel `json:"por_area"`
	Atrasados   int             `json:"atrasados"`
}

// ProjetoFilter narrows project listings.
type ProjetoFilter struct {
	Situacao      SituacaoProjeto
	Tipo          TipoProjeto
	CoordenadorID *int
	Busca         string
	// ParticipanteID restricts to projects the servidor coordinates or takes part in.
	ParticipanteID *int
}

type ProjetoRequest struct {
	NumeroProcesso         string          `json:"numero_processo" binding:"required,max=50"`
	Titulo                 string          `json:"titulo" binding:"required,min=3,max=300"`
	Tipo                   TipoProjeto     `json:"tipo" binding:"required,oneof=PESQUISA EXTENSAO"`
	DataInicio             string          `json:"data_inicio" binding:"required,isodate"`
	DataFinal              string          `json:"data_final" binding:"required,isodate"`
	Tema                   string          `json:"tema" binding:"max=200"`
	Area                   string          `json:"area" binding:"max=100"`
	CoordenadorID          int             `json:"coordenador_id" binding:"required"`
	EnvolveEstudantes      bool            `json:"envolve_estudantes"`
	Situacao               SituacaoProjeto `json:"situacao" binding:"omitempty,oneof=ATIVO FINALIZADO PENDENTE"`
	PeriodicidadeRelatorio int             `json:"periodicidade_relatorio" binding:"omitempty,min=1,max=12"`
}

type ParticipacaoServidorRequest struct {
	ServidorID    int     `json:"servidor_id" binding:"required"`
	Semestre      string  `json:"semestre" binding:"omitempty,semestre"`
	HorasSemanais float64 `json:"horas_semanais" binding:"required,min=0.5,max=12"`
}

type ParticipacaoEstudanteRequest struct {
	EstudanteID int      `json:"estudante_id" binding:"required"`
	Bolsista    bool     `json:"bolsista"`
	ValorBolsa  *float64 `json:"valor_bolsa" binding:"omitempty,min=0"`
	DataInicio  string   `json:"data_inicio" binding:"required,isodate"`
	DataFim     string   `json:"data_fim" binding:"omitempty,isodate"`
	Ativo       *bool    `json:"ativo"`
}
