package model

import "time"

// TipoRefeicao names a meal served by the cafeteria.
type TipoRefeicao string

const (
	RefeicaoCafe   TipoRefeicao = "CAFE"
	RefeicaoAlmoco TipoRefeicao = "ALMOCO"
	RefeicaoLanche TipoRefeicao = "LANCHE"
	RefeicaoJantar TipoRefeicao = "JANTAR"
)

// ConfigRefeitorio is the serving window of one meal.
type ConfigRefeitorio struct {
	ID                   int          `json:"id"`
	Nome                 TipoRefeicao `json:"nome"`
	HorarioInicio        string       `json:"horario_inicio"`
	HorarioFim           string       `json:"horario_fim"`
	Ativo                bool         `json:"ativo"`
	IntervaloMinimoHoras int          `json:"intervalo_minimo_horas"`
}

// Contains reports whether the clock time hhmm falls inside the window, bounds included.
func (c ConfigRefeitorio) Contains(hhmm string) bool {
	return c.HorarioInicio <= hhmm && hhmm <= c.HorarioFim
}

// DefaultRefeicoes are the meal windows seeded on a new install.
var DefaultRefeicoes = []ConfigRefeitorio{
	{Nome: RefeicaoCafe, HorarioInicio: "06:30", HorarioFim: "08:30", Ativo: true, IntervaloMinimoHoras: 3},
	{Nome: RefeicaoAlmoco, HorarioInicio: "11:00", HorarioFim: "14:00", Ativo: true, IntervaloMinimoHoras: 3},
	{Nome: RefeicaoLanche, HorarioInicio: "15:00", HorarioFim: "16:30", Ativo: true, IntervaloMinimoHoras: 3},
	{Nome: RefeicaoJantar, HorarioInicio: "18:00", HorarioFim: "20:00", Ativo: true, IntervaloMinimoHoras: 3},
}

// RegistroRefeicao is one served meal. Exactly one of EstudanteID or ServidorID is set.
type RegistroRefeicao struct {
	ID                int          `json:"id"`
	EstudanteID       *int         `json:"estudante_id"`
	ServidorID        *int         `json:"servidor_id"`
	Nome              string       `json:"nome"`
	TipoRefeicao      TipoRefeicao `json:"tipo_refeicao"`
	DataHora          time.Time    `json:"data_hora"`
	CodigoBarrasUsado string       `json:"codigo_barras_usado"`
	IPAcesso          string       `json:"ip_acesso"`
}

// BloqueioAcesso prevents a person from using the cafeteria. A nil DataFim means permanent.
type BloqueioAcesso struct {
	ID          int       `json:"id"`
	EstudanteID *int      `json:"estudante_id"`
	ServidorID  *int      `json:"servidor_id"`
	Nome        string    `json:"nome,omitempty"`
	Motivo      string    `json:"motivo"`
	DataInicio  Date      `json:"data_inicio"`
	DataFim     *Date     `json:"data_fim"`
	Ativo       bool      `json:"ativo"`
	CriadoPorID *int      `json:"criado_por_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// VigenteEm reports whether the block applies on the given day.
func (b BloqueioAcesso) VigenteEm(hoje Date) bool {
	if !b.Ativo || hoje.Before(b.DataInicio) {
		return false
	}
	return b.DataFim == nil || !hoje.After(*b.DataFim)
}

// Pessoa is whoever a kiosk code resolved to.
type Pessoa struct {
	EstudanteID *int   `json:"estudante_id,omitempty"`
	ServidorID  *int   `json:"servidor_id,omitempty"`
	Nome        string `json:"nome"`
	Codigo      string `json:"codigo"`
	FotoURL     string `json:"foto_url,omitempty"`
}

// DashboardRefeitorio summarizes today's cafeteria usage.
type DashboardRefeitorio struct {
	TotalHoje   int                `json:"total_hoje"`
	Estudantes  int                `json:"estudantes"`
	Servidores  int                `json:"servidores"`
	PorRefeicao []ContagemLabel    `json:"por_refeicao"`
	Ultimos     []RegistroRefeicao `json:"ultimos"`
}

// RelatorioRefeitorio is the per-day report of a period.
type RelatorioRefeitorio struct {
	Inicio      Date            `json:"inicio"`
	Fim         Date            `json:"fim"`
	Total       int             `json:"total"`
	PorDia      []ContagemLabel `json:"por_dia"`
	PorRefeicao []ContagemLabel `json:"por_refeicao"`
}

type CheckinRequest struct {
	Codigo string `json:"codigo"`
}

type ConfigRefeitorioRequest struct {
	Nome                 TipoRefeicao `json:"nome" binding:"required,oneof=CAFE ALMOCO LANCHE JANTAR"`
	HorarioInicio        string       `json:"horario_inicio" binding:"required,hhmm"`
	HorarioFim           string       `json:"horario_fim" binding:"required,hhmm"`
	Ativo                *bool        `json:"ativo"`
	IntervaloMinimoHoras int          `json:"intervalo_minimo_horas" binding:"omitempty,min=0,max=24"`
}

type BloqueioRequest struct {
	EstudanteID *int   `json:"estudante_id"`
	ServidorID  *int   `json:"servidor_id"`
	Motivo      string `json:"motivo" binding:"required,min=3"`
	DataInicio  string `json:"data_inicio" binding:"required,isodate"`
	DataFim     string `json:"data_fim" binding:"omitempty,isodate"`
	Ativo       *bool  `json:"ativo"`
}
