package model

import (
	"strings"
	"time"
)

// OcorrenciaRapida is a minor occurrence registered in a few taps.
type OcorrenciaRapida struct {
	ID                    int       `json:"id"`
	Data                  Date      `json:"data"`
	Horario               string    `json:"horario"`
	TurmaID               *int      `json:"turma_id"`
	TurmaNome             string    `json:"turma_nome,omitempty"`
	EstudanteIDs          []int     `json:"estudante_ids"`
	TipoIDs               []int     `json:"tipo_ids"`
	Descricao             string    `json:"descricao"`
	ResponsavelRegistroID int       `json:"responsavel_registro_id"`
	ResponsavelNome       string    `json:"responsavel_registro_nome,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DescricaoPadrao joins the type descriptions with "; ".
func DescricaoPadrao(tipos []TipoOcorrenciaRapida) string {
	parts := make([]string, 0, len(tipos))
	for _, t := range tipos {
		parts = append(parts, t.Descricao)
	}
	return strings.Join(parts, "; ")
}

// ConfiguracaoLimite binds a quick occurrence type to a monthly threshold
// and the channels fired when a student reaches it.
type ConfiguracaoLimite struct {
	ID                      int           `json:"id"`
	TipoOcorrenciaID        int           `json:"tipo_ocorrencia_id"`
	TipoDescricao           string        `json:"tipo_descricao,omitempty"`
	LimiteMensal            int           `json:"limite_mensal"`
	Ativo                   bool          `json:"ativo"`
	CoordenacoesNotificar   []Coordenacao `json:"coordenacoes_notificar"`
	GerarNotificacaoSistema bool          `json:"gerar_notificacao_sistema"`
	GerarEmailCoordenacao   bool          `json:"gerar_email_coordenacao"`
	GerarEmailResponsaveis  bool          `json:"gerar_email_responsaveis"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

// AlertaLimite records that a student reached the monthly threshold of a type.
// MesReferencia is always the first day of the month.
type AlertaLimite struct {
	ID                       int       `json:"id"`
	EstudanteID              int       `json:"estudante_id"`
	EstudanteNome            string    `json:"estudante_nome,omitempty"`
	TipoOcorrenciaID         int       `json:"tipo_ocorrencia_id"`
	TipoDescricao            string    `json:"tipo_descricao,omitempty"`
	MesReferencia            Date      `json:"mes_referencia"`
	QuantidadeOcorrencias    int       `json:"quantidade_ocorrencias"`
	NotificacaoSistemaCriada bool      `json:"notificacao_sistema_criada"`
	EmailCoordenacaoEnviado  bool      `json:"email_coordenacao_enviado"`
	EmailResponsaveisEnviado bool      `json:"email_responsaveis_enviado"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// AlertaChave identifies the (student, type, month) bucket counted for alerts.
type AlertaChave struct {
	EstudanteID int
	TipoID      int
	Mes         Date
}

// ChavesAfetadas lists every (student, type, month) bucket touched by the
// given quick occurrences, without duplicates and in input order.
func ChavesAfetadas(rapidas ...*OcorrenciaRapida) []AlertaChave {
	seen := make(map[AlertaChave]struct{})
	var out []AlertaChave
	for _, r := range rapidas {
		if r == nil {
			continue
		}
		mes := r.Data.MonthStart()
		for _, est := range r.EstudanteIDs {
			for _, tipo := range r.TipoIDs {
				k := AlertaChave{EstudanteID: est, TipoID: tipo, Mes: mes}
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}

// AlertaFilter narrows alert listings.
type AlertaFilter struct {
	Mes         *Date
	EstudanteID *int
	TipoID      *int
}

// OcorrenciaRapidaFilter narrows quick occurrence listings.
type OcorrenciaRapidaFilter struct {
	EstudanteID *int
	TurmaID     *int
	TipoID      *int
	Inicio      *Date
	Fim         *Date
}

// ContagemLabel is a generic label/count pair used by dashboards.
type ContagemLabel struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

// DashboardRapidas summarizes quick occurrences.
type DashboardRapidas struct {
	Total           int                `json:"total"`
	Hoje            int                `json:"hoje"`
	UltimosSeteDias int                `json:"ultimos_7_dias"`
	TipoMaisComum   *ContagemLabel     `json:"tipo_mais_comum"`
	PorTipo30Dias   []ContagemLabel    `json:"por_tipo_30_dias"`
	PorDia14Dias    []ContagemLabel    `json:"por_dia_14_dias"`
	Ultimas         []OcorrenciaRapida `json:"ultimas"`
	TopTurmasMes    []ContagemLabel    `json:"top_turmas_mes"`
}

// ─── Requests ──────────────────────────────────────────────────────────

type OcorrenciaRapidaRequest struct {
	Data         string `json:"data" binding:"required,isodate"`
	Horario      string `json:"horario" binding:"required,hhmm"`
	TurmaID      *int   `json:"turma_id"`
	EstudanteIDs []int  `json:"estudante_ids" binding:"required,min=1"`
	TipoIDs      []int  `json:"tipo_ids" binding:"required,min=1"`
	Descricao    string `json:"descricao" binding:"max=2000"`
}

type ConfiguracaoLimiteRequest struct {
	TipoOcorrenciaID        int           `json:"tipo_ocorrencia_id" binding:"required"`
	LimiteMensal            int           `json:"limite_mensal" binding:"required,min=1"`
	Ativo                   *bool         `json:"ativo"`
	CoordenacoesNotificar   []Coordenacao `json:"coordenacoes_notificar" binding:"dive,oneof=CDPD CC CDRA NAPNE CDAE CDAE_PEDAGOGICO CDAE_ASSISTENCIA CDAE_PSICOLOGA CDBA CGEN DOCENTE DREP DG"`
	GerarNotificacaoSistema bool          `json:"gerar_notificacao_sistema"`
	GerarEmailCoordenacao   bool          `json:"gerar_email_coordenacao"`
	GerarEmailResponsaveis  bool          `json:"gerar_email_responsaveis"`
}
