package model

import "errors"

// OcorrenciaStatus enumerates the stages of a disciplinary process.
type OcorrenciaStatus string

const (
	StatusRegistrada          OcorrenciaStatus = "REGISTRADA"
	StatusEmAnalise           OcorrenciaStatus = "EM_ANALISE"
	StatusComissaoDesignada   OcorrenciaStatus = "COMISSAO_DESIGNADA"
	StatusEstudanteNotificado OcorrenciaStatus = "ESTUDANTE_NOTIFICADO"
	StatusAguardandoDefesa    OcorrenciaStatus = "AGUARDANDO_DEFESA"
	StatusDefesaApresentada   OcorrenciaStatus = "DEFESA_APRESENTADA"
	StatusEmJulgamento        OcorrenciaStatus = "EM_JULGAMENTO"
	StatusSancaoAplicada      OcorrenciaStatus = "SANCAO_APLICADA"
	StatusEmRecurso           OcorrenciaStatus = "EM_RECURSO"
	StatusFinalizada          OcorrenciaStatus = "FINALIZADA"
	StatusArquivada           OcorrenciaStatus = "ARQUIVADA"
)

// AllOcorrenciaStatus lists the statuses in process order.
var AllOcorrenciaStatus = []OcorrenciaStatus{
	StatusRegistrada,
	StatusEmAnalise,
	StatusComissaoDesignada,
	StatusEstudanteNotificado,
	StatusAguardandoDefesa,
	StatusDefesaApresentada,
	StatusEmJulgamento,
	StatusSancaoAplicada,
	StatusEmRecurso,
	StatusFinalizada,
	StatusArquivada,
}

var statusLabels = map[OcorrenciaStatus]string{
	StatusRegistrada:          "Registrada",
	StatusEmAnalise:           "Em Análise",
	StatusComissaoDesignada:   "Comissão Designada",
	StatusEstudanteNotificado: "Estudante Notificado",
	StatusAguardandoDefesa:    "Aguardando Defesa",
	StatusDefesaApresentada:   "Defesa Apresentada",
	StatusEmJulgamento:        "Em Julgamento",
	StatusSancaoAplicada:      "Sanção Aplicada",
	StatusEmRecurso:           "Em Recurso",
	StatusFinalizada:          "Finalizada",
	StatusArquivada:           "Arquivada",
}

// Label returns the display name of the status.
func (s OcorrenciaStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s OcorrenciaStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Closed reports whether the process no longer accepts edits.
func (s OcorrenciaStatus) Closed() bool {
	return s == StatusFinalizada || s == StatusArquivada
}

// FlowAction names a transition of the disciplinary process.
type FlowAction string

const (
	ActionIniciarAnalise     FlowAction = "iniciar_analise"
	ActionDesignarComissao   FlowAction = "designar_comissao"
	ActionNotificarEstudante FlowAction = "notificar_estudante"
	ActionAguardarDefesa     FlowAction = "aguardar_defesa"
	ActionRegistrarDefesa    FlowAction = "registrar_defesa"
	ActionIniciarJulgamento  FlowAction = "iniciar_julgamento"
	ActionAplicarSancao      FlowAction = "aplicar_sancao"
	ActionAbrirRecurso       FlowAction = "abrir_recurso"
	ActionFinalizar          FlowAction = "finalizar"
	ActionArquivar           FlowAction = "arquivar"
)

// ErrInvalidTransition is returned when an action is not allowed from the current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownAction is returned for an action name outside the flow.
var ErrUnknownAction = errors.New("unknown flow action")

type transition struct {
	// from lists the statuses the action may start from; nil means any status.
	from []OcorrenciaStatus
	to   OcorrenciaStatus
}

var ocorrenciaFlow = map[FlowAction]transition{
	ActionIniciarAnalise:     {from: []OcorrenciaStatus{StatusRegistrada}, to: StatusEmAnalise},
	ActionDesignarComissao:   {from: []OcorrenciaStatus{StatusEmAnalise}, to: StatusComissaoDesignada},
	ActionNotificarEstudante: {from: []OcorrenciaStatus{StatusComissaoDesignada, StatusRegistrada}, to: StatusEstudanteNotificado},
	ActionAguardarDefesa:     {from: []OcorrenciaStatus{StatusEstudanteNotificado}, to: StatusAguardandoDefesa},
	ActionRegistrarDefesa:    {from: []OcorrenciaStatus{StatusAguardandoDefesa}, to: StatusDefesaApresentada},
	ActionIniciarJulgamento:  {from: []OcorrenciaStatus{StatusDefesaApresentada, StatusAguardandoDefesa}, to: StatusEmJulgamento},
	ActionAplicarSancao:      {from: []OcorrenciaStatus{StatusEmJulgamento}, to: StatusSancaoAplicada},
	ActionAbrirRecurso:       {from: []OcorrenciaStatus{StatusSancaoAplicada}, to: StatusEmRecurso},
	ActionFinalizar:          {from: []OcorrenciaStatus{StatusSancaoAplicada, StatusEmRecurso, StatusRegistrada}, to: StatusFinalizada},
	ActionArquivar:           {from: nil, to: StatusArquivada},
}

// flowOrder keeps AvailableActions deterministic.
var flowOrder = []FlowAction{
	ActionIniciarAnalise,
	ActionDesignarComissao,
	ActionNotificarEstudante,
	ActionAguardarDefesa,
	ActionRegistrarDefesa,
	ActionIniciarJulgamento,
	ActionAplicarSancao,
	ActionAbrirRecurso,
	ActionFinalizar,
	ActionArquivar,
}

// Valid reports whether a is part of the flow.
func (a FlowAction) Valid() bool {
	_, ok := ocorrenciaFlow[a]
	return ok
}

// NextStatus returns the status reached by applying action from current.
// The boolean is false when the pair is not in the transition table.
func NextStatus(current OcorrenciaStatus, action FlowAction) (OcorrenciaStatus, bool) {
	t, ok := ocorrenciaFlow[action]
	if !ok {
		return current, false
	}
	if t.from == nil {
		return t.to, true
	}
	for _, s := range t.from {
		if s == current {
			return t.to, true
		}
	}
	return current, false
}

// AvailableActions lists the actions that may be applied from current.
func AvailableActions(current OcorrenciaStatus) []FlowAction {
	actions := make([]FlowAction, 0, 3)
	for _, a := range flowOrder {
		if _, ok := NextStatus(current, a); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// Apply moves the ocorrência through action on the given day.
// notificar_estudante opens a defence window of prazoDias days and
// registrar_defesa stamps the defence date. On error the ocorrência is untouched.
func (o *Ocorrencia) Apply(action FlowAction, hoje Date, prazoDias int) error {
	if !action.Valid() {
		return ErrUnknownAction
	}
	next, ok := NextStatus(o.Status, action)
	if !ok {
		return ErrInvalidTransition
	}

	switch action {
	case ActionNotificarEstudante:
		prazo := hoje.AddDays(prazoDias)
		o.PrazoDefesa = &prazo
	case ActionRegistrarDefesa:
		d := hoje
		o.DataDefesa = &d
	}
	o.Status = next
	return nil
}
