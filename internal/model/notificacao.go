package model

import "time"

// TipoNotificacao classifies an in-app notification.
type TipoNotificacao string

const (
	NotificacaoNovaOcorrencia    TipoNotificacao = "NOVA_OCORRENCIA"
	NotificacaoAtualizacaoStatus TipoNotificacao = "ATUALIZACAO_STATUS"
	NotificacaoComentario        TipoNotificacao = "COMENTARIO"
	NotificacaoPrazo             TipoNotificacao = "PRAZO"
	NotificacaoDefesa            TipoNotificacao = "DEFESA"
	NotificacaoSancao            TipoNotificacao = "SANCAO"
	NotificacaoAlerta            TipoNotificacao = "ALERTA"
)

// Prioridade of an in-app notification.
type Prioridade string

const (
	PrioridadeBaixa   Prioridade = "BAIXA"
	PrioridadeMedia   Prioridade = "MEDIA"
	PrioridadeAlta    Prioridade = "ALTA"
	PrioridadeUrgente Prioridade = "URGENTE"
)

// Urgent reports whether the priority triggers an email to the user.
func (p Prioridade) Urgent() bool {
	return p == PrioridadeAlta || p == PrioridadeUrgente
}

// Notificacao is an in-app notification addressed to one user.
type Notificacao struct {
	ID           int             `json:"id"`
	UsuarioID    int             `json:"usuario_id"`
	Tipo         TipoNotificacao `json:"tipo"`
	Titulo       string          `json:"titulo"`
	Mensagem     string          `json:"mensagem"`
	Prioridade   Prioridade      `json:"prioridade"`
	OcorrenciaID *int            `json:"ocorrencia_id"`
	Lida         bool            `json:"lida"`
	LidaEm       *time.Time      `json:"lida_em"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PreferenciaNotificacao holds a user's email opt-ins. Every flag defaults to true.
type PreferenciaNotificacao struct {
	UsuarioID                    int  `json:"usuario_id"`
	ReceberEmailNovasOcorrencias bool `json:"receber_email_novas_ocorrencias"`
	ReceberEmailAtualizacoes     bool `json:"receber_email_atualizacoes"`
	ReceberEmailPrazos           bool `json:"receber_email_prazos"`
	ReceberNotificacoesUrgentes  bool `json:"receber_notificacoes_urgentes"`
}

// DefaultPreferencia returns the preferences of a user who never changed them.
func DefaultPreferencia(usuarioID int) PreferenciaNotificacao {
	return PreferenciaNotificacao{
		UsuarioID:                    usuarioID,
		ReceberEmailNovasOcorrencias: true,
		ReceberEmailAtualizacoes:     true,
		ReceberEmailPrazos:           true,
		ReceberNotificacoesUrgentes:  true,
	}
}

// Destinatario is a user that can receive notifications, with the staff
// email used for delivery.
type Destinatario struct {
	UsuarioID  int    `json:"usuario_id"`
	ServidorID int    `json:"servidor_id"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
}

// PreferenciaRequest is the payload for updating notification preferences.
type PreferenciaRequest struct {
	ReceberEmailNovasOcorrencias *bool `json:"receber_email_novas_ocorrencias"`
	ReceberEmailAtualizacoes     *bool `json:"receber_email_atualizacoes"`
	ReceberEmailPrazos           *bool `json:"receber_email_prazos"`
	ReceberNotificacoesUrgentes  *bool `json:"receber_notificacoes_urgentes"`
}
