package websocket

import (
	"encoding/json"
	"errors"
)

// ErrMalformed is returned for a client message that is not a JSON object.
var ErrMalformed = errors.New("malformed message")

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing          Action = "ping"
	ActionMarcarLida    Action = "marcar_lida"
	ActionMarcarTodas   Action = "marcar_todas"
	ActionContarNaoLida Action = "contar_nao_lidas"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// MarcarLidaRequest marks one notification as read.
type MarcarLidaRequest struct {
	Action Action `json:"action"`
	ID     int    `json:"id"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventNotificacao Event = "notificacao"
	EventNaoLidas    Event = "nao_lidas"
	EventPong        Event = "pong"
)

// NotificacaoEvent carries a notification exactly as it was published.
type NotificacaoEvent struct {
	Event       Event           `json:"event"`
	Notificacao json.RawMessage `json:"notificacao"`
}

// NaoLidasEvent carries the unread counter after any change.
type NaoLidasEvent struct {
	Event Event `json:"event"`
	Count int   `json:"count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
