package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	WriteWait    = 10 * time.Second
	PingInterval = 30 * time.Second
	// A client that sends nothing and answers no ping for IdleTimeout is dropped.
	IdleTimeout = 5 * time.Minute
)

// Send writes one server event.
func Send(conn *websocket.Conn, event interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// Ping writes a control ping, which also renews the client's read deadline on pong.
func Ping(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteWait))
}

// Receive reads the next client message and peeks at its action. The raw
// message is returned so action-specific fields can be decoded afterwards.
func Receive(conn *websocket.Conn) (Action, json.RawMessage, error) {
	if err := conn.SetReadDeadline(time.Now().Add(IdleTimeout)); err != nil {
		return "", nil, err
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", nil, err
	}
	var env RequestEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", raw, ErrMalformed
	}
	return env.Action, raw, nil
}

// Erro builds the error event sent back for a rejected message.
func Erro(msg string) ErrorResponse {
	return ErrorResponse{Event: EventError, Error: msg}
}
