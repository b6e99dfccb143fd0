package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ifb/ocorrencias-backend/internal/middleware"
	"github.com/ifb/ocorrencias-backend/internal/response"
	"github.com/ifb/ocorrencias-backend/internal/service"
	ws "github.com/ifb/ocorrencias-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams realtime notifications to the logged user.
type WSHandler struct {
	notificacoes *service.NotificacaoService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(notificacoes *service.NotificacaoService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		notificacoes: notificacoes,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// NotificacoesStream godoc
// WS /ws/v1/notificacoes?token=
// Pushes every new notification of the user plus the unread counter, and
// accepts read/count actions from the client.
func (h *WSHandler) NotificacoesStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	usuarioID := claims.Actor().UsuarioID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsLog := h.log.With().Int("usuario_id", usuarioID).Logger()
	wsLog.Info().Msg("User connected")

	pubsub := h.notificacoes.Subscribe(ctx, usuarioID)
	defer pubsub.Close()

	// gorilla allows one concurrent writer; all writes go through out.
	out := make(chan interface{}, 16)
	go h.writeLoop(ctx, cancel, conn, out, wsLog)

	h.sendNaoLidas(ctx, usuarioID, out)

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.push(ctx, out, ws.NotificacaoEvent{Event: ws.EventNotificacao, Notificacao: json.RawMessage(msg.Payload)})
				h.sendNaoLidas(ctx, usuarioID, out)
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.IdleTimeout))
	})

	for {
		action, raw, err := ws.Receive(conn)
		if errors.Is(err, ws.ErrMalformed) {
			h.push(ctx, out, ws.Erro("invalid payload"))
			continue
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		h.handleAction(ctx, usuarioID, action, raw, out, wsLog)
	}
}

func (h *WSHandler) handleAction(ctx context.Context, usuarioID int, action ws.Action, raw json.RawMessage, out chan<- interface{}, wsLog zerolog.Logger) {
	switch action {
	case ws.ActionPing:
		h.push(ctx, out, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionMarcarLida:
		var req ws.MarcarLidaRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.ID <= 0 {
			h.push(ctx, out, ws.Erro("id is required"))
			return
		}
		if err := h.notificacoes.MarcarLida(ctx, usuarioID, req.ID); err != nil {
			h.push(ctx, out, ws.Erro("notificacao not found"))
			return
		}
		h.sendNaoLidas(ctx, usuarioID, out)

	case ws.ActionMarcarTodas:
		if _, err := h.notificacoes.MarcarTodasLidas(ctx, usuarioID); err != nil {
			wsLog.Error().Err(err).Msg("Mark all read failed")
			h.push(ctx, out, ws.Erro("update failed"))
			return
		}
		h.sendNaoLidas(ctx, usuarioID, out)

	case ws.ActionContarNaoLida:
		h.sendNaoLidas(ctx, usuarioID, out)

	default:
		wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
		h.push(ctx, out, ws.Erro("unknown action: "+string(action)))
	}
}

func (h *WSHandler) sendNaoLidas(ctx context.Context, usuarioID int, out chan<- interface{}) {
	n, err := h.notificacoes.ContarNaoLidas(ctx, usuarioID)
	if err != nil {
		h.log.Warn().Err(err).Int("usuario_id", usuarioID).Msg("Failed to count unread")
		return
	}
	h.push(ctx, out, ws.NaoLidasEvent{Event: ws.EventNaoLidas, Count: n})
}

func (h *WSHandler) push(ctx context.Context, out chan<- interface{}, v interface{}) {
	select {
	case out <- v:
	case <-ctx.Done():
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan interface{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(ws.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case v := <-out:
			if err := ws.Send(conn, v); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				cancel()
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := ws.Ping(conn); err != nil {
				cancel()
				conn.Close()
				return
			}
		}
	}
}
