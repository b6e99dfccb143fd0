package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ifb/ocorrencias-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 30 * time.Second
	keepAliveInterval = 15 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams the cafeteria check-ins as Server-Sent Events.
type MonitorHandler struct {
	refeitorio *service.RefeitorioService
	log        zerolog.Logger
}

func NewMonitorHandler(refeitorio *service.RefeitorioService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		refeitorio: refeitorio,
		log:        log.With().Str("component", "monitor_handler").Logger(),
	}
}

// RefeitorioFeed godoc
// GET /api/v1/refeitorio/feed
// Sends a dashboard snapshot, then every check-in as it happens and a fresh
// snapshot every refreshInterval.
func (h *MonitorHandler) RefeitorioFeed(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	pubsub := h.refeitorio.Subscribe(reqCtx)
	defer pubsub.Close()
	ch := pubsub.Channel()

	h.sendSnapshot(c, reqCtx)

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	h.log.Info().Str("ip", c.ClientIP()).Msg("Client attached to cafeteria feed")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("ip", c.ClientIP()).Msg("Client detached from cafeteria feed")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// The payload is the JSON registro as published on check-in.
			c.Writer.Write([]byte("event: checkin\ndata: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendSnapshot(c, reqCtx)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *MonitorHandler) sendSnapshot(c *gin.Context, parentCtx context.Context) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	d, err := h.refeitorio.Dashboard(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to build cafeteria snapshot")
		return
	}
	c.SSEvent("snapshot", d)
	c.Writer.Flush()
}
