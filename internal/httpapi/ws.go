package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/infinity-apps/workspace/internal/bus"
)

const wsWriteTimeout = 10 * time.Second

// signalFrame is the wire shape of a pushed signal.
type signalFrame struct {
	Signal  string          `json:"signal"`
	Payload bus.OpenRequest `json:"payload"`
}

// setupWebSocket registers the /ws/signals endpoint. Each connection gets its
// own subscription to the signal bus; frames a slow client cannot drain are
// dropped at the bus, never here.
func (s *Server) setupWebSocket() {
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	wsConfig := websocket.Config{}
	if s.config.CORSOrigins != "" {
		wsConfig.Origins = strings.Split(s.config.CORSOrigins, ",")
	}

	s.app.Get("/ws/signals", websocket.New(s.handlers.StreamSignals, wsConfig))
}

// StreamSignals forwards calendar-open signals to a connected client until it
// disconnects.
func (h *Handlers) StreamSignals(c *websocket.Conn) {
	logger := h.logger.With().Str("stream", "signals").Logger()

	signals, cancel := h.signals.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger.Debug().Str("remote", c.RemoteAddr().String()).Msg("signal stream opened")

	for {
		select {
		case req, ok := <-signals:
			if !ok {
				return
			}
			frame := signalFrame{Signal: bus.SignalCalendarOpen, Payload: req}
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteJSON(frame); err != nil {
				logger.Debug().Err(err).Msg("signal stream write failed")
				return
			}
		case <-closed:
			logger.Debug().Msg("signal stream closed by client")
			return
		}
	}
}
