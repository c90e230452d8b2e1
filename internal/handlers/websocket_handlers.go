package handlers

import (
	"net/http"

	ws "chat-server/internal/websocket"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandlers struct {
	registry   *ws.Registry
	dispatcher *ws.Dispatcher
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewWebSocketHandlers(registry *ws.Registry, dispatcher *ws.Dispatcher, log zerolog.Logger) *WebSocketHandlers {
	return &WebSocketHandlers{
		registry:   registry,
		dispatcher: dispatcher,
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps. The
// upgrade itself is unauthenticated; every frame carries its own token.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.registry, h.dispatcher, h.log)
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")

	go client.WritePump()
	go client.ReadPump()
}
