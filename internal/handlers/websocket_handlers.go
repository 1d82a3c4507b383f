package handlers

import (
	"net/http"

	"connect-chat/internal/chat"
	ws "connect-chat/internal/websocket"
	"connect-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	coord    *chat.Coordinator
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(coord *chat.Coordinator) *WebSocketHandlers {
	return &WebSocketHandlers{
		coord: coord,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
// The client introduces itself with a join event once connected;
// everything after that flows through the event dispatch.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, h.coord)
	go client.WritePump()
	go client.ReadPump()
}
