package handlers

import (
	"net/http"

	"connect-chat/internal/chat"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the websocket endpoint and the small HTTP surface
// around the coordinator.
func NewRouter(coord *chat.Coordinator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	wsHandlers := NewWebSocketHandlers(coord)
	roomHandlers := NewRoomHandlers(coord)

	r.Get("/ws", wsHandlers.HandleWebSocket)
	r.Get("/rooms", roomHandlers.ListRooms)
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleHealth reports process liveness only.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
