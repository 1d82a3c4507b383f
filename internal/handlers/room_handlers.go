package handlers

import (
	"encoding/json"
	"net/http"

	"connect-chat/internal/chat"
	"connect-chat/pkg/logger"
)

type RoomHandlers struct {
	coord *chat.Coordinator
}

func NewRoomHandlers(coord *chat.Coordinator) *RoomHandlers {
	return &RoomHandlers{coord: coord}
}

// ListRooms returns every room with member and message counts.
func (h *RoomHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Rooms())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response: %v", err)
	}
}
