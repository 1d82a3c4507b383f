package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"connect-chat/internal/chat"
	"connect-chat/internal/models"
)

func setupRouter() http.Handler {
	coord := chat.NewCoordinator(chat.Options{})
	return NewRouter(coord)
}

func TestHealthz(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestListRooms(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var rooms []models.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "general" {
		t.Fatalf("expected only the default room, got %v", rooms)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
