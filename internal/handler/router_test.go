package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/violet/backend/internal/intent"
	chatservice "github.com/zhouzirui/violet/backend/internal/service/chat"
	"github.com/zhouzirui/violet/backend/internal/service/events"
)

func setupRouter(hub *events.Hub) (http.Handler, *chatservice.Service) {
	session := chatservice.NewService(chatservice.DefaultHistoryLimit)
	router := intent.New(intent.Deps{
		Session: session,
		Now:     func() time.Time { return time.Date(2024, 3, 5, 17, 4, 0, 0, time.Local) },
	})
	return NewRouter(Deps{
		Assistant:      router,
		Session:        session,
		Events:         hub,
		AllowedOrigins: []string{"http://localhost:5173"},
	}), session
}

func TestRootAndHealth(t *testing.T) {
	r, _ := setupRouter(nil)

	cases := map[string]map[string]string{
		"/":       {"message": "VIOLET Voice Assistant API is running!", "status": "active"},
		"/health": {"status": "healthy", "assistant": "VIOLET"},
	}
	for path, want := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		var got map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		for k, v := range want {
			if got[k] != v {
				t.Fatalf("%s: %s = %q, want %q", path, k, got[k], v)
			}
		}
	}
}

func TestChatRoutesThroughIntentRouter(t *testing.T) {
	r, session := setupRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message":"what time is it"}`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["response"] != "It's 05:04 PM, boss!" {
		t.Fatalf("unexpected response %q", body["response"])
	}
	if got := len(session.History(context.Background())); got != 2 {
		t.Fatalf("expected 2 turns recorded, got %d", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestEventRoutesRequireHub(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/events", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without hub, got %d", resp.Code)
	}
}
