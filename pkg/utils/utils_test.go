package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusBadRequest, "Message cannot be empty")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got, want := resp.Body.String(), "{\"error\":\"Message cannot be empty\"}\n"; got != want {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestSendSSEEvent(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)

	if err := SendSSEEvent(resp, resp, "clap_detected", map[string]string{"type": "clap_detected"}); err != nil {
		t.Fatalf("SendSSEEvent err: %v", err)
	}
	if err := SendSSEComment(resp, resp, "ping"); err != nil {
		t.Fatalf("SendSSEComment err: %v", err)
	}

	want := "event: clap_detected\ndata: {\"type\":\"clap_detected\"}\n\n: ping\n\n"
	if got := resp.Body.String(); got != want {
		t.Fatalf("unexpected stream %q", got)
	}
	if !resp.Flushed {
		t.Fatal("expected flush")
	}
	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
}
