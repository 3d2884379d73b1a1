package stream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/violet/backend/internal/service/events"
)

func setupRouter(hub *events.Hub, heartbeat time.Duration) *chi.Mux {
	r := chi.NewRouter()
	New(hub, heartbeat).RegisterRoutes(r)
	return r
}

func openStream(t *testing.T, url string) (*bufio.Reader, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return bufio.NewReader(resp.Body), func() {
		cancel()
		resp.Body.Close()
	}
}

func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var sb strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			return sb.String()
		}
		sb.WriteString(line)
	}
}

func TestEventsRelaysPublishedEvent(t *testing.T) {
	hub := events.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(setupRouter(hub, time.Hour))
	defer srv.Close()

	reader, closeStream := openStream(t, srv.URL)
	defer closeStream()

	assert.Equal(t, ": connected\n", readFrame(t, reader))
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(events.New(events.ClapDetected, "Three claps detected"))

	frame := readFrame(t, reader)
	assert.True(t, strings.HasPrefix(frame, "event: clap_detected\ndata: {"), frame)
	assert.Contains(t, frame, `"message":"Three claps detected"`)
}

func TestEventsSendsHeartbeat(t *testing.T) {
	hub := events.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(setupRouter(hub, 20*time.Millisecond))
	defer srv.Close()

	reader, closeStream := openStream(t, srv.URL)
	defer closeStream()

	readFrame(t, reader)
	assert.Equal(t, ": heartbeat\n", readFrame(t, reader))
}

func TestEventsUnsubscribesOnDisconnect(t *testing.T) {
	hub := events.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(setupRouter(hub, time.Hour))
	defer srv.Close()

	reader, closeStream := openStream(t, srv.URL)
	readFrame(t, reader)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	closeStream()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
