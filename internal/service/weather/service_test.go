package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/violet/backend/internal/config"
)

func newTestService(t *testing.T, mux *http.ServeMux, timeout time.Duration) *Service {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewService(config.WeatherConfig{
		DefaultCity:  "New York",
		GeocodingURL: srv.URL + "/geo",
		ForecastURL:  srv.URL + "/forecast",
		FallbackURL:  srv.URL + "/wttr",
		Timeout:      timeout,
	}, srv.Client())
}

func TestReportOpenMeteo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chennai", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"results":[{"name":"Chennai","latitude":13.08,"longitude":80.27}]}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "13.08", r.URL.Query().Get("latitude"))
		assert.Equal(t, "kmh", r.URL.Query().Get("wind_speed_unit"))
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":31.4,"weather_code":2,"relative_humidity_2m":70,"wind_speed_10m":12.5}}`))
	})

	got := newTestService(t, mux, time.Second).Report(context.Background(), "chennai")
	assert.Equal(t, "Weather in Chennai:\n🌡️ 31.4°C (Partly cloudy)\n💧 Humidity: 70%\n💨 Wind: 12.5 km/h", got)
}

func TestReportDefaultCity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "New York", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"results":[{"name":"New York","latitude":40.7,"longitude":-74}]}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":5,"weather_code":0,"relative_humidity_2m":40,"wind_speed_10m":3}}`))
	})

	got := newTestService(t, mux, time.Second).Report(context.Background(), "")
	assert.True(t, strings.HasPrefix(got, "Weather in New York:\n🌡️ 5°C (Clear sky)"), got)
}

func TestReportFallsBackWhenCityUnknown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/wttr/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wttr/atlantis", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte("atlantis: ☀️ +20°C"))
	})

	got := newTestService(t, mux, time.Second).Report(context.Background(), "atlantis")
	assert.Equal(t, "atlantis: ☀️ +20°C", got)
}

func TestReportFallbackStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/wttr/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	got := newTestService(t, mux, time.Second).Report(context.Background(), "paris")
	assert.Equal(t, "Could not fetch weather, boss", got)
}

func TestReportTimeout(t *testing.T) {
	mux := http.NewServeMux()
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}
	mux.HandleFunc("/geo", slow)
	mux.HandleFunc("/wttr/", slow)

	got := newTestService(t, mux, 20*time.Millisecond).Report(context.Background(), "paris")
	assert.Equal(t, "Unable to get weather information right now, boss", got)
}

func TestDescribe(t *testing.T) {
	cases := map[int]string{
		0: "Clear sky", 3: "Partly cloudy", 48: "Foggy", 53: "Drizzle", 65: "Rain",
		71: "Snow", 82: "Rain showers", 99: "Thunderstorm", 4: "Clear sky",
	}
	for code, want := range cases {
		assert.Equal(t, want, Describe(code), "code %d", code)
	}
}
