// Package weather reports current conditions for a city using Open-Meteo,
// falling back to wttr.in's one-line format.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zhouzirui/violet/backend/internal/config"
)

var errCityNotFound = errors.New("city not found")

// Service fetches weather reports. It never returns an error to callers;
// every failure is rendered as a spoken apology.
type Service struct {
	client *http.Client
	cfg    config.WeatherConfig
}

// NewService creates a weather service. A nil client uses http.DefaultClient.
func NewService(cfg config.WeatherConfig, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Service{client: client, cfg: cfg}
}

// DefaultCity is used when the request names no city.
func (s *Service) DefaultCity() string { return s.cfg.DefaultCity }

// Report returns a multi-line report for city, or the fallback one-liner when
// Open-Meteo cannot resolve it.
func (s *Service) Report(ctx context.Context, city string) string {
	if strings.TrimSpace(city) == "" {
		city = s.cfg.DefaultCity
	}

	report, err := s.openMeteo(ctx, city)
	if err == nil {
		return report
	}
	slog.Debug("open-meteo lookup failed, using fallback", "city", city, "err", err)

	return s.fallback(ctx, city)
}

type location struct {
	lat, lon float64
	name     string
}

func (s *Service) openMeteo(ctx context.Context, city string) (string, error) {
	loc, err := s.geocode(ctx, city)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprint(loc.lat))
	q.Set("longitude", fmt.Sprint(loc.lon))
	q.Set("current", "temperature_2m,weather_code,relative_humidity_2m,wind_speed_10m")
	q.Set("temperature_unit", "celsius")
	q.Set("wind_speed_unit", "kmh")

	body, err := s.get(ctx, s.cfg.ForecastURL+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("forecast: %w", err)
	}

	current := gjson.GetBytes(body, "current")
	if !current.Exists() {
		return "", errors.New("forecast: missing current block")
	}

	return fmt.Sprintf("Weather in %s:\n🌡️ %s°C (%s)\n💧 Humidity: %s%%\n💨 Wind: %s km/h",
		loc.name,
		rawNumber(current.Get("temperature_2m")),
		Describe(int(current.Get("weather_code").Int())),
		rawNumber(current.Get("relative_humidity_2m")),
		rawNumber(current.Get("wind_speed_10m")),
	), nil
}

func (s *Service) geocode(ctx context.Context, city string) (location, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")

	body, err := s.get(ctx, s.cfg.GeocodingURL+"?"+q.Encode())
	if err != nil {
		return location{}, fmt.Errorf("geocode: %w", err)
	}

	first := gjson.GetBytes(body, "results.0")
	if !first.Exists() {
		return location{}, errCityNotFound
	}
	return location{
		lat:  first.Get("latitude").Float(),
		lon:  first.Get("longitude").Float(),
		name: first.Get("name").String(),
	}, nil
}

func (s *Service) fallback(ctx context.Context, city string) string {
	endpoint := strings.TrimRight(s.cfg.FallbackURL, "/") + "/" + url.PathEscape(city) + "?format=3"

	body, err := s.get(ctx, endpoint)
	var status statusError
	switch {
	case err == nil:
		return string(body)
	case errors.As(err, &status):
		return "Could not fetch weather, boss"
	default:
		slog.Warn("weather fallback failed", "city", city, "err", err)
		return "Unable to get weather information right now, boss"
	}
}

type statusError int

func (e statusError) Error() string { return fmt.Sprintf("unexpected status %d", int(e)) }

func (s *Service) get(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// rawNumber keeps the number exactly as the API wrote it.
func rawNumber(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null {
		return "?"
	}
	if r.Type == gjson.Number {
		return r.Raw
	}
	return r.String()
}

// Describe maps a WMO weather interpretation code to a short description.
func Describe(code int) string {
	switch code {
	case 1, 2, 3:
		return "Partly cloudy"
	case 45, 48:
		return "Foggy"
	case 51, 53, 55:
		return "Drizzle"
	case 61, 63, 65:
		return "Rain"
	case 71, 73, 75:
		return "Snow"
	case 80, 81, 82:
		return "Rain showers"
	case 95, 96, 99:
		return "Thunderstorm"
	default:
		return "Clear sky"
	}
}
