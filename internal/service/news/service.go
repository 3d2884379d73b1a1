// Package news reads top headlines from the GNews API.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zhouzirui/violet/backend/internal/config"
)

// Service fetches headlines and renders them for speech and chat.
type Service struct {
	client *http.Client
	cfg    config.NewsConfig
}

// NewService creates a news service. A nil client uses http.DefaultClient.
func NewService(cfg config.NewsConfig, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 5
	}
	return &Service{client: client, cfg: cfg}
}

// MaxArticles is the configured headline count.
func (s *Service) MaxArticles() int { return s.cfg.MaxArticles }

// Headlines returns up to limit numbered headlines for a two-letter country
// code, or world headlines when country is empty.
func (s *Service) Headlines(ctx context.Context, country string, limit int) string {
	if limit <= 0 {
		limit = s.cfg.MaxArticles
	}
	if s.cfg.APIKey == "" {
		return "News API key is invalid or expired. Please update the API key, boss."
	}

	q := url.Values{}
	q.Set("apikey", s.cfg.APIKey)
	q.Set("lang", "en")
	q.Set("max", strconv.Itoa(limit))
	if country != "" {
		q.Set("country", country)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return failure(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return "News API key is invalid or expired. Please update the API key, boss."
	default:
		return fmt.Sprintf("Could not fetch news right now (Error %d), boss.", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(err)
	}
	return Render(country, body)
}

// Render formats a GNews response body.
func Render(country string, body []byte) string {
	articles := gjson.GetBytes(body, "articles").Array()
	if len(articles) == 0 {
		return "No news articles found at the moment, boss."
	}

	heading := "World"
	if country != "" {
		heading = strings.ToUpper(country)
	}

	lines := []string{"📰 Top Headlines - " + heading, ""}
	for i, a := range articles {
		title := a.Get("title").String()
		if title == "" {
			title = "No title"
		}
		source := a.Get("source.name").String()
		if source == "" {
			source = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title), "   📌 "+source, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func failure(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return "News request timed out, boss. Please try again."
	}
	err = stripURL(err)
	slog.Warn("news request failed", "err", err)
	return "Unable to fetch news right now, boss. Error: " + err.Error()
}

// stripURL drops the request URL, which carries the API key, from transport
// errors.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", strings.ToLower(uerr.Op), uerr.Err)
	}
	return err
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
