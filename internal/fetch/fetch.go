// Package fetch retrieves raw catalog pages over HTTP.
//
// Every request carries a freshly randomized User-Agent, and every call is
// followed by a mandatory cool-down so the pipeline never hammers the
// remote source. The cool-down is a throttle, not a retry backoff: there
// are no automatic retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/corpix/uarand"

	"github.com/starford/berkana/internal/apperr"
)

// Fetcher retrieves the raw markup behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTP is the production Fetcher.
type HTTP struct {
	client *http.Client
	wait   time.Duration
	logger *slog.Logger
}

// NewHTTP creates an HTTP fetcher that sleeps wait after every call.
func NewHTTP(wait, timeout time.Duration, logger *slog.Logger) *HTTP {
	return &HTTP{
		client: &http.Client{Timeout: timeout},
		wait:   wait,
		logger: logger,
	}
}

// Fetch issues one GET for url and returns the response body.
//
// A non-success status degrades to apperr.ErrUnavailable with a warning;
// a transport-level failure is returned as-is (the caller decides whether
// to abort the run). The cool-down applies regardless of outcome.
func (h *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	defer h.cooldown(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", uarand.GetRandom())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Warn("fetch: remote source refused request",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: %s returned %d", apperr.ErrUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch: read body of %s: %w", url, err)
	}

	h.logger.Debug("fetch: page retrieved",
		slog.String("url", url),
		slog.Int("bytes", len(body)))
	return string(body), nil
}

// cooldown blocks for the configured wait time or until ctx is cancelled.
func (h *HTTP) cooldown(ctx context.Context) {
	if h.wait <= 0 {
		return
	}
	t := time.NewTimer(h.wait)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
