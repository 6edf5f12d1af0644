// Package nflverse downloads the public nflverse release datasets (play-by-play,
// rosters, schedules, injuries) that feed the warehouse.
//
// Downloads are rate limited via a token bucket limiter and retried with
// exponential backoff — the release host throttles bursts.
package nflverse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for all nflverse datasets.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an nflverse download client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Download fetches one dataset for a season into destPath. The file is
// written to a temp sibling and renamed so a partial download never
// masquerades as a complete raw file.
func (c *Client) Download(ctx context.Context, ds Dataset, season int, destPath string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	url := c.baseURL + "/" + ds.Path(season)

	op := func() error {
		return c.fetchToFile(ctx, url, destPath)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Download failed, retrying", "url", url, "error", err, "backoff", wait.Round(time.Second))
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("download %s season %d: %w", ds, season, err)
	}

	c.logger.Info("Downloaded dataset", "dataset", ds, "season", season, "path", destPath)
	return nil
}

func (c *Client) fetchToFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		// Missing season releases never appear on retry.
		return backoff.Permanent(fmt.Errorf("%s returned 404", url))
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("%s returned %d", url, resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return backoff.Permanent(fmt.Errorf("create raw dir: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return backoff.Permanent(fmt.Errorf("rename into place: %w", err))
	}
	return nil
}
