package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tickerscout/tickerscout/internal/metrics"
)

// ErrRateLimited marks a fetch rejected with HTTP 429. The client retries
// once after a cooldown; callers only see this error once the retry budget
// is spent.
var ErrRateLimited = errors.New("reddit: rate limited")

// HTTPError wraps a non-2xx response that is not a rate limit.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("reddit: unexpected status %s: %s", e.Status, e.Body)
}

// maxErrorBodyBytes caps the response excerpt captured into an HTTPError.
const maxErrorBodyBytes = 1024

// ClientConfig controls the HTTP client behavior.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	// Cooldown is the fixed wait after a 429 before the single retry.
	Cooldown time.Duration
	// MaxRetries bounds retries after rate limiting. Zero disables the
	// retry entirely, surfacing the first 429 as a hard failure.
	MaxRetries int
	// QPS enables a client-side politeness limiter when positive. This is
	// distinct from the traversal's concurrency permits: it paces request
	// starts rather than bounding how many are in flight.
	QPS   float64
	Burst int
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.UserAgent == "" {
		c.UserAgent = "tickerscout/1.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 60 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}

// Client fetches Reddit JSON endpoints with a descriptive User-Agent (the
// API rejects default agents) and a bounded rate-limit retry.
type Client struct {
	http      *http.Client
	userAgent string
	cooldown  time.Duration
	retries   int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst)
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		cooldown:  cfg.Cooldown,
		retries:   cfg.MaxRetries,
		limiter:   limiter,
		logger:    logger,
	}
}

// Fetch performs one GET and returns the raw body. A 429 triggers a full
// cooldown wait and one more attempt per retry in the budget; exhausting the
// budget surfaces the rate-limit error like any other hard failure.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrRateLimited) || attempt >= c.retries {
			return nil, err
		}

		metrics.IncCooldowns()
		c.logger.Warn("rate limited, cooling down",
			zap.String("url", url),
			zap.Duration("cooldown", c.cooldown),
			zap.Int("attempt", attempt+1))
		if err := c.pause(ctx, c.cooldown); err != nil {
			return nil, err
		}
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("GET %s: %w", url, ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(excerpt),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// pause waits the full delay or until the context ends.
func (c *Client) pause(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
