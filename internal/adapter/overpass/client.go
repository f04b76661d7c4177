// Package overpass implements the upstream POI fetcher against the
// OpenStreetMap Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/observability"
)

// Client issues bounded-region queries against an Overpass endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics

	maxAttempts    int
	initialBackoff time.Duration
}

// NewClient creates an Overpass client. maxAttempts bounds the total number
// of tries for transient failures; initialBackoff is the first retry delay,
// doubled on each subsequent attempt.
func NewClient(endpoint string, timeout time.Duration, maxAttempts int, initialBackoff time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		metrics:        metrics,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
	}
}

// Fetch executes the query and returns the raw elements in upstream order.
// Transient transport failures are retried with exponential backoff up to the
// configured attempt budget; a malformed response is fatal and never retried.
// An empty result is not an error.
func (c *Client) Fetch(ctx context.Context, query Query) ([]domain.RawElement, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ql := query.QL()
	c.logger.Debug("overpass query built", "bytes", len(ql))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.RandomizationFactor = 0 // keep retry timing predictable
	bo.Multiplier = 2

	var elements []domain.RawElement
	attempt := 0

	op := func() error {
		attempt++
		start := time.Now()
		els, err := c.doRequest(ctx, ql)
		if c.metrics != nil {
			c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			return err
		}
		elements = els
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if c.metrics != nil {
			c.metrics.FetchRetries.Inc()
		}
		c.logger.Warn("overpass request failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("overpass fetch after %d attempt(s): %w", attempt, err)
	}

	c.logger.Info("overpass fetch complete", "elements", len(elements), "attempts", attempt)
	return elements, nil
}

func (c *Client) doRequest(ctx context.Context, ql string) ([]domain.RawElement, error) {
	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure: retryable.
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
		if retryableStatus(resp.StatusCode) {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var payload struct {
		Elements []domain.RawElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// A response that isn't valid JSON is a data-correctness risk,
		// not a transient fault. Abort rather than guess.
		return nil, backoff.Permanent(&domain.UpstreamFormatError{Reason: "decode response", Err: err})
	}

	return payload.Elements, nil
}

// retryableStatus reports whether a non-200 status is worth another attempt.
// Overpass signals overload with 429 and 504 under heavy query load.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
