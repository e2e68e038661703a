// Package backend is the HTTP client of the graph query API. It implements
// ports.GraphBackend and ports.ImageFetcher.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"braingraph/application/ports"
	"braingraph/pkg/common"
	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/observability"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 32 << 20
)

// BreakerConfig holds configuration for the circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests have been seen
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "graph-backend",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Config configures the client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Breaker   BreakerConfig
}

// Client talks to the graph backend over HTTP
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
	metrics   *observability.Collector
	tracer    *observability.Tracer
}

// NewClient creates a backend client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger, metrics *observability.Collector, tracer *observability.Tracer) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid backend url %q", cfg.BaseURL))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	bc := cfg.Breaker
	if bc.Name == "" {
		bc = DefaultBreakerConfig()
	}

	c := &Client{
		base:      base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: countsAsSuccess,
	})
	return c, nil
}

// countsAsSuccess keeps caller-side failures out of the breaker's statistics:
// cancellations and 4xx answers say nothing about backend health
func countsAsSuccess(err error) bool {
	if err == nil || pkgerrors.IsCancelled(err) {
		return true
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		if status, ok := appErr.Details["status"].(int); ok && status >= 400 && status < 500 {
			return true
		}
	}
	return false
}

// BreakerState returns the circuit breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// get performs one GET against path and returns the body
func (c *Client) get(ctx context.Context, op, path string, query url.Values) (body []byte, err error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.StartSpan(ctx, "backend."+op, spanAttrs(op, path)...)
		defer func() {
			if err != nil && !pkgerrors.IsCancelled(err) {
				observability.RecordError(span, err)
			}
			span.End()
		}()
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, op, path, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.observe(op, "rejected")
			return nil, pkgerrors.NewUnavailableError(c.breaker.Name(), err)
		}
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) do(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("failed to build %s request", op)).WithCause(err)
	}
	_, requestID := common.EnsureRequestID(ctx)
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json, image/*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, op, requestID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, op, requestID, err)
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(op, strconv.Itoa(resp.StatusCode))
		c.logger.Warn("backend returned an error status", fields...)
		return nil, pkgerrors.NewStatusError(op, resp.StatusCode)
	}

	c.observe(op, "ok")
	c.logger.Debug("backend request completed", fields...)
	return body, nil
}

func (c *Client) transportError(ctx context.Context, op, requestID string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		c.observe(op, "cancelled")
		return pkgerrors.NewCancelledError(op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.observe(op, "timeout")
	} else {
		c.observe(op, "transport")
	}
	c.logger.Warn("backend request failed",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Error(err),
	)
	return pkgerrors.NewNetworkError(fmt.Sprintf("%s request failed", op), err)
}

func (c *Client) observe(op, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.BackendRequests.WithLabelValues(op, status).Inc()
}

var _ ports.GraphBackend = (*Client)(nil)
var _ ports.ImageFetcher = (*Client)(nil)

func spanAttrs(op, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("backend.op", op),
		attribute.String("http.route", path),
	}
}
