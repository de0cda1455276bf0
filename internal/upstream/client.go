// Package upstream holds the typed HTTP clients for the academy API. The
// portal owns no persistence: every stored entity (sessions, reservations,
// enrollments) is read from and mutated through these clients, and the
// upstream stays authoritative for seat caps, double-booking and time
// windows. Local checks ahead of these calls are advisory only.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

// Observer receives timing for every upstream call, keyed by endpoint label.
type Observer func(endpoint string, status int, duration time.Duration)

// Client is the shared transport for all typed academy API clients.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	logger       *zap.Logger
	observe      Observer
}

// envelope mirrors the academy API response contract.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *upstreamError  `json:"error"`
}

type upstreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient builds the shared transport from configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, observe Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		observe:      observe,
	}
}

// get issues a GET request and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, label, path string, query url.Values, out interface{}) error {
	return c.do(ctx, label, http.MethodGet, path, query, nil, out)
}

// post issues a mutation with a fresh idempotency key and decodes into out.
func (c *Client) post(ctx context.Context, label, path string, body interface{}, out interface{}) error {
	return c.do(ctx, label, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, label, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}
	if reqID := RequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if c.observe != nil {
			c.observe(label, 0, duration)
		}
		c.logger.Warn("upstream request failed",
			zap.String("endpoint", label),
			zap.String("method", method),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "academy service unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	if c.observe != nil {
		c.observe(label, resp.StatusCode, duration)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "read upstream response")
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "decode upstream response")
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.mapError(resp.StatusCode, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "decode upstream payload")
		}
	}
	return nil
}

// mapError translates upstream HTTP failures into the portal error taxonomy.
// Specific upstream codes win over the blanket status mapping so that seat
// exhaustion keeps its identity across the hop.
func (c *Client) mapError(status int, ue *upstreamError) error {
	message := ""
	code := ""
	if ue != nil {
		message = ue.Message
		code = ue.Code
	}

	if code == appErrors.ErrSeatsExhausted.Code {
		return appErrors.Clone(appErrors.ErrSeatsExhausted, message)
	}

	switch status {
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		if message == "" {
			message = fmt.Sprintf("academy service returned status %d", status)
		}
		return appErrors.Clone(appErrors.ErrUpstreamUnavailable, message)
	}
}

type contextKey string

const requestIDKey contextKey = "upstream_request_id"

// WithRequestID stamps the inbound request id onto the context so upstream
// calls can propagate it.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts a propagated request id, if any.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
