// Package api is the outbound REST transport for the storefront backend.
// Every endpoint wraps its payload in a {"data": ...} envelope; bare-array
// responses are rejected.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"keyfront/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	tenantHeader = "X-Tenant"

	// Client-side pacing, matching the backend's frontend-tier quota.
	paceLimit = rate.Limit(20)
	paceBurst = 40

	retryDelay = 100 * time.Millisecond
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	tenant     string
	tokens     TokenSource
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[response]
	pacer      *rate.Limiter
	retries    int
}

type Options struct {
	BaseURL string
	Tenant  string
	Tokens  TokenSource
	Timeout time.Duration
	// Retries is the number of extra attempts for GETs after a transport
	// failure. Mutations are never retried.
	Retries int
}

type response struct {
	status int
	body   []byte
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		logger.L().Warn("API base URL is empty")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: 30 * time.Second,
	})

	return &Client{
		baseURL:    opts.BaseURL,
		tenant:     opts.Tenant,
		tokens:     opts.Tokens,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker:    breaker,
		pacer:      rate.NewLimiter(paceLimit, paceBurst),
		retries:    opts.Retries,
	}
}

// Get fetches path with the given query string and decodes the envelope
// payload into out. Transport failures and 5xx responses are retried a fixed
// number of times before surfacing.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		body, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err == nil {
			return decodeEnvelope(body, out)
		}

		lastErr = err
		if !retryable(err) {
			return err
		}
	}

	return lastErr
}

// Post sends payload to path and decodes the envelope payload into out.
// Mutations get exactly one attempt; the caller decides how to recover.
func (c *Client) Post(ctx context.Context, path string, payload any, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return decodeEnvelope(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal request payload", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tenant != "" {
		req.Header.Set(tenantHeader, c.tenant)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	// The breaker only counts transport failures; an HTTP response of any
	// status is a healthy backend.
	res, err := c.breaker.Execute(func() (response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return response{}, err
		}
		defer resp.Body.Close()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return response{}, err
		}
		return response{status: resp.StatusCode, body: bodyBytes}, nil
	})
	if err != nil {
		log.Error("Request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case res.status >= 200 && res.status < 300:
		return res.body, nil
	case res.status == http.StatusUnauthorized:
		log.Warn("Unauthorized response")
		return nil, ErrUnauthorized
	case res.status >= 500:
		log.Error("Backend returned server error",
			zap.Int("status", res.status),
			zap.ByteString("response", snippet(res.body)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, res.status)
	default:
		log.Error("Backend returned non-success status",
			zap.Int("status", res.status),
			zap.ByteString("response", snippet(res.body)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, res.status)
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func decodeEnvelope(body []byte, out any) error {
	if out == nil {
		return nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Data == nil {
		return ErrBadEnvelope
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return nil
}

func snippet(body []byte) []byte {
	const max = 512
	if len(body) > max {
		return body[:max]
	}
	return body
}
