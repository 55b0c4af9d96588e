package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

const maxBodyBytes = 1 << 20

// Observer receives the outcome of every call; kind is empty on success
type Observer func(operation string, kind domain.ErrorKind, elapsed time.Duration)

// Envelope is the common response wrapper of the identity and billing services
type Envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Request describes one call
type Request struct {
	Operation string
	Method    string
	Path      string
	Body      any
	// Bearer overrides the stored access token when set
	Bearer string
	// Classify maps an HTTP status to an operation-specific kind; ok=false falls back to the default mapping
	Classify func(status int) (domain.ErrorKind, bool)
	// RejectKind is used when the server answers 2xx with success=false
	RejectKind domain.ErrorKind
}

// Client issues JSON requests against one base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.TokenReader
	logger     *zap.Logger
	observer   Observer
}

// Option configures a Client
type Option func(*Client)

// WithObserver registers a call observer
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client. tokens may be nil for unauthenticated services.
func New(baseURL string, timeout time.Duration, tokens domain.TokenReader, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request and decodes a successful body into out (which may be nil).
// Every failure is returned as a *domain.Error.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	start := time.Now()
	err := c.do(ctx, r, out)
	elapsed := time.Since(start)

	kind := domain.KindOf(err)
	if c.observer != nil {
		c.observer(r.Operation, kind, elapsed)
	}
	if err != nil {
		c.logger.Warn("api call failed",
			zap.String("operation", r.Operation),
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return err
	}
	c.logger.Debug("api call succeeded",
		zap.String("operation", r.Operation),
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Duration("elapsed", elapsed))
	return nil
}

func (c *Client) do(ctx context.Context, r Request, out any) error {
	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return domain.WrapError(domain.KindValidation, "request could not be encoded", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, body)
	if err != nil {
		return domain.WrapError(domain.KindValidation, "request could not be built", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(r); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindNetwork, networkMessage(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.WrapError(domain.KindNetwork, "response could not be read", err)
	}

	var env Envelope
	// Non-JSON bodies (proxies, HTML error pages) still get classified by status
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := classify(r, resp.StatusCode)
		e := &domain.Error{
			Kind:    kind,
			Message: messageOf(&env, resp.StatusCode),
			Status:  resp.StatusCode,
		}
		if kind == domain.KindRateLimited {
			e.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
		}
		return e
	}

	if env.Success != nil && !*env.Success {
		kind := r.RejectKind
		if kind == "" {
			kind = domain.KindServer
		}
		return &domain.Error{Kind: kind, Message: messageOf(&env, resp.StatusCode), Status: resp.StatusCode}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.WrapError(domain.KindServer, "unexpected response from server", err)
	}
	return nil
}

func (c *Client) bearer(r Request) string {
	if r.Bearer != "" {
		return r.Bearer
	}
	if c.tokens == nil {
		return ""
	}
	pair, ok := c.tokens.Get()
	if !ok {
		return ""
	}
	return pair.AccessToken
}

func classify(r Request, status int) domain.ErrorKind {
	if r.Classify != nil {
		if kind, ok := r.Classify(status); ok {
			return kind
		}
	}
	return DefaultKind(status)
}

// DefaultKind maps an HTTP status to the error taxonomy
func DefaultKind(status int) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.KindUnauthenticated
	case status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusConflict:
		return domain.KindConflict
	case status == http.StatusTooManyRequests:
		return domain.KindRateLimited
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domain.KindValidation
	default:
		return domain.KindServer
	}
}

func messageOf(env *Envelope, status int) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != "" {
		return env.Error
	}
	return http.StatusText(status)
}

func networkMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return "the request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "the request was cancelled"
	}
	return "the server could not be reached"
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// DecodeData unmarshals the envelope's data field into out
func DecodeData(env *Envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return domain.NewError(domain.KindServer, "response carried no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.WrapError(domain.KindServer, "unexpected response from server", err)
	}
	return nil
}
