// Package gateway is the HTTP boundary to the evaluation service. It applies the request
// ceiling, carries credentials, and normalizes every failure into *Error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/rightname-go/internal/ports"
)

const (
	// DefaultTimeout covers a full synchronous evaluation.
	DefaultTimeout = 5 * time.Minute
	maxBodyBytes   = 16 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Store persists session cookies across processes. Optional.
	Store  ports.DurableStore
	Client *http.Client
	Logger *slog.Logger
}

// Client issues requests against the evaluation service. It never retries.
type Client struct {
	base      *url.URL
	timeout   time.Duration
	userAgent string
	http      *http.Client
	jar       *persistentJar
	logger    *slog.Logger
}

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
}

// New builds a client. Cookies previously saved in cfg.Store are loaded eagerly.
func New(ctx context.Context, cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := newPersistentJar(base, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	jar.load(ctx)

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{}
	}
	// Copy so the caller's client keeps its own jar.
	withJar := *hc
	withJar.Jar = jar

	return &Client{
		base:      base,
		timeout:   timeout,
		userAgent: fallbackString(cfg.UserAgent, "rightname-go"),
		http:      &withJar,
		jar:       jar,
		logger:    logger,
	}, nil
}

func fallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.base.String() }

// Send performs req and returns the response body of a 2xx answer.
func (c *Client) Send(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	ge := &Error{Method: method, Path: req.Path}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		ge.Kind = KindNetwork
		ge.Cause = err
		return nil, ge
	}

	ctx, cancel := context.WithTimeout(httpReq.Context(), c.timeout)
	defer cancel()
	httpReq = httpReq.WithContext(ctx)

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		ge.Kind = classify(err)
		ge.Cause = err
		c.logger.DebugContext(ctx, "api request failed",
			"method", method, "path", req.Path, "request_id", requestID,
			"kind", string(ge.Kind), "error", err)
		return nil, ge
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.jar.save(ctx)
	c.logger.DebugContext(ctx, "api request",
		"method", method, "path", req.Path, "request_id", requestID,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		ge.Kind = classify(err)
		ge.Status = resp.StatusCode
		ge.Cause = err
		return nil, ge
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ge.Kind = KindServer
		ge.Status = resp.StatusCode
		ge.Body = body
		ge.Reason = extractReason(body)
		return nil, ge
	}
	return body, nil
}

// JSON sends in as the request body and decodes a 2xx response into out.
// Either may be nil.
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	body, err := c.Send(ctx, Request{Method: method, Path: path, Body: in})
	if err != nil {
		return err
	}
	return Decode(method, path, body, out)
}

// Decode unmarshals a successful body into out, reporting a KindMalformed error on failure.
func Decode(method, path string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &Error{Kind: KindMalformed, Method: method, Path: path, Cause: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindMalformed, Method: method, Path: path, Body: body, Cause: err}
	}
	return nil
}

// ClearCredentials drops every stored cookie, locally and in the durable store.
func (c *Client) ClearCredentials(ctx context.Context) error {
	return c.jar.reset(ctx)
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	return httpReq, nil
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
