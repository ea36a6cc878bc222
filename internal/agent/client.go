package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/scribe/internal/logging"
	"github.com/dshills/scribe/internal/retry"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxRetries   = 3
)

// Client is an Agent backed by an agent process reachable over HTTP.
type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	pollInterval time.Duration
	retry        retry.Policy
	log          logrus.FieldLogger

	mu     sync.Mutex
	status Status
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithPollInterval sets the wait between token exchange attempts.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithBackoff sets the base delay and retry count for rate-limited requests.
func WithBackoff(base time.Duration, retries int) ClientOption {
	return func(c *Client) {
		c.retry.Base = base
		c.retry.Retries = retries
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = logging.Component(l, "agent") }
}

// NewClient returns a Client for the agent listening at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 120 * time.Second},
		pollInterval: defaultPollInterval,
		retry:        retry.Policy{Retries: defaultMaxRetries, Base: time.Second, Retryable: isRateLimited},
		log:          logging.Component(nil, "agent"),
		status:       StatusUnknown,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the last status observed from the agent.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) setStatus(s Status) {
	if s == "" {
		return
	}
	c.mu.Lock()
	prev := c.status
	c.status = s
	c.mu.Unlock()
	if prev != s {
		c.log.WithFields(logrus.Fields{"from": prev, "to": s}).Debug("agent status changed")
	}
}

// RefreshStatus queries the agent for its current status.
func (c *Client) RefreshStatus(ctx context.Context) (Status, error) {
	var resp statusResponse
	if _, err := c.do(ctx, http.MethodGet, "/v1/status", nil, &resp); err != nil {
		return c.Status(), err
	}
	c.setStatus(resp.Status)
	return resp.Status, nil
}

// RequestAuthorizationURL implements Agent.
func (c *Client) RequestAuthorizationURL(ctx context.Context) (*AuthorizationURL, error) {
	var resp authURLResponse
	if _, err := c.do(ctx, http.MethodPost, "/v1/auth/url", struct{}{}, &resp); err != nil {
		return nil, err
	}
	c.setStatus(resp.Status)
	if resp.URL == "" {
		return nil, nil
	}
	if resp.Code == "" {
		return nil, &Error{Op: "auth url", Message: "agent issued a URL without an exchange code"}
	}
	return &AuthorizationURL{URL: resp.URL, Code: resp.Code}, nil
}

// PollAuthorizationToken implements Agent. The agent answers 202 while the
// user has not yet approved; the client waits and asks again until it gets
// 200, an error, or ctx is cancelled.
func (c *Client) PollAuthorizationToken(ctx context.Context, code string) error {
	req := tokenRequest{Code: code}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var resp tokenResponse
		httpStatus, err := c.do(ctx, http.MethodPost, "/v1/auth/token", req, &resp)
		if err != nil {
			return err
		}
		c.setStatus(resp.Status)
		if httpStatus == http.StatusOK {
			c.setStatus(StatusReady)
			return nil
		}

		wait := c.pollInterval
		if resp.RetryAfterMs > 0 {
			wait = time.Duration(resp.RetryAfterMs) * time.Millisecond
		}
		c.log.WithFields(logrus.Fields{"attempt": attempt, "wait": wait}).Debug("authorization pending")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GenerateCommitMessage implements Agent.
func (c *Client) GenerateCommitMessage(ctx context.Context, chunks []string) (string, error) {
	var resp commitMessageResponse
	if _, err := c.do(ctx, http.MethodPost, "/v1/commit-message", commitMessageRequest{Diff: chunks}, &resp); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(resp.Message)
	if msg == "" {
		return "", &Error{Op: "commit message", Message: "agent returned an empty message"}
	}
	return msg, nil
}

// do sends one JSON request, retrying 429 responses with exponential
// back-off. It returns the final 2xx status code.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
	}

	var (
		status int
		body   []byte
	)
	err := c.retry.Do(ctx, func() error {
		var err error
		status, body, err = c.send(ctx, method, path, payload)
		if err == nil && status == http.StatusTooManyRequests {
			return errRateLimited
		}
		return err
	})
	if err != nil && !errors.Is(err, errRateLimited) {
		return 0, err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.setStatus(StatusUnauthenticated)
		return status, &Error{Op: opName(path), StatusCode: status, Message: errorMessage(body)}
	case status < 200 || status > 299:
		return status, &Error{Op: opName(path), StatusCode: status, Message: errorMessage(body)}
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return status, fmt.Errorf("parsing %s response: %w", opName(path), err)
		}
	}
	return status, nil
}

var errRateLimited = errors.New("rate limited")

func isRateLimited(err error) bool { return errors.Is(err, errRateLimited) }

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func opName(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, "/v1/"), "/", " ")
}

func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no response body"
	}
	return msg
}

type statusResponse struct {
	Status Status `json:"status"`
}

type authURLResponse struct {
	URL    string `json:"url"`
	Code   string `json:"code"`
	Status Status `json:"status"`
}

type tokenRequest struct {
	Code string `json:"code"`
}

type tokenResponse struct {
	Status       Status `json:"status"`
	RetryAfterMs int    `json:"retry_after_ms,omitempty"`
}

type commitMessageRequest struct {
	Diff []string `json:"diff"`
}

type commitMessageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
