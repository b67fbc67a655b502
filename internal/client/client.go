// Package client provides an HTTP and WebSocket client for the OmniMind assistant service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/omnimind/internal/metrics"
)

const (
	// DefaultBaseURL is the service's API root in the standard deployment.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultVoiceURL is the voice socket endpoint.
	DefaultVoiceURL = "ws://localhost:8000/ws/voice"

	// DefaultStatusTimeout bounds the status probe.
	DefaultStatusTimeout = 5 * time.Second

	// DefaultChatTimeout is long because chat responses may be slow.
	DefaultChatTimeout = 60 * time.Second

	// DefaultTimeout applies to history, skills and profile calls.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 8 << 20
)

// HTTPError is returned when the service answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server error: %s", e.Status)
	}
	return fmt.Sprintf("server error: %s - %s", e.Status, truncate(e.Body, maxArgLogLen))
}

// Client talks to the assistant service.
type Client struct {
	baseURL        string
	voiceURL       string
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        *metrics.Collector
	statusTimeout  time.Duration
	chatTimeout    time.Duration
	defaultTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. http://localhost:7000/api.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithVoiceURL sets the voice socket endpoint.
func WithVoiceURL(u string) Option {
	return func(c *Client) { c.voiceURL = u }
}

// WithHTTPClient replaces the HTTP client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records per-operation call timings into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithStatusTimeout overrides the status probe timeout.
func WithStatusTimeout(d time.Duration) Option {
	return func(c *Client) { c.statusTimeout = d }
}

// WithChatTimeout overrides the chat timeout.
func WithChatTimeout(d time.Duration) Option {
	return func(c *Client) { c.chatTimeout = d }
}

// WithDefaultTimeout overrides the timeout of the remaining calls.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

// New creates a new service client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		voiceURL:       DefaultVoiceURL,
		statusTimeout:  DefaultStatusTimeout,
		chatTimeout:    DefaultChatTimeout,
		defaultTimeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		// Timeouts are per call (context), so the client itself has none.
		c.httpClient = &http.Client{
			Transport: LoggingTransport(http.DefaultTransport, c.logger),
		}
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the collector passed via WithMetrics, or nil.
func (c *Client) Metrics() *metrics.Collector {
	return c.metrics
}

// do sends a request and decodes a 2xx JSON body into result.
func (c *Client) do(ctx context.Context, op, method, path string, timeout time.Duration, body, result any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordCall(op, time.Since(start), err)
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// GetStatus probes the service. It never fails: when the service cannot be
// reached, answers non-2xx, or sends garbage, it returns OfflineStatus().
func (c *Client) GetStatus(ctx context.Context) Status {
	var status Status
	if err := c.do(ctx, metrics.OpStatus, http.MethodGet, "/status", c.statusTimeout, nil, &status); err != nil {
		c.logger.Debug("status probe failed, reporting offline", "error", err)
		return OfflineStatus()
	}
	return status
}

// GetConversations fetches the service's conversation history, oldest first.
func (c *Client) GetConversations(ctx context.Context) ([]ConversationEntry, error) {
	var entries []ConversationEntry
	if err := c.do(ctx, metrics.OpConversations, http.MethodGet, "/conversations", c.defaultTimeout, nil, &entries); err != nil {
		return nil, fmt.Errorf("get conversations: %w", err)
	}
	if entries == nil {
		entries = []ConversationEntry{}
	}
	return entries, nil
}

// SendMessage posts a chat message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, message string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, metrics.OpChat, http.MethodPost, "/chat", c.chatTimeout, chatRequest{Message: message}, &resp); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &resp, nil
}

// ExecuteSkill runs a skill on the service. A logical failure is reported
// through SkillResult.Success, not through the error.
func (c *Client) ExecuteSkill(ctx context.Context, skillID, query string) (*SkillResult, error) {
	var result SkillResult
	body := skillRequest{SkillID: skillID, Query: query}
	if err := c.do(ctx, metrics.OpSkill, http.MethodPost, "/execute-skill", c.defaultTimeout, body, &result); err != nil {
		return nil, fmt.Errorf("execute skill %s: %w", skillID, err)
	}
	return &result, nil
}

// ListSkills returns the skills catalogue.
func (c *Client) ListSkills(ctx context.Context) ([]Skill, error) {
	var resp skillsResponse
	if err := c.do(ctx, metrics.OpSkills, http.MethodGet, "/skills", c.defaultTimeout, nil, &resp); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	if resp.Skills == nil {
		resp.Skills = []Skill{}
	}
	return resp.Skills, nil
}

// GetProfile fetches the user profile document.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, metrics.OpProfile, http.MethodGet, "/profile", c.defaultTimeout, nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}
