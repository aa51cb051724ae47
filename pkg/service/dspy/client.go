// Package dspy is a client for the auxiliary DSPy tutoring service, which
// wraps a prompt-optimization framework over the hosted LLM API. The service
// is optional: when it is down or disabled, chat falls back to direct
// generation.
package dspy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	Message         string         `json:"message"`
	ConversationID  string         `json:"conversation_id,omitempty"`
	UserID          string         `json:"user_id,omitempty"`
	Subject         string         `json:"subject,omitempty"`
	DifficultyLevel string         `json:"difficulty_level,omitempty"`
	Context         map[string]any `json:"context,omitempty"`
}

// ChatResponse is the response body of POST /chat
type ChatResponse struct {
	Response       string   `json:"response"`
	Explanation    string   `json:"explanation,omitempty"`
	NextSteps      []string `json:"next_steps,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Sources        []string `json:"sources,omitempty"`
	ConversationID string   `json:"conversation_id"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Client calls the DSPy service over HTTP. The health verdict is cached for
// healthTTL (default 5s): within the TTL the cached verdict is reused, so a
// dead service is probed at most once per interval instead of per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	healthTTL  time.Duration

	mu        sync.Mutex
	lastProbe time.Time
	healthy   bool
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithHealthTTL(d time.Duration) Option {
	return func(c *Client) {
		c.healthTTL = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a DSPy service client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		healthTTL:  5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Chat sends a tutoring request to the enhanced service
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "dspy chat request failed", goerr.T(model.ErrTagProvider))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, goerr.New("dspy chat returned non-2xx status",
			goerr.V("status", httpResp.StatusCode),
			goerr.V("body", string(snippet)),
			goerr.T(model.ErrTagProvider))
	}

	var resp ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode dspy chat response", goerr.T(model.ErrTagProvider))
	}
	if resp.Response == "" {
		return nil, goerr.New("dspy chat response is empty", goerr.T(model.ErrTagProvider))
	}

	return &resp, nil
}

// Healthy reports whether the service answered its last health probe.
// Both success and failure are cached for the TTL.
func (c *Client) Healthy(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastProbe) < c.healthTTL {
		return c.healthy
	}

	c.healthy = c.probe(ctx)
	c.lastProbe = time.Now()
	return c.healthy
}

func (c *Client) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.From(ctx).Debug("dspy health probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}

	switch strings.ToLower(health.Status) {
	case "healthy", "ok":
		return true
	default:
		return false
	}
}
