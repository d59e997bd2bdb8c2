// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle is a client for an external generative-language API (the
// Gemini generateContent REST endpoint). It is rate limited and retries
// throttled requests; callers treat every error as a reason to degrade.
package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pubscope/internal/httputil"
	"github.com/pdiddy/pubscope/pkg/types"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-1.5-flash"

	// DefaultRequestsPerSecond throttles outgoing calls.
	DefaultRequestsPerSecond = 2.0

	// DefaultMaxRetries bounds retries of throttled requests.
	DefaultMaxRetries = 3

	retryBaseDelay = time.Second
)

var (
	// ErrNoCredentials is returned when no API key is configured.
	ErrNoCredentials = errors.New("oracle api key not configured")

	// ErrEmptyResponse is returned when a response carries no content.
	ErrEmptyResponse = errors.New("oracle returned no content")
)

// Request is one generation call.
type Request struct {
	Prompt string

	// Temperature and MaxOutputTokens override the client defaults when set.
	Temperature     *float64
	MaxOutputTokens int

	// ResponseModalities such as "TEXT" or "IMAGE". Empty means text only.
	ResponseModalities []string
}

// Part is one piece of generated content.
type Part struct {
	Text     string
	MimeType string
	Data     []byte
}

// Response is the content of the first candidate.
type Response struct {
	// Text concatenates every text part.
	Text  string
	Parts []Part
}

// Generator produces content for a prompt. *Client implements it; tests and
// offline runs substitute their own.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Client calls the generateContent endpoint.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	apiKey      string
	baseURL     string
	model       string
	userAgent   string
	temperature float64
	maxTokens   int
	maxRetries  int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL sets the API root (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model identifier.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithRateLimit sets the sustained request rate. Non-positive disables
// throttling.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxRetries sets the retry budget for throttled requests.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithGeneration sets default sampling parameters.
func WithGeneration(temperature float64, maxOutputTokens int) ClientOption {
	return func(c *Client) {
		c.temperature = temperature
		c.maxTokens = maxOutputTokens
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger for retry diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client. Without WithAPIKey every call fails with
// ErrNoCredentials.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:      zap.NewNop(),
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		temperature: 0.4,
		maxTokens:   1024,
		maxRetries:  DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig builds a client from configuration.
func FromConfig(cfg types.OracleConfig, logger *zap.Logger) *Client {
	opts := []ClientOption{
		WithAPIKey(cfg.APIKey),
		WithLogger(logger),
		WithUserAgent(cfg.UserAgent),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, WithModel(cfg.Model))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	if cfg.RequestsPerSecond != 0 {
		opts = append(opts, WithRateLimit(cfg.RequestsPerSecond))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, WithGeneration(cfg.Temperature, cfg.MaxOutputTokens))
	}
	return NewClient(opts...)
}

// Available reports whether the client has credentials.
func (c *Client) Available() bool { return c.apiKey != "" }

// Model returns the model identifier.
func (c *Client) Model() string { return c.model }

// Generate sends req and returns the first candidate's content.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, ErrNoCredentials
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.Do(ctx, c.httpClient, httpReq, httputil.Policy{
		MaxRetries: c.maxRetries,
		BaseDelay:  retryBaseDelay,
		Logger:     c.logger,
	})
	if err != nil {
		return Response{}, fmt.Errorf("calling oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, statusError(resp)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Response{}, fmt.Errorf("decoding oracle response: %w", err)
	}
	return gr.toResponse()
}

func (c *Client) buildRequest(req Request) generateRequest {
	temp := c.temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTokens := c.maxTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}
	return generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: req.Prompt}},
		}},
		GenerationConfig: &generationConfig{
			Temperature:        &temp,
			MaxOutputTokens:    maxTokens,
			ResponseModalities: req.ResponseModalities,
		},
	}
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er struct {
		Error apiError `json:"error"`
	}
	if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
		return fmt.Errorf("oracle returned HTTP %d (%s): %s", resp.StatusCode, er.Error.Status, er.Error.Message)
	}
	return fmt.Errorf("oracle returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

// generateContent wire format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (gr generateResponse) toResponse() (Response, error) {
	if gr.Error != nil {
		return Response{}, fmt.Errorf("oracle error %d: %s", gr.Error.Code, gr.Error.Message)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return Response{}, fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return Response{}, ErrEmptyResponse
	}

	var out Response
	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		switch {
		case p.InlineData != nil:
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return Response{}, fmt.Errorf("decoding inline data: %w", err)
			}
			out.Parts = append(out.Parts, Part{MimeType: p.InlineData.MimeType, Data: data})
		case p.Text != "":
			text.WriteString(p.Text)
			out.Parts = append(out.Parts, Part{Text: p.Text})
		}
	}
	out.Text = text.String()
	if len(out.Parts) == 0 {
		return Response{}, ErrEmptyResponse
	}
	return out, nil
}
