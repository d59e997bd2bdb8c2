// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubscope/pkg/types"
)

func newTestClient(ts *httptest.Server, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithAPIKey("test-key"),
		WithBaseURL(ts.URL),
		WithHTTPClient(ts.Client()),
		WithRateLimit(0),
	}
	return NewClient(append(base, opts...)...)
}

func TestGenerate_Success(t *testing.T) {
	var got generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"One-line summary: "},{"text":"Bones weaken."}]},"finishReason":"STOP"}]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts, WithModel("gemini-test"), WithGeneration(0.2, 256))
	resp, err := c.Generate(context.Background(), Request{Prompt: "Summarize this"})
	require.NoError(t, err)

	assert.Equal(t, "One-line summary: Bones weaken.", resp.Text)
	assert.Len(t, resp.Parts, 2)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "Summarize this", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 256, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.2, *got.GenerationConfig.Temperature, 1e-9)
}

func TestGenerate_RequestOverrides(t *testing.T) {
	var got generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"iVBORw=="}}]}}]}`))
	}))
	defer ts.Close()

	temp := 0.9
	resp, err := newTestClient(ts).Generate(context.Background(), Request{
		Prompt:             "draw",
		Temperature:        &temp,
		MaxOutputTokens:    64,
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "image/png", resp.Parts[0].MimeType)
	assert.NotEmpty(t, resp.Parts[0].Data)
	assert.Empty(t, resp.Text)

	assert.Equal(t, []string{"IMAGE", "TEXT"}, got.GenerationConfig.ResponseModalities)
	assert.Equal(t, 64, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.9, *got.GenerationConfig.Temperature, 1e-9)
}

func TestGenerate_NoCredentials(t *testing.T) {
	_, err := NewClient().Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.False(t, NewClient().Available())
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		is      error
	}{
		{"api error body", 400, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid", nil},
		{"plain server error", 500, `boom`, "HTTP 500", nil},
		{"no candidates", 200, `{"candidates":[]}`, "", ErrEmptyResponse},
		{"empty parts", 200, `{"candidates":[{"content":{"parts":[]}}]}`, "", ErrEmptyResponse},
		{"blocked", 200, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY", nil},
		{"malformed json", 200, `{"candidates":`, "decoding", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestClient(ts).Generate(context.Background(), Request{Prompt: "x"})
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestGenerate_RetriesThrottled(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer ts.Close()

	resp, err := newTestClient(ts).Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_ContextTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(ts).Generate(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFromConfig(t *testing.T) {
	c := FromConfig(types.OracleConfig{
		APIKey:            "k",
		Model:             "gemini-pro",
		BaseURL:           "http://localhost:9999/v1/",
		RequestsPerSecond: 5,
		MaxRetries:        1,
		Temperature:       0.1,
		MaxOutputTokens:   100,
	}, nil)

	assert.True(t, c.Available())
	assert.Equal(t, "gemini-pro", c.Model())
	assert.Equal(t, "http://localhost:9999/v1", c.baseURL)
	assert.Equal(t, 1, c.maxRetries)
	assert.Equal(t, 100, c.maxTokens)
	assert.NotNil(t, c.logger)

	d := FromConfig(types.OracleConfig{}, nil)
	assert.False(t, d.Available())
	assert.Equal(t, DefaultModel, d.Model())
	assert.Equal(t, DefaultBaseURL, d.baseURL)
}
