package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cropadvisor/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, baseURL string, attempts int) *GatewayCompletionService {
	t.Helper()
	service := NewGatewayCompletionService(config.Config{
		AIBaseURL:        baseURL,
		AIAPIKey:         "test-key",
		AIModel:          "google/gemini-2.5-flash",
		AITimeoutSeconds: 5,
		AIMaxAttempts:    attempts,
	})
	service.backoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return service
}

func TestGatewayCompletionService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "google/gemini-2.5-flash", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "You are an advisor.", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "Recommend crops.", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. Maize\n2. Beans"}}]}`))
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL+"/v1/", 1)
	text, err := service.Complete(context.Background(), "You are an advisor.", "Recommend crops.")
	require.NoError(t, err)
	assert.Equal(t, "1. Maize\n2. Beans", text)
	assert.Equal(t, "google/gemini-2.5-flash", service.Model())
}

func TestGatewayCompletionService_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "payment required", status: http.StatusPaymentRequired, body: `{"error":"credits exhausted"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "malformed payload", status: http.StatusOK, body: `not json`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := newTestGateway(t, server.URL, 1)
			text, err := service.Complete(context.Background(), "system", "user")
			assert.ErrorIs(t, err, ErrCompletionFailed)
			assert.Empty(t, text)
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestGatewayCompletionService_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Sorghum"}}]}`))
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL, 3)
	text, err := service.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "1. Sorghum", text)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGatewayCompletionService_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL, 3)
	_, err := service.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGatewayCompletionService_SingleAttemptByDefault(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL, 1)
	_, err := service.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGatewayCompletionService_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	service := newTestGateway(t, server.URL, 3)
	service.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := service.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGatewayCompletionService_TimeoutAppliesPerAttempt(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Cassava"}}]}`))
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL, 2)
	service.timeout = 100 * time.Millisecond

	text, err := service.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "1. Cassava", text)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGatewayCompletionService_CallerCancellationStopsRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	defer server.Close()

	service := newTestGateway(t, server.URL, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := service.Complete(ctx, "system", "user")
	assert.ErrorIs(t, err, ErrCompletionFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGatewayCompletionService_NotConfigured(t *testing.T) {
	service := NewGatewayCompletionService(config.Config{AIBaseURL: "https://gateway.example.com/v1"})

	assert.ErrorIs(t, service.Ready(), ErrCompletionNotConfigured)
	_, err := service.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrCompletionNotConfigured)
}

func TestGeminiCompletionService_NotConfigured(t *testing.T) {
	service, err := NewGeminiCompletionService(config.Config{AIModel: "gemini-2.5-flash"})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Ready(), ErrCompletionNotConfigured)
	_, err = service.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrCompletionNotConfigured)
}

func TestGeminiCompletionService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"1. Cassava"}]}}]}`))
	}))
	defer server.Close()

	service, err := newGeminiCompletionService(config.Config{
		AIAPIKey:         "gemini-key",
		AIModel:          "gemini-2.5-flash",
		AITimeoutSeconds: 5,
	}, server.URL)
	require.NoError(t, err)
	require.NoError(t, service.Ready())

	text, err := service.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "1. Cassava", text)
}

func TestNewCompletionService(t *testing.T) {
	gateway, err := NewCompletionService(config.Config{AIProvider: config.AIProviderGateway})
	require.NoError(t, err)
	assert.IsType(t, &GatewayCompletionService{}, gateway)

	gemini, err := NewCompletionService(config.Config{AIProvider: config.AIProviderGemini})
	require.NoError(t, err)
	assert.IsType(t, &GeminiCompletionService{}, gemini)
}
