package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cropadvisor/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/cenkalti/backoff/v4"
)

var (
	ErrCompletionNotConfigured = errors.New("completion service is not configured")
	ErrCompletionFailed        = errors.New("completion request failed")
)

// CompletionService turns a system instruction and a user prompt into
// model-generated text.
type CompletionService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
	// Ready reports a missing credential without contacting the provider.
	Ready() error
}

func NewCompletionService(cfg config.Config) (CompletionService, error) {
	switch cfg.AIProvider {
	case config.AIProviderGemini:
		return NewGeminiCompletionService(cfg)
	default:
		return NewGatewayCompletionService(cfg), nil
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GatewayCompletionService talks to an OpenAI compatible chat completions
// endpoint.
type GatewayCompletionService struct {
	log         logger.Logger
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	timeout     time.Duration
	maxAttempts int
	backoff     func() backoff.BackOff
}

func NewGatewayCompletionService(cfg config.Config) *GatewayCompletionService {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	attempts := cfg.AIMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	return &GatewayCompletionService{
		log:         logger.New("GatewayCompletionService"),
		httpClient:  &http.Client{},
		baseURL:     strings.TrimSuffix(cfg.AIBaseURL, "/"),
		apiKey:      cfg.AIAPIKey,
		model:       cfg.AIModel,
		timeout:     timeout,
		maxAttempts: attempts,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

func (s *GatewayCompletionService) Model() string {
	return s.model
}

func (s *GatewayCompletionService) Ready() error {
	if s.apiKey == "" {
		return ErrCompletionNotConfigured
	}
	return nil
}

func (s *GatewayCompletionService) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Complete")

	if err := s.Ready(); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", log.Err("failed to marshal completion request", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(s.backoff(), uint64(s.maxAttempts-1)),
		ctx,
	)

	var content string
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++

		// the timeout bounds each attempt; the caller's ctx bounds them all
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var callErr error
		content, callErr = s.call(attemptCtx, body)
		if callErr == nil {
			return nil
		}
		log.Warn("completion attempt failed", "attempt", attempt, "model", s.model, "error", callErr)
		if ctx.Err() != nil {
			return backoff.Permanent(callErr)
		}
		if attemptCtx.Err() != nil {
			return fmt.Errorf("attempt timed out after %s: %v", s.timeout, callErr)
		}
		return callErr
	}, policy)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	log.Debug("completion succeeded", "model", s.model, "attempts", attempt, "chars", len(content))
	return content, nil
}

// call performs one request. Errors that a retry cannot fix are wrapped as
// permanent.
func (s *GatewayCompletionService) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf(
			"gateway returned status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(snippet)),
		)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("malformed completion payload: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(errors.New("completion payload has no choices"))
	}

	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", backoff.Permanent(errors.New("completion payload has empty content"))
	}

	return content, nil
}
