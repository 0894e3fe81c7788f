package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cropadvisor/config"

	logger "github.com/Bparsons0904/goLogger"
	"google.golang.org/genai"
)

// GeminiCompletionService calls the Gemini API directly instead of going
// through a gateway.
type GeminiCompletionService struct {
	log     logger.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiCompletionService(cfg config.Config) (*GeminiCompletionService, error) {
	return newGeminiCompletionService(cfg, "")
}

func newGeminiCompletionService(
	cfg config.Config,
	baseURL string,
) (*GeminiCompletionService, error) {
	log := logger.New("GeminiCompletionService")

	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	service := &GeminiCompletionService{
		log:     log,
		model:   cfg.AIModel,
		timeout: timeout,
	}

	if cfg.AIAPIKey == "" {
		log.Warn("Gemini API key not set, completions disabled")
		return service, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.AIAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, log.Err("failed to create Gemini client", err)
	}
	service.client = client

	log.Info("Gemini completion service initialized", "model", cfg.AIModel)
	return service, nil
}

func (s *GeminiCompletionService) Model() string {
	return s.model
}

func (s *GeminiCompletionService) Ready() error {
	if s.client == nil {
		return ErrCompletionNotConfigured
	}
	return nil
}

func (s *GeminiCompletionService) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Complete")

	if err := s.Ready(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		log.Warn("Gemini request failed", "model", s.model, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", ErrCompletionFailed, errors.New("Gemini returned no text"))
	}

	return text, nil
}
