package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cropadvisor/config"
	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type supabaseUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// SupabaseAuthService asks the hosted auth server who owns a token.
type SupabaseAuthService struct {
	log        logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSupabaseAuthService(cfg config.Config) (*SupabaseAuthService, error) {
	log := logger.New("SupabaseAuthService")

	if cfg.SupabaseURL == "" {
		return nil, log.ErrMsg("SUPABASE_URL is required for supabase auth")
	}

	log.Info("Supabase auth service initialized", "url", cfg.SupabaseURL)
	return &SupabaseAuthService{
		log:        log,
		httpClient: newAuthHTTPClient(),
		baseURL:    strings.TrimSuffix(cfg.SupabaseURL, "/"),
		apiKey:     cfg.SupabasePublishableKey,
	}, nil
}

func (s *SupabaseAuthService) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	log := s.log.TraceFromContext(ctx).Function("Resolve")

	if token == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, log.Err("failed to create user request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("failed to reach auth server", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Debug("failed to close user response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Info("auth server rejected token", "statusCode", resp.StatusCode)
		return nil, ErrInvalidToken
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: malformed user response: %w", ErrInvalidToken, err)
	}

	if user.ID == "" {
		return nil, fmt.Errorf("%w: user response has no id", ErrInvalidToken)
	}

	name, _ := user.UserMetadata["full_name"].(string)
	return &types.Identity{UserID: user.ID, Email: user.Email, Name: name}, nil
}
