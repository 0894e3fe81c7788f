package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cropadvisor/config"
	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityService resolves a bearer token to the caller it was issued to.
type IdentityService interface {
	Resolve(ctx context.Context, token string) (*types.Identity, error)
}

func NewIdentityService(cfg config.Config) (IdentityService, error) {
	log := logger.New("IdentityService").Function("NewIdentityService")

	switch cfg.AuthProvider {
	case config.AuthProviderOIDC:
		return NewOIDCService(cfg)
	case config.AuthProviderSupabase, "":
		return NewSupabaseAuthService(cfg)
	default:
		return nil, log.Error("unsupported auth provider", "provider", cfg.AuthProvider)
	}
}

func newAuthHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
