package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"cropadvisor/config"
	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
)

type OIDCDiscovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKSet struct {
	Keys []JWK `json:"keys"`
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// OIDCService validates signed ID tokens locally against the issuer's
// published signing keys.
type OIDCService struct {
	log        logger.Logger
	httpClient *http.Client
	issuer     string
	clientID   string
	cacheTTL   time.Duration

	// minimum gap between refetches caused by an unknown kid
	missRefetchInterval time.Duration

	mu            sync.RWMutex
	jwksURI       string
	keys          map[string]*rsa.PublicKey
	keysTime      time.Time
	lastMissFetch time.Time
}

func NewOIDCService(cfg config.Config) (*OIDCService, error) {
	log := logger.New("OIDCService")

	if cfg.OIDCIssuerURL == "" || cfg.OIDCClientID == "" {
		return nil, log.ErrMsg("OIDC_ISSUER_URL and OIDC_CLIENT_ID are required for oidc auth")
	}

	log.Info("OIDC service initialized", "issuer", cfg.OIDCIssuerURL)
	return &OIDCService{
		log:        log,
		httpClient: newAuthHTTPClient(),
		issuer:     strings.TrimSuffix(cfg.OIDCIssuerURL, "/"),
		clientID:   cfg.OIDCClientID,
		cacheTTL:   15 * time.Minute,

		missRefetchInterval: time.Minute,
	}, nil
}

func (s *OIDCService) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	log := s.log.TraceFromContext(ctx).Function("Resolve")

	if token == "" {
		return nil, ErrInvalidToken
	}

	var claims identityClaims
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(token *jwt.Token) (any, error) {
			kid, ok := token.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, fmt.Errorf("missing kid in token header")
			}
			return s.publicKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		log.Info("token validation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	name := claims.Name
	if name == "" {
		name = strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)
	}

	return &types.Identity{UserID: claims.Subject, Email: claims.Email, Name: name}, nil
}

// RefreshKeys fetches the signing keys regardless of cache age.
func (s *OIDCService) RefreshKeys(ctx context.Context) error {
	_, err := s.fetchKeys(ctx)
	return err
}

// publicKey looks the kid up in the cached key set, refetching when the cache
// is stale or the kid is unknown (key rotation). Refetches for unknown kids
// happen at most once per missRefetchInterval.
func (s *OIDCService) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := time.Since(s.keysTime) < s.cacheTTL
	s.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if !ok && !s.allowMissRefetch() {
		return nil, fmt.Errorf("no signing key found for kid %q", kid)
	}

	keys, err := s.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing key found for kid %q", kid)
	}
	return key, nil
}

func (s *OIDCService) allowMissRefetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastMissFetch.IsZero() && time.Since(s.lastMissFetch) < s.missRefetchInterval {
		return false
	}
	s.lastMissFetch = time.Now()
	return true
}

func (s *OIDCService) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	log := s.log.TraceFromContext(ctx).Function("fetchKeys")

	jwksURI, err := s.discoverJWKSURI(ctx)
	if err != nil {
		return nil, err
	}

	var set JWKSet
	if err := s.getJSON(ctx, jwksURI, &set); err != nil {
		return nil, log.Err("failed to fetch JWKS", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := jwk.rsaPublicKey()
		if err != nil {
			log.Warn("skipping malformed JWK", "kid", jwk.Kid, "error", err)
			continue
		}
		keys[jwk.Kid] = key
	}

	if len(keys) == 0 {
		return nil, log.ErrMsg("JWKS contains no usable RSA signing keys")
	}

	s.mu.Lock()
	s.keys = keys
	s.keysTime = time.Now()
	s.mu.Unlock()

	log.Info("JWKS fetched successfully", "keys", len(keys))
	return keys, nil
}

func (s *OIDCService) discoverJWKSURI(ctx context.Context) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("discoverJWKSURI")

	s.mu.RLock()
	cached := s.jwksURI
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	var discovery OIDCDiscovery
	if err := s.getJSON(ctx, s.issuer+"/.well-known/openid-configuration", &discovery); err != nil {
		return "", log.Err("failed to fetch OIDC discovery", err)
	}

	if strings.TrimSuffix(discovery.Issuer, "/") != s.issuer {
		return "", log.Error(
			"issuer mismatch in discovery document",
			"expected", s.issuer,
			"got", discovery.Issuer,
		)
	}
	if discovery.JWKSURI == "" {
		return "", log.ErrMsg("missing jwks_uri in discovery document")
	}

	s.mu.Lock()
	s.jwksURI = discovery.JWKSURI
	s.mu.Unlock()

	return discovery.JWKSURI, nil
}

func (s *OIDCService) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (k JWK) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() < 3 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}, nil
}
