package middleware

import (
	"context"
	"strings"

	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	IdentityKey      AuthContextKey = "identity"
	IdentityKeyFiber string         = "Identity"
)

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is missing or uses another scheme.
func BearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth resolves the bearer token through the configured identity
// provider and stores the caller in fiber locals and the user context.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		token := BearerToken(c)
		if token == "" {
			log.Info("missing bearer token", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		identity, err := m.identity.Resolve(c.UserContext(), token)
		if err != nil || identity == nil || identity.UserID == "" {
			log.Info("token rejected", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(IdentityKeyFiber, identity)
		c.SetUserContext(context.WithValue(c.UserContext(), IdentityKey, identity))

		return c.Next()
	}
}

func GetIdentity(c *fiber.Ctx) *types.Identity {
	identity, ok := c.Locals(IdentityKeyFiber).(*types.Identity)
	if !ok {
		return nil
	}
	return identity
}
