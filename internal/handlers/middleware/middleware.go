package middleware

import (
	"context"
	"strings"

	"doacin/internal/logger"
	. "doacin/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (User, error)
}

type Middleware struct {
	auth Authenticator
	log  logger.Logger
}

func New(auth Authenticator) Middleware {
	return Middleware{
		auth: auth,
		log:  logger.New("middleware"),
	}
}

// AuthRequired resolves the bearer token and stores the user under the
// "user" local.
func (m Middleware) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "token not provided"})
		}

		user, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			m.log.Function("AuthRequired").Debug("rejected token", "error", err, "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid or expired token"})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func (m Middleware) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(User)
		if !ok || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"message": "admin access required"})
		}
		return c.Next()
	}
}

// WebSocketAuth authenticates upgrade requests from the token query
// parameter, since browsers cannot set headers on websocket requests.
func (m Middleware) WebSocketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "token not provided"})
		}

		user, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid or expired token"})
		}

		c.Locals("userID", user.ID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
