package server

import (
	"log/slog"
	"strings"
	"time"

	"warbler/internal/auth"
	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

const sessionCookie = "session"

const accessUnauthorized = "Access unauthorized."

// sessionToken reads the session token from the cookie, falling back to a
// Bearer Authorization header for API clients.
func sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(sessionCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionAuth resolves the session token, if any, to the acting user. Requests
// without a valid session continue anonymously.
func (s *Server) SessionAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Next()
		}

		user, err := s.gate.Resolve(c.UserContext(), token)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session lookup failed",
				slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if user == nil {
			return c.Next()
		}

		c.Locals("userID", user.ID)
		c.Locals("sessionToken", token)
		middleware.RefreshContext(c)
		c.SetUserContext(auth.WithActor(c.UserContext(), user))
		return c.Next()
	}
}

// SessionRequired rejects anonymous requests with 401.
// Must be placed after SessionAuth.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentActor(c) == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(accessUnauthorized))
		}
		return c.Next()
	}
}

func currentActor(c *fiber.Ctx) *models.User {
	return auth.ActorFrom(c.UserContext())
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.config.SessionTTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
