package server

import (
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	user, err := s.identity.Signup(ctx, service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	user, err := s.identity.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials."))
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"token":   token,
		"user":    user,
		"message": "Hello, " + user.Username + "!",
	})
}

// Logout handles POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if token, ok := c.Locals("sessionToken").(string); ok {
		if err := s.sessions.Revoke(ctx, token); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to revoke session", slog.String("error", err.Error()))
		}
	}
	s.clearSessionCookie(c)

	return c.JSON(fiber.Map{"message": "Goodbye!"})
}
