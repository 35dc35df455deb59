package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /users?q=...
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	users, err := s.identity.ListUsers(ctx, strings.TrimSpace(c.Query("q")))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error": "Request timeout",
			})
		}
		return respondError(c, err)
	}

	return c.JSON(users)
}

// GetUser handles GET /users/:id and includes the user's messages.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	user, err := s.identity.GetUser(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	messages, err := s.messages.UserMessages(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.reactions.MarkLiked(ctx, currentActor(c), messages); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"messages": messages,
	})
}

// GetFollowing handles GET /users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.graph.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.graph.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetLikes handles GET /users/:id/likes
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	messages, err := s.reactions.LikedMessages(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.reactions.MarkLiked(ctx, currentActor(c), messages); err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// Follow handles POST /users/follow/:id
func (s *Server) Follow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	actor := currentActor(c)
	if err := s.graph.Follow(c.UserContext(), actor, actor.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// StopFollowing handles POST /users/stop-following/:id
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	actor := currentActor(c)
	if err := s.graph.Unfollow(c.UserContext(), actor, actor.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// UpdateProfile handles POST /users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		ImageURL       string `json:"image_url"`
		HeaderImageURL string `json:"header_image_url"`
		Bio            string `json:"bio"`
		Location       string `json:"location"`
		Password       string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.UpdateProfile(c.UserContext(), currentActor(c), service.UpdateProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Bio:            req.Bio,
		Location:       req.Location,
		Password:       req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount handles POST /users/delete
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	actor := currentActor(c)
	if err := s.identity.Delete(c.UserContext(), actor, actor.ID); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleUserLike handles POST /users/:id/:message_id. The acting user's like
// on :message_id is toggled; :id names the profile the request came from and
// is echoed back as user_id.
func (s *Server) ToggleUserLike(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	messageID, err := parseID(c, "message_id")
	if err != nil {
		return nil
	}
	if _, err := s.identity.GetUser(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}

	actor := currentActor(c)
	liked, err := s.reactions.ToggleLike(c.UserContext(), actor, actor.ID, messageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user_id":    userID,
		"message_id": messageID,
		"liked":      liked,
	})
}
