package server

import (
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

// HomeTimeline handles GET /. Anonymous visitors get an empty list.
func (s *Server) HomeTimeline(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := currentActor(c)

	messages, err := s.messages.Timeline(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.reactions.MarkLiked(ctx, actor, messages); err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// CreateMessage handles POST /messages/new
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messages.CreateMessage(c.UserContext(), currentActor(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessage handles GET /messages/:id
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx := c.UserContext()
	message, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	one := []models.Message{*message}
	if err := s.reactions.MarkLiked(ctx, currentActor(c), one); err != nil {
		return respondError(c, err)
	}
	return c.JSON(one[0])
}

// DeleteMessage handles POST /messages/:id/delete
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messages.DeleteMessage(c.UserContext(), currentActor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeMessage handles POST /messages/:id/like and POST /messages/:id,
// toggling the acting user's like.
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	actor := currentActor(c)
	liked, err := s.reactions.ToggleLike(c.UserContext(), actor, actor.ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message_id": id,
		"liked":      liked,
	})
}
