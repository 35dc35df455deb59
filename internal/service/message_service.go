package service

import (
	"context"

	"warbler/internal/auth"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

// TimelineLimit caps the number of messages on the home timeline.
const TimelineLimit = 100

// MessageService provides message business logic.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService returns a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// CreateMessage posts text as the actor.
func (s *MessageService) CreateMessage(ctx context.Context, actor *models.User, text string) (*models.Message, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError(accessUnauthorized)
	}
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	message := &models.Message{Text: text, UserID: actor.ID}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	message.User = actor
	return message, nil
}

func (s *MessageService) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// DeleteMessage removes a message and its likes. Only the author may do this.
func (s *MessageService) DeleteMessage(ctx context.Context, actor *models.User, id uint) error {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.Authorize(actor, message.UserID) {
		return models.NewUnauthorizedError(accessUnauthorized)
	}
	return s.messageRepo.DeleteWithLikes(ctx, id)
}

// Timeline returns the newest messages by the actor and the users they follow.
// Anonymous visitors get an empty timeline.
func (s *MessageService) Timeline(ctx context.Context, actor *models.User) ([]models.Message, error) {
	if actor == nil {
		return []models.Message{}, nil
	}
	return s.messageRepo.Timeline(ctx, actor.ID, TimelineLimit)
}

// UserMessages lists the messages userID wrote, newest first.
func (s *MessageService) UserMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByUser(ctx, userID)
}
