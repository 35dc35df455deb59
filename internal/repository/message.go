package repository

import (
	"context"
	"errors"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	LikedBy(ctx context.Context, userID uint) ([]models.Message, error)
	DeleteWithLikes(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("messages.created_at DESC").Order("messages.id DESC")
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Where("user_id = ?", userID).
		Preload("User").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Timeline returns the newest messages written by userID or anyone userID follows.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	followed := r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)

	if err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Preload("User").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// LikedBy returns the messages userID has liked, newest first.
func (r *messageRepository) LikedBy(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Joins("JOIN likes l ON l.message_id = messages.id").
		Where("l.user_id = ?", userID).
		Scopes(newestFirst).
		Preload("User").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// DeleteWithLikes removes a message and every like on it in one transaction.
func (r *messageRepository) DeleteWithLikes(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Message{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Message", id)
		}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}
