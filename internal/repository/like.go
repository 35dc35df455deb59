package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// LikeRepository stores (user, message) like edges.
type LikeRepository interface {
	Create(ctx context.Context, userID, messageID uint) error
	Delete(ctx context.Context, userID, messageID uint) (bool, error)
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessageIDs(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the edge. An existing edge yields a DUPLICATE_KEY error.
func (r *likeRepository) Create(ctx context.Context, userID, messageID uint) error {
	like := &models.Like{UserID: userID, MessageID: messageID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateKeyError("Like already exists", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the edge and reports whether one existed.
func (r *likeRepository) Delete(ctx context.Context, userID, messageID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// LikedMessageIDs returns the subset of messageIDs that userID has liked.
func (r *likeRepository) LikedMessageIDs(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error) {
	if len(messageIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Pluck("message_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
