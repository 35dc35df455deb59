package service

import (
	"context"

	"warbler/internal/auth"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ReactionService manages likes on messages.
type ReactionService struct {
	likeRepo    repository.LikeRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewReactionService returns a new ReactionService.
func NewReactionService(likeRepo repository.LikeRepository, messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ReactionService {
	return &ReactionService{likeRepo: likeRepo, messageRepo: messageRepo, userRepo: userRepo}
}

// ToggleLike flips likerID's like on messageID and reports whether the
// message is liked afterwards.
func (s *ReactionService) ToggleLike(ctx context.Context, actor *models.User, likerID, messageID uint) (liked bool, err error) {
	ctx, end := observability.StartSpan(ctx, "ReactionService", "ToggleLike", attribute.Int64("message_id", int64(messageID)))
	defer func() { end(err) }()

	if !auth.Authorize(actor, likerID) {
		return false, models.NewUnauthorizedError(accessUnauthorized)
	}
	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return false, err
	}

	removed, err := s.likeRepo.Delete(ctx, likerID, messageID)
	if err != nil {
		return false, err
	}
	if removed {
		middleware.GraphMutations.WithLabelValues("unlike").Inc()
		return false, nil
	}

	if err := s.likeRepo.Create(ctx, likerID, messageID); err != nil {
		if !models.HasCode(err, models.CodeDuplicateKey) {
			return false, err
		}
		// a concurrent toggle inserted first; this toggle undoes it
		if _, err := s.likeRepo.Delete(ctx, likerID, messageID); err != nil {
			return false, err
		}
		middleware.GraphMutations.WithLabelValues("unlike").Inc()
		return false, nil
	}

	middleware.GraphMutations.WithLabelValues("like").Inc()
	return true, nil
}

// LikedMessages lists the messages userID has liked, newest first.
func (s *ReactionService) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.messageRepo.LikedBy(ctx, userID)
}

func (s *ReactionService) HasLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}

// MarkLiked sets Liked on each message the viewer has liked. Anonymous viewers see nothing liked.
func (s *ReactionService) MarkLiked(ctx context.Context, viewer *models.User, messages []models.Message) error {
	if viewer == nil || len(messages) == 0 {
		return nil
	}
	ids := make([]uint, len(messages))
	for i := range messages {
		ids[i] = messages[i].ID
	}
	liked, err := s.likeRepo.LikedMessageIDs(ctx, viewer.ID, ids)
	if err != nil {
		return err
	}
	set := make(map[uint]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}
	for i := range messages {
		_, messages[i].Liked = set[messages[i].ID]
	}
	return nil
}
