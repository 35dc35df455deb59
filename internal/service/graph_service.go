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

// GraphService manages follow edges between users.
type GraphService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewGraphService returns a new GraphService.
func NewGraphService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *GraphService {
	return &GraphService{followRepo: followRepo, userRepo: userRepo}
}

// Follow makes followerID follow followedID. Only the follower may do this.
func (s *GraphService) Follow(ctx context.Context, actor *models.User, followerID, followedID uint) (err error) {
	ctx, end := observability.StartSpan(ctx, "GraphService", "Follow",
		attribute.Int64("follower_id", int64(followerID)),
		attribute.Int64("followed_id", int64(followedID)),
	)
	defer func() { end(err) }()

	if !auth.Authorize(actor, followerID) {
		return models.NewUnauthorizedError(accessUnauthorized)
	}
	if followerID == followedID {
		return models.NewSelfFollowError()
	}
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if exists {
		return models.NewAlreadyFollowingError()
	}

	if err := s.followRepo.Create(ctx, followerID, followedID); err != nil {
		// a concurrent request created the same edge
		if models.HasCode(err, models.CodeDuplicateKey) {
			return nil
		}
		return err
	}
	middleware.GraphMutations.WithLabelValues("follow").Inc()
	return nil
}

// Unfollow removes the edge if present.
func (s *GraphService) Unfollow(ctx context.Context, actor *models.User, followerID, followedID uint) error {
	if !auth.Authorize(actor, followerID) {
		return models.NewUnauthorizedError(accessUnauthorized)
	}
	if err := s.followRepo.Delete(ctx, followerID, followedID); err != nil {
		return err
	}
	middleware.GraphMutations.WithLabelValues("unfollow").Inc()
	return nil
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.followRepo.Exists(ctx, a, b)
}

// IsFollowedBy reports whether a is followed by b.
func (s *GraphService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.followRepo.Exists(ctx, b, a)
}

func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}
