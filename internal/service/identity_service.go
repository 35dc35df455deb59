// Package service contains the business logic of the application.
package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/auth"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const accessUnauthorized = "Access unauthorized."

// SessionRevoker ends every live session of a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID uint) error
}

// IdentityService registers, authenticates, updates and deletes users.
type IdentityService struct {
	userRepo repository.UserRepository
	sessions SessionRevoker
}

// NewIdentityService returns a new IdentityService.
func NewIdentityService(userRepo repository.UserRepository, sessions SessionRevoker) *IdentityService {
	return &IdentityService{userRepo: userRepo, sessions: sessions}
}

// SignupInput carries the fields of a registration form.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// UpdateProfileInput carries an edited profile. Password is the user's
// current password and is required to save changes.
type UpdateProfileInput struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
}

func validateIdentity(username, email string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// Signup creates a user with a hashed password.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "IdentityService", "Signup")
	defer func() { end(err) }()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateKeyError("Username already taken", nil)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateKeyError("Email already taken", nil)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Username:       username,
		Email:          email,
		Password:       hashed,
		ImageURL:       orDefault(in.ImageURL, models.DefaultImageURL),
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate returns the user whose username and password match, or
// nil, nil when either is wrong.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(password, user.Password) {
		middleware.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, nil
	}
	middleware.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// GetUser loads a user by id.
func (s *IdentityService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns users whose username contains query.
func (s *IdentityService) ListUsers(ctx context.Context, query string) ([]models.User, error) {
	return s.userRepo.Search(ctx, query)
}

// UpdateProfile saves profile edits after re-checking the actor's password.
// Empty image fields fall back to the defaults.
func (s *IdentityService) UpdateProfile(ctx context.Context, actor *models.User, in UpdateProfileInput) (*models.User, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError(accessUnauthorized)
	}

	// looked up directly so profile edits stay out of the login attempt counts
	user, err := s.userRepo.GetByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID != actor.ID || !auth.VerifyPassword(in.Password, user.Password) {
		return nil, models.NewUnauthorizedError("Invalid password.")
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	user.ImageURL = orDefault(in.ImageURL, models.DefaultImageURL)
	user.HeaderImageURL = orDefault(in.HeaderImageURL, models.DefaultHeaderImageURL)
	user.Bio = strings.TrimSpace(in.Bio)
	user.Location = strings.TrimSpace(in.Location)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and everything attached to them, then ends their sessions.
func (s *IdentityService) Delete(ctx context.Context, actor *models.User, userID uint) (err error) {
	ctx, end := observability.StartSpan(ctx, "IdentityService", "Delete", attribute.Int64("user_id", int64(userID)))
	defer func() { end(err) }()

	if !auth.Authorize(actor, userID) {
		return models.NewUnauthorizedError(accessUnauthorized)
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		// the sessions now point at a missing user and resolve to anonymous
		middleware.Logger.WarnContext(ctx, "failed to revoke sessions of deleted user",
			slog.Uint64("deleted_user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
