package auth

import (
	"context"
	"errors"

	"warbler/internal/models"
)

// SessionResolver maps a session token to the user id it was issued for.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// UserLookup loads a user by id, returning a NOT_FOUND AppError when absent.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Gate turns a session token into the acting user.
type Gate struct {
	sessions SessionResolver
	users    UserLookup
}

func NewGate(sessions SessionResolver, users UserLookup) *Gate {
	return &Gate{sessions: sessions, users: users}
}

// Resolve returns the acting user for token, or nil when the token is empty,
// invalid, revoked or names a user that no longer exists. Only infrastructure
// failures are returned as errors.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionRevoked) {
			return nil, nil
		}
		return nil, err
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Authorize reports whether actor may act on behalf of requiredID.
func Authorize(actor *models.User, requiredID uint) bool {
	return actor != nil && actor.ID == requiredID
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the acting user.
func WithActor(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFrom returns the acting user stored in ctx, or nil for anonymous requests.
func ActorFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(actorKey{}).(*models.User)
	return user
}
