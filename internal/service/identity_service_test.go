package service

import (
	"context"
	"errors"
	"testing"

	"warbler/internal/auth"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityServiceSignupValidation(t *testing.T) {
	svc := NewIdentityService(noopUserRepo(), &revokerStub{})
	ctx := context.Background()

	tests := []struct {
		name string
		in   SignupInput
	}{
		{"missing username", SignupInput{Email: "a@email.com", Password: "password"}},
		{"missing email", SignupInput{Username: "u1", Password: "password"}},
		{"missing password", SignupInput{Username: "u1", Email: "a@email.com"}},
		{"blank username", SignupInput{Username: "   ", Email: "a@email.com", Password: "password"}},
		{"bad email", SignupInput{Username: "user1", Email: "nope", Password: "password"}},
		{"short password", SignupInput{Username: "user1", Email: "a@email.com", Password: "pw"}},
		{"whitespace password", SignupInput{Username: "user1", Email: "a@email.com", Password: "        "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.in)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestIdentityServiceSignupDuplicatePrecheck(t *testing.T) {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: 1, Username: "u1"}, nil
	}
	repo.createFn = func(context.Context, *models.User) error {
		t.Fatal("create must not be called for a taken username")
		return nil
	}
	svc := NewIdentityService(repo, &revokerStub{})

	_, err := svc.Signup(context.Background(), SignupInput{Username: "u1", Email: "new@email.com", Password: "password"})
	assert.True(t, models.HasCode(err, models.CodeDuplicateKey), "got %v", err)
}

func TestIdentityServiceSignupHashesPassword(t *testing.T) {
	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 10
		created = u
		return nil
	}
	svc := NewIdentityService(repo, &revokerStub{})

	user, err := svc.Signup(context.Background(), SignupInput{Username: " u1 ", Email: "u1@email.com", Password: "password"})
	require.NoError(t, err)
	assert.Same(t, created, user)
	assert.Equal(t, "u1", user.Username)
	assert.NotEqual(t, "password", user.Password)
	assert.True(t, auth.VerifyPassword("password", user.Password))
	assert.Equal(t, models.DefaultImageURL, user.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, user.HeaderImageURL)
}

func TestIdentityServiceAuthenticate(t *testing.T) {
	hash, err := auth.HashPassword("password")
	require.NoError(t, err)

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
		switch name {
		case "u1":
			return &models.User{ID: 1, Username: "u1", Password: hash}, nil
		case "broken":
			return &models.User{ID: 2, Username: "broken", Password: "not-a-bcrypt-hash"}, nil
		}
		return nil, nil
	}
	svc := NewIdentityService(repo, &revokerStub{})
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "u1", "password")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(1), user.ID)

	for _, tc := range [][2]string{{"u1", "wrong"}, {"nobody", "password"}, {"broken", "password"}} {
		user, err := svc.Authenticate(ctx, tc[0], tc[1])
		assert.NoError(t, err)
		assert.Nil(t, user)
	}
}

func TestIdentityServiceDeleteRequiresOwner(t *testing.T) {
	repo := noopUserRepo()
	repo.deleteCascadeFn = func(context.Context, uint) error {
		t.Fatal("delete must not run for another user")
		return nil
	}
	revoker := &revokerStub{}
	svc := NewIdentityService(repo, revoker)

	err := svc.Delete(context.Background(), &models.User{ID: 2}, 1)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	err = svc.Delete(context.Background(), nil, 1)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	assert.Empty(t, revoker.revoked)
}

func TestIdentityServiceDeleteRevokesSessions(t *testing.T) {
	revoker := &revokerStub{err: errors.New("redis down")}
	svc := NewIdentityService(noopUserRepo(), revoker)

	require.NoError(t, svc.Delete(context.Background(), &models.User{ID: 4}, 4))
	assert.Equal(t, []uint{4}, revoker.revoked)
}

func TestIdentityServiceUpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	svc := NewIdentityService(users, &revokerStub{})
	ctx := context.Background()

	u1, err := svc.Signup(ctx, SignupInput{Username: "u1", Email: "u1@email.com", Password: "password"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupInput{Username: "u2", Email: "u2@email.com", Password: "password"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, u1, UpdateProfileInput{Username: "renamed", Email: "u1@email.com", Password: "nope"})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, nil, UpdateProfileInput{Password: "password"})
		assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	})

	t.Run("taken username", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, u1, UpdateProfileInput{Username: "u2", Email: "u1@email.com", Password: "password"})
		assert.True(t, models.HasCode(err, models.CodeDuplicateKey), "got %v", err)
	})

	t.Run("success", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, u1, UpdateProfileInput{
			Username: "renamed",
			Email:    "renamed@email.com",
			Bio:      "hello",
			Location: "Oakland",
			ImageURL: "",
			Password: "password",
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Username)
		assert.Equal(t, models.DefaultImageURL, updated.ImageURL)

		again, err := svc.Authenticate(ctx, "renamed", "password")
		require.NoError(t, err)
		require.NotNil(t, again, "password survives the profile update")
		assert.Equal(t, "Oakland", again.Location)
	})
}

func loginCount(t *testing.T, result string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, middleware.AuthAttempts.WithLabelValues(result).Write(&m))
	return m.GetCounter().GetValue()
}

func TestIdentityServiceUpdateProfileIsNotALogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), &revokerStub{})
	ctx := context.Background()

	u1, err := svc.Signup(ctx, SignupInput{Username: "u1", Email: "u1@email.com", Password: "password"})
	require.NoError(t, err)

	success := loginCount(t, "success")
	failure := loginCount(t, "failure")

	_, err = svc.UpdateProfile(ctx, u1, UpdateProfileInput{Username: "u1", Email: "u1@email.com", Password: "wrong"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	_, err = svc.UpdateProfile(ctx, u1, UpdateProfileInput{Username: "u1", Email: "u1@email.com", Password: "password"})
	require.NoError(t, err)

	assert.Equal(t, success, loginCount(t, "success"))
	assert.Equal(t, failure, loginCount(t, "failure"))
}

func TestIdentityServiceSignupThenAuthenticate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), &revokerStub{})
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Username: "testuser", Email: "test@test.com", Password: "HASHED_PASSWORD"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "testuser", "HASHED_PASSWORD")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Signup(ctx, SignupInput{Username: "testuser", Email: "other@test.com", Password: "password"})
	assert.True(t, models.HasCode(err, models.CodeDuplicateKey))

	listed, err := svc.ListUsers(ctx, "test")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	fetched, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", fetched.Username)
}
