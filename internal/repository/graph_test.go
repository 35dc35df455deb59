package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "follows" WHERE follower_id = $1 AND followed_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "zed")
	b := testutil.CreateUser(t, db, "amy")
	c := testutil.CreateUser(t, db, "max")

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	require.NoError(t, repo.Create(ctx, c.ID, b.ID))
	require.NoError(t, repo.Create(ctx, b.ID, a.ID))

	err := repo.Create(ctx, a.ID, b.ID)
	assert.True(t, models.HasCode(err, models.CodeDuplicateKey), "got %v", err)

	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := repo.Followers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "max", followers[0].Username)
	assert.Equal(t, "zed", followers[1].Username)

	following, err := repo.Following(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "amy", following[0].Username)

	require.NoError(t, repo.Delete(ctx, a.ID, b.ID))
	require.NoError(t, repo.Delete(ctx, a.ID, b.ID), "deleting a missing edge is not an error")

	ok, err = repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLikeRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u1")
	m1 := testutil.CreateMessage(t, db, u.ID, "first")
	m2 := testutil.CreateMessage(t, db, u.ID, "second")

	require.NoError(t, repo.Create(ctx, u.ID, m1.ID))
	err := repo.Create(ctx, u.ID, m1.ID)
	assert.True(t, models.HasCode(err, models.CodeDuplicateKey), "got %v", err)

	ids, err := repo.LikedMessageIDs(ctx, u.ID, []uint{m1.ID, m2.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{m1.ID}, ids)

	empty, err := repo.LikedMessageIDs(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	deleted, err := repo.Delete(ctx, u.ID, m1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, u.ID, m1.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err := repo.Exists(ctx, u.ID, m1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "u1")
	b := testutil.CreateUser(t, db, "u2")
	c := testutil.CreateUser(t, db, "u3")
	require.NoError(t, db.Create(&models.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error)

	base := time.Now().Add(-time.Hour)
	post := func(userID uint, text string, offset time.Duration) *models.Message {
		m := &models.Message{UserID: userID, Text: text, CreatedAt: base.Add(offset)}
		require.NoError(t, repo.Create(ctx, m))
		return m
	}
	own := post(a.ID, "mine", time.Minute)
	followed := post(b.ID, "followed", 2*time.Minute)
	post(c.ID, "stranger", 3*time.Minute)

	t.Run("timeline has own and followed messages newest first", func(t *testing.T) {
		messages, err := repo.Timeline(ctx, a.ID, 100)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, followed.ID, messages[0].ID)
		assert.Equal(t, own.ID, messages[1].ID)
		require.NotNil(t, messages[0].User)
		assert.Equal(t, "u2", messages[0].User.Username)
	})

	t.Run("timeline limit", func(t *testing.T) {
		messages, err := repo.Timeline(ctx, a.ID, 1)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})

	t.Run("get by id preloads author", func(t *testing.T) {
		m, err := repo.GetByID(ctx, own.ID)
		require.NoError(t, err)
		assert.Equal(t, "u1", m.User.Username)

		_, err = repo.GetByID(ctx, 9999)
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("liked by", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Like{UserID: c.ID, MessageID: own.ID}).Error)
		require.NoError(t, db.Create(&models.Like{UserID: c.ID, MessageID: followed.ID}).Error)

		liked, err := repo.LikedBy(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, liked, 2)
		assert.Equal(t, followed.ID, liked[0].ID)
	})

	t.Run("delete removes likes", func(t *testing.T) {
		require.NoError(t, repo.DeleteWithLikes(ctx, own.ID))

		var likes int64
		require.NoError(t, db.Model(&models.Like{}).Where("message_id = ?", own.ID).Count(&likes).Error)
		assert.Zero(t, likes)

		err := repo.DeleteWithLikes(ctx, own.ID)
		assert.True(t, models.HasCode(err, models.CodeNotFound))

		mine, err := repo.ListByUser(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})
}
