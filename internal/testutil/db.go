// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory SQLite database with the full schema.
// It uses the same gorm configuration as production so constraint errors are
// translated identically.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:warbler_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user named name with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    name + "@email.com",
		Password: "HASHED_PASSWORD",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMessage inserts a message authored by userID.
func CreateMessage(t *testing.T, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()
	message := &models.Message{UserID: userID, Text: text}
	require.NoError(t, db.Create(message).Error)
	return message
}
