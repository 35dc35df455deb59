// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"warbler/internal/auth"
	"warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user signs in with.
const DemoPassword = "password"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a Factory bound to db. All users share one precomputed
// password hash unless skipBcrypt is set, in which case the plain password is stored.
func NewFactory(db *gorm.DB, seed int64, skipBcrypt bool) (*Factory, error) {
	gofakeit.Seed(seed)

	hash := DemoPassword
	if !skipBcrypt {
		h, err := auth.HashPassword(DemoPassword)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		hash = h
	}
	return &Factory{db: db, rng: rand.New(rand.NewSource(seed)), hash: hash}, nil
}

// BuildUser returns an unsaved user with fake profile data.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Username:       fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:          gofakeit.Email(),
		Password:       f.hash,
		Bio:            gofakeit.Sentence(8),
		Location:       gofakeit.City(),
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	if len(user.Username) > 30 {
		user.Username = user.Username[:30]
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildMessage returns an unsaved message by author with a created_at spread
// over the last maxDays days.
func (f *Factory) BuildMessage(author *models.User, maxDays int) *models.Message {
	text := gofakeit.Sentence(f.rng.Intn(12) + 4)
	if len([]rune(text)) > models.MaxMessageLength {
		text = string([]rune(text)[:models.MaxMessageLength])
	}
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return &models.Message{
		Text:      text,
		UserID:    author.ID,
		CreatedAt: time.Now().Add(-back),
	}
}

// CreateMessagesBatch persists messages in a single insert.
func (f *Factory) CreateMessagesBatch(messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return f.db.Create(&messages).Error
}
