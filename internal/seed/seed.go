package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxDuplicateDraws bounds how many colliding fake users a run redraws
// before giving up.
var maxDuplicateDraws = 100

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumMessages    int
	FollowsPerUser int
	LikesPerUser   int
	ShouldClean    bool
	SkipBcrypt     bool
	RandomSeed     int64
}

// Result summarises what a seeding run created.
type Result struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

// Seeder fills the database with a random social graph.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every row in dependency order.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run seeds users, messages, follows and likes according to opts.
func (s *Seeder) Run(opts Options) (*Result, error) {
	if opts.RandomSeed == 0 {
		opts.RandomSeed = time.Now().UnixNano()
	}
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	f, err := NewFactory(s.db, opts.RandomSeed, opts.SkipBcrypt)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	duplicates := 0
	for len(users) < opts.NumUsers {
		user, err := f.CreateUser()
		if err != nil {
			// gofakeit can repeat a username; draw again
			if isDuplicate(err) {
				duplicates++
				if duplicates > maxDuplicateDraws {
					return nil, fmt.Errorf("create user: gave up after %d duplicate usernames: %w", duplicates, err)
				}
				continue
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	res := &Result{Users: len(users)}
	if len(users) == 0 {
		return res, nil
	}

	messages := make([]*models.Message, 0, opts.NumMessages)
	for i := 0; i < opts.NumMessages; i++ {
		messages = append(messages, f.BuildMessage(users[f.rng.Intn(len(users))], 30))
	}
	if err := f.CreateMessagesBatch(messages); err != nil {
		return nil, fmt.Errorf("create messages: %w", err)
	}
	res.Messages = len(messages)

	follows := make([]models.Follow, 0, len(users)*opts.FollowsPerUser)
	for _, follower := range users {
		n := 0
		for _, idx := range f.rng.Perm(len(users)) {
			if n >= opts.FollowsPerUser {
				break
			}
			followed := users[idx]
			if followed.ID == follower.ID {
				continue
			}
			follows = append(follows, models.Follow{FollowerID: follower.ID, FollowedID: followed.ID})
			n++
		}
	}
	if len(follows) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follows).Error; err != nil {
			return nil, fmt.Errorf("create follows: %w", err)
		}
	}
	res.Follows = len(follows)

	likes := make([]models.Like, 0, len(users)*opts.LikesPerUser)
	if len(messages) > 0 {
		for _, liker := range users {
			perm := f.rng.Perm(len(messages))
			for i := 0; i < opts.LikesPerUser && i < len(perm); i++ {
				likes = append(likes, models.Like{UserID: liker.ID, MessageID: messages[perm[i]].ID})
			}
		}
	}
	if len(likes) > 0 {
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes).Error; err != nil {
			return nil, fmt.Errorf("create likes: %w", err)
		}
	}
	res.Likes = len(likes)

	middleware.Logger.Info("seeding complete",
		slog.Int("users", res.Users),
		slog.Int("messages", res.Messages),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
