package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"warbler/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:%d"
)

const (
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside reads key into dest. On a miss it calls fn, which fills dest, and
// stores the result under key for ttl. Redis failures fall through to fn.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() error) error {
	if client != nil {
		raw, err := client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				return nil
			}
			Invalidate(ctx, key)
		case !errors.Is(err, redis.Nil):
			middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	if err := fn(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			if setErr := client.Set(ctx, key, raw, ttl).Err(); setErr != nil {
				middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
			}
		}
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
