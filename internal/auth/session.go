package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"warbler/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenIssuer = "warbler-api"

var (
	// ErrInvalidToken is returned for tokens that fail signature, expiry or shape checks.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSessionRevoked is returned for well-formed tokens whose session was logged out.
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionStore issues and resolves login sessions. A session is an HS256 JWT
// whose jti is recorded in Redis for the session lifetime; deleting that
// record revokes the token.
type SessionStore struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
}

// NewSessionStore builds a store. rdb may be nil, in which case tokens are
// checked by signature and expiry only and cannot be revoked.
func NewSessionStore(secret string, ttl time.Duration, rdb *redis.Client) *SessionStore {
	if rdb == nil {
		middleware.Logger.Warn("session store running without Redis: logout will not revoke tokens")
	}
	return &SessionStore{secret: []byte(secret), ttl: ttl, rdb: rdb}
}

func sessionKey(jti string) string {
	return "session:" + jti
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// Create starts a session for userID and returns its token.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	now := time.Now()
	jti := uuid.NewString()
	sub := strconv.FormatUint(uint64(userID), 10)

	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    tokenIssuer,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if s.rdb != nil {
		_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey(jti), sub, s.ttl)
			pipe.SAdd(ctx, userSessionsKey(userID), jti)
			pipe.Expire(ctx, userSessionsKey(userID), s.ttl)
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("record session: %w", err)
		}
	}

	return token, nil
}

func (s *SessionStore) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolve returns the user a live session token belongs to.
func (s *SessionStore) Resolve(ctx context.Context, token string) (uint, error) {
	claims, err := s.parse(token)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}

	if s.rdb != nil {
		owner, err := s.rdb.Get(ctx, sessionKey(claims.ID)).Result()
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionRevoked
		}
		if err != nil {
			return 0, fmt.Errorf("lookup session: %w", err)
		}
		if owner != claims.Subject {
			return 0, ErrInvalidToken
		}
	}

	return uint(id), nil
}

// Revoke ends the session behind token. Expired or unknown tokens are ignored.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if s.rdb == nil {
		return nil
	}
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(claims.ID))
		pipe.SRem(ctx, userSessionsKey(uint(id)), claims.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every session of userID.
func (s *SessionStore) RevokeAll(ctx context.Context, userID uint) error {
	if s.rdb == nil {
		return nil
	}
	jtis, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list sessions: %w", err)
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, sessionKey(jti))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
