// Package session tracks, per subject, the set of refresh tokens that are
// currently live. A refresh token that verifies cryptographically but is not
// in its subject's set is proof of reuse of an already-rotated token.
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the per-subject session set. A subject may hold any number of
// concurrent refresh tokens, one per logged-in client; no token appears twice
// for the same subject. Mutations for a single subject are atomic: Rotate is
// the check-then-act step of token rotation and must never interleave with a
// concurrent Rotate, Remove, or Clear for the same subject.
type Store interface {
	// Add records a freshly issued token for the subject. The ttl bounds
	// how long the subject's set may linger without activity.
	Add(ctx context.Context, subject, token string, ttl time.Duration) error
	// Remove drops one token, reporting whether it was present.
	Remove(ctx context.Context, subject, token string) (bool, error)
	// Contains reports whether the token is live for the subject.
	Contains(ctx context.Context, subject, token string) (bool, error)
	// Rotate atomically replaces old with new. It returns false when old was
	// not in the set, which callers treat as a reuse signal. At most one of
	// any number of concurrent Rotate calls for the same old token succeeds.
	Rotate(ctx context.Context, subject, old, new string, ttl time.Duration) (bool, error)
	// Clear drops the subject's entire session set (reuse response and
	// account-deletion cascade).
	Clear(ctx context.Context, subject string) error
}

const keyPrefix = "sessions:"

// rotateScript removes the presented token and, only if it was present,
// installs the replacement. Running it as a single script is what makes two
// racing rotations of the same token resolve to exactly one winner.
var rotateScript = redis.NewScript(`
local removed = redis.call('SREM', KEYS[1], ARGV[1])
if removed == 0 then
  return 0
end
redis.call('SADD', KEYS[1], ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisStore keeps each subject's sessions in a Redis SET. The key expires
// with the refresh lifetime, so abandoned sets age out on their own; expired
// member tokens are additionally reaped lazily when next presented.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func key(subject string) string { return keyPrefix + subject }

func (s *RedisStore) Add(ctx context.Context, subject, token string, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key(subject), token)
	pipe.Expire(ctx, key(subject), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Remove(ctx context.Context, subject, token string) (bool, error) {
	n, err := s.rdb.SRem(ctx, key(subject), token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Contains(ctx context.Context, subject, token string) (bool, error) {
	return s.rdb.SIsMember(ctx, key(subject), token).Result()
}

func (s *RedisStore) Rotate(ctx context.Context, subject, old, new string, ttl time.Duration) (bool, error) {
	res, err := rotateScript.Run(ctx, s.rdb, []string{key(subject)},
		old, new, int64(ttl/time.Second)).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (s *RedisStore) Clear(ctx context.Context, subject string) error {
	return s.rdb.Del(ctx, key(subject)).Err()
}
