package replica

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldColor   = "color"
	fieldProfile = "profile"
	statePrefix  = "state:"
)

// RedisStore keeps one participant's record in a Redis hash so every peer
// sharing the server sees the same fields. State keys live under "state:<key>",
// presentation data under "color" and "profile".
//
// Every call is bounded by the configured timeout; the record is small and the
// server is expected to be local to the session.
type RedisStore struct {
	rdb     redis.Cmdable
	id      string
	key     string
	timeout time.Duration
}

// NewRedisStore binds a participant id to its hash "<prefix>participant:<id>".
func NewRedisStore(rdb redis.Cmdable, prefix, id string, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	return &RedisStore{
		rdb:     rdb,
		id:      id,
		key:     prefix + "participant:" + id,
		timeout: timeout,
	}
}

// Key returns the Redis hash holding this record.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) ID() (string, error) { return s.id, nil }

func (s *RedisStore) hget(field string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	v, err := s.rdb.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: hget %s %s: %w", ErrUnavailable, s.key, field, err)
	}
	return v, true, nil
}

func (s *RedisStore) hset(field string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.rdb.HSet(ctx, s.key, field, value).Err(); err != nil {
		return fmt.Errorf("%w: hset %s %s: %w", ErrUnavailable, s.key, field, err)
	}
	return nil
}

func (s *RedisStore) Get(key string) (json.RawMessage, bool, error) {
	v, ok, err := s.hget(statePrefix + key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return json.RawMessage(v), true, nil
}

func (s *RedisStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.hset(statePrefix+key, string(raw))
}

func (s *RedisStore) Color() (string, error) {
	v, _, err := s.hget(fieldColor)
	return v, err
}

func (s *RedisStore) Profile() (*Profile, error) {
	v, ok, err := s.hget(fieldProfile)
	if err != nil || !ok {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// PublishColor writes the participant's color field.
func (s *RedisStore) PublishColor(c string) error {
	return s.hset(fieldColor, c)
}

// PublishProfile writes the participant's profile field.
func (s *RedisStore) PublishProfile(p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.hset(fieldProfile, string(raw))
}

// Forget deletes the whole record.
func (s *RedisStore) Forget(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
