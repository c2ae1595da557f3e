package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "conversation:"

// redisStore keeps conversation state in Redis with a TTL, so abandoned
// conversations expire on their own.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore returns a Redis-backed Store. A zero TTL keeps entries until
// explicitly cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl, now: time.Now}
}

func redisKey(participantID int64) string {
	return redisKeyPrefix + strconv.FormatInt(participantID, 10)
}

func (s *redisStore) Get(ctx context.Context, participantID int64) (State, error) {
	raw, err := s.client.Get(ctx, redisKey(participantID)).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Unreadable state is treated as no state; the participant falls
		// back to the neutral mode.
		return State{}, nil
	}
	return state, nil
}

func (s *redisStore) Set(ctx context.Context, participantID int64, state State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = s.now()
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(participantID), raw, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, participantID int64) error {
	return s.client.Del(ctx, redisKey(participantID)).Err()
}

func (s *redisStore) Snapshot(ctx context.Context) (map[int64]State, error) {
	out := make(map[int64]State)

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.ParseInt(strings.TrimPrefix(key, redisKeyPrefix), 10, 64)
		if err != nil {
			continue
		}

		raw, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var state State
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			continue
		}
		if state.Active() {
			out[id] = state
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
