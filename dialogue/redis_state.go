package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-mindgarden/logger"
	"go-mindgarden/types"
)

const (
	lockTTL      = 5 * time.Second
	lockRetryMin = 2 * time.Millisecond
	lockRetryMax = 50 * time.Millisecond
)

// Deletes the lock only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStateStore shares conversation state across server replicas. Keys expire
// after ttl of inactivity, so Sweep has nothing to do.
//
// Updates to one conversation are serialized by a per-key lock, so fn runs
// exactly once per Update and waits on contention instead of failing.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis state store initialized", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return &RedisStateStore{client: client, ttl: ttl}, nil
}

func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

func lockKey(id string) string {
	return fmt.Sprintf("conversation:%s:lock", id)
}

func (s *RedisStateStore) Update(ctx context.Context, conversationID string, fn func(types.ConversationState) (types.ConversationState, error)) error {
	unlock, err := s.lock(ctx, conversationID)
	if err != nil {
		return err
	}
	defer unlock()

	key := conversationKey(conversationID)

	// The WATCH fences the write in case the lock expired while fn ran.
	txf := func(tx *redis.Tx) error {
		cur, _, err := readState(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return errors.New("conversation state changed while locked")
	}
	return err
}

// lock takes the conversation's lock, backing off until it is free or ctx ends.
func (s *RedisStateStore) lock(ctx context.Context, conversationID string) (func(), error) {
	key := lockKey(conversationID)
	token := uuid.NewString()
	wait := lockRetryMin

	for {
		ok, err := s.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return nil, fmt.Errorf("failed to acquire conversation lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("failed to acquire conversation lock: %w", ctx.Err())
		case <-timer.C:
		}
		if wait *= 2; wait > lockRetryMax {
			wait = lockRetryMax
		}
	}

	unlock := func() {
		rctx := context.WithoutCancel(ctx)
		if err := unlockScript.Run(rctx, s.client, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release conversation lock", logger.ConversationID(conversationID), zap.Error(err))
		}
	}
	return unlock, nil
}

func (s *RedisStateStore) Get(ctx context.Context, conversationID string) (types.ConversationState, bool, error) {
	return readState(ctx, s.client, conversationKey(conversationID))
}

func (s *RedisStateStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, conversationKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

type stateGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readState(ctx context.Context, c stateGetter, key string) (types.ConversationState, bool, error) {
	var st types.ConversationState

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("failed to get conversation state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, false, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}
	return st, true, nil
}
