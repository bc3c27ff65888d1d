package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelsos/wallet-tracker/internal/logger"
)

// RedisOptions configures the connection used by RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps the ledger in a single Redis set.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient opens a client for the ledger. The connection is checked
// lazily on first use so that an unreachable server degrades like a missing
// ledger file.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) String() string {
	return fmt.Sprintf("redis:%s/%s", s.client.Options().Addr, s.key)
}

func (s *RedisStore) Load(ctx context.Context) *Ledger {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		logger.Warn("Failed to load ledger from %s, treating every event as new: %v", s, err)
		return New()
	}

	logger.Debug("Loaded %d seen event ids from %s", len(ids), s)
	return New(ids...)
}

// Save adds every id to the set in one SADD. The ledger never shrinks, so a
// union with the stored set is equivalent to replacing it, and a single
// command is applied atomically by the server.
func (s *RedisStore) Save(ctx context.Context, l *Ledger) error {
	ids := l.IDs()
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("failed to save ledger to %s: %w", s, err)
	}

	logger.Debug("Saved %d seen event ids to %s", len(ids), s)
	return nil
}

// Close closes the underlying Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
