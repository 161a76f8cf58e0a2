package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"jotjot/internal/domain"
)

// pingTimeout bounds the connectivity check done when the store is opened.
const pingTimeout = 5 * time.Second

// RedisStore implements ContentStore on a Redis server.
type RedisStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisStore connects to the server at redisURL and verifies it answers.
func NewRedisStore(redisURL string, logger logrus.FieldLogger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.WithError(err).Error("Failed to connect to Redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.WithField("addr", opt.Addr).Info("Connected to Redis")

	return &RedisStore{
		client: client,
		log:    logger.WithField("component", "store"),
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	s.log.Info("Closing Redis connection...")
	return s.client.Close()
}

// Create stores content under jot:{id} with SET NX so an existing key is
// never overwritten.
func (s *RedisStore) Create(ctx context.Context, id string, content string, ttl time.Duration) error {
	log := s.log.WithField("id", id)

	ok, err := s.client.SetNX(ctx, domain.ShareKey(id), content, ttl).Result()
	if err != nil {
		log.WithError(err).Error("Failed to write share to Redis")
		return fmt.Errorf("failed to save share %s: %w", id, err)
	}
	if !ok {
		log.Warn("Share key already taken")
		return fmt.Errorf("create share %s: %w", id, domain.ErrConflict)
	}

	log.WithField("ttl", ttl.String()).Debug("Share saved")
	return nil
}

// Get retrieves the content stored under jot:{id}.
func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	content, err := s.client.Get(ctx, domain.ShareKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("get share %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Failed to read share from Redis")
		return "", fmt.Errorf("failed to get share %s: %w", id, err)
	}
	return content, nil
}
