package infrastructure

import (
	"context"
	"fmt"

	"gatewaymonitor/events"
	"gatewaymonitor/models"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// RedisStatusStore keeps the gateway health flag that routers read before choosing a gateway
type RedisStatusStore struct {
	client *redis.Client
}

// NewRedisStatusStore connects to Redis using a redis:// URL
func NewRedisStatusStore(ctx context.Context, redisURL string) (*RedisStatusStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return &RedisStatusStore{client: client}, nil
}

// HealthKey is the key holding the health flag of a gateway
func HealthKey(gateway string) string {
	return "health:" + gateway
}

// PendingCountKey is the key holding the last observed pending count of a gateway
func PendingCountKey(gateway string) string {
	return HealthKey(gateway) + ":pending_count"
}

// Register subscribes the store to completed runs
func (s *RedisStatusStore) Register(bus *events.Bus) {
	bus.Subscribe(s.Handle, events.EventTypeRunCompleted)
}

// Handle records the outcome of a completed run. Skipped runs leave the flag untouched.
func (s *RedisStatusStore) Handle(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.RunCompletedEvent)
	if !ok || completed.Status == models.RunStatusSkipped {
		return nil
	}

	healthy := !completed.DeactivationTriggered

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, HealthKey(completed.Gateway), healthy, 0)
		pipe.Set(ctx, PendingCountKey(completed.Gateway), completed.PendingCount, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store gateway health: %w", err)
	}

	log.WithFields(log.Fields{
		"gateway": completed.Gateway,
		"healthy": healthy,
	}).Debug("Stored gateway health")

	return nil
}

// Healthy reads the health flag. A missing flag counts as healthy.
func (s *RedisStatusStore) Healthy(ctx context.Context, gateway string) (bool, error) {
	healthy, err := s.client.Get(ctx, HealthKey(gateway)).Bool()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read gateway health: %w", err)
	}
	return healthy, nil
}

// Close closes the Redis client
func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}
