package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skyresults/config"
	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     redis.Cmdable
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), flightsTTL)
}

func NewRedisCacheWithClient(client redis.Cmdable, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// GetFlights returns nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context, key string) ([]domain.FlightRecord, error) {
	data, err := c.client.Get(ctx, flightsKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.FlightRecord
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, key string, flights []domain.FlightRecord) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(key), payload, c.flightsTTL).Err()
}

func (c *RedisCache) SaveHandoff(ctx context.Context, handoff *domain.Handoff, ttl time.Duration) error {
	payload, err := json.Marshal(handoff)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, handoffKey(handoff.Token), payload, ttl).Err()
}

// LoadHandoff returns nil, nil when the token is unknown or expired.
func (c *RedisCache) LoadHandoff(ctx context.Context, token string) (*domain.Handoff, error) {
	data, err := c.client.Get(ctx, handoffKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var handoff domain.Handoff
	if err := json.Unmarshal(data, &handoff); err != nil {
		return nil, err
	}
	return &handoff, nil
}

func (c *RedisCache) SaveResults(ctx context.Context, id string, flights []domain.FlightRecord, ttl time.Duration) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultsKey(id), payload, ttl).Err()
}

// LoadResults returns nil, nil when the result set is unknown or expired.
func (c *RedisCache) LoadResults(ctx context.Context, id string) ([]domain.FlightRecord, error) {
	data, err := c.client.Get(ctx, resultsKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.FlightRecord
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func flightsKey(criteriaKey string) string {
	return "cache:flights:" + criteriaKey
}

func handoffKey(token string) string {
	return fmt.Sprintf("handoff:%s", token)
}

func resultsKey(id string) string {
	return fmt.Sprintf("results:%s", id)
}
