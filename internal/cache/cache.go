package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LegKey identifies one leg of an estimate request.
type LegKey struct {
	Origin      string `json:"o"`
	Destination string `json:"d"`
	DepartDate  string `json:"t"`
}

// EstimateKey identifies a flight-time estimate: the candidate aircraft
// models and the ordered legs.
type EstimateKey struct {
	Models []string `json:"m"`
	Legs   []LegKey `json:"l"`
}

// Cache stores per-leg flight durations in seconds.
type Cache interface {
	Get(ctx context.Context, key EstimateKey) ([]float64, bool)
	Set(ctx context.Context, key EstimateKey, seconds []float64) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      24 * time.Hour,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key EstimateKey) ([]float64, bool) {
	data, err := c.client.Get(ctx, generateKey(key)).Bytes()
	if err != nil {
		return nil, false
	}

	var seconds []float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return nil, false
	}
	if len(seconds) != len(key.Legs) {
		return nil, false
	}

	return seconds, true
}

func (c *RedisCache) Set(ctx context.Context, key EstimateKey, seconds []float64) error {
	data, err := json.Marshal(seconds)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(key), data, c.ttl).Err()
}

// Ping reports whether Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key EstimateKey) ([]float64, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, key EstimateKey, seconds []float64) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func generateKey(key EstimateKey) string {
	data, _ := json.Marshal(key)
	hash := sha256.Sum256(data)
	return "flighttime:" + hex.EncodeToString(hash[:])
}
