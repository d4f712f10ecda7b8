package ratelimit

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Middleware enforces a per-client-IP request limit in front of the HTTP
// API. Redis errors fail open so a limiter outage never takes the API
// down with it.
type Middleware struct {
	config  Config
	client  *redis.Client
	limiter *Limiter
}

// New creates a rate limiting middleware and verifies the Redis
// connection.
func New(opts ...Option) (*Middleware, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.RedisAddr,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	return &Middleware{
		config:  config,
		client:  client,
		limiter: NewLimiter(client, config.KeyPrefix),
	}, nil
}

// Handler returns the Fiber handler enforcing the limit.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := m.limiter.Allow(c.UserContext(), c.IP(), m.config.Limit, m.config.Window)
		if err != nil {
			// Fail open on Redis errors.
			log.Printf("[ratelimit] Check failed, allowing request: %v", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		if !result.Allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, try again later",
			})
		}
		return c.Next()
	}
}

// Close releases the Redis connection.
func (m *Middleware) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
