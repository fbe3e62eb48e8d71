package limiter

import (
	"fmt"
	"strings"

	"github.com/evyataryagoni/issflyover/internal/logger"
)

// Config holds configuration for creating a rate limiter
type Config struct {
	Type string // "none", "memory" or "redis"
	Rate Rate

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a rate limiter based on the configuration (factory pattern)
func New(cfg Config, log *logger.Logger) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "none", "":
		return Unlimited{}, nil

	case "memory":
		return NewMemoryLimiter(cfg.Rate), nil

	case "redis":
		lim, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Rate, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return lim, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'none', 'memory', 'redis')", cfg.Type)
	}
}
