// Package redis builds the shared go-redis client behind the session and
// settings stores.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"m8translate/internal/platform/config"
)

const (
	connectAttempts = 3
	connectBackoff  = 500 * time.Millisecond
)

// Client is the process-wide Redis connection pool.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings it, retrying briefly while the server
// starts. It returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx).Err()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed after %d attempts: %w", attempt, err)
		}
		logger.WarnContext(ctx, "redis not ready, retrying",
			"addr", redactedAddr(cfg.URL),
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(connectBackoff * time.Duration(attempt)):
		}
	}

	logger.InfoContext(ctx, "redis connected", "addr", redactedAddr(cfg.URL), "db", opts.DB)
	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exports connection pool gauges on reg.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	gauges := []struct {
		name string
		help string
		read func(*redis.PoolStats) uint32
	}{
		{"redis_pool_total_connections", "Connections currently held by the Redis pool.", func(s *redis.PoolStats) uint32 { return s.TotalConns }},
		{"redis_pool_idle_connections", "Idle connections in the Redis pool.", func(s *redis.PoolStats) uint32 { return s.IdleConns }},
		{"redis_pool_timeouts_total", "Times a caller waited too long for a pooled connection.", func(s *redis.PoolStats) uint32 { return s.Timeouts }},
	}
	for _, g := range gauges {
		read := g.read
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "m8translate",
			Name:      g.name,
			Help:      g.help,
		}, func() float64 { return float64(read(c.PoolStats())) })
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register %s: %w", g.name, err)
		}
	}
	return nil
}

// redactedAddr drops credentials and path from a redis URL for logging.
func redactedAddr(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Scheme + "://" + u.Host
}
