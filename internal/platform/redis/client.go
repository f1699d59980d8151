package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"unitgate/internal/platform/config"
)

var (
	poolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitgate_redis_pool_hits_total",
		Help: "Number of times a connection was found in the pool",
	})
	poolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitgate_redis_pool_misses_total",
		Help: "Number of times a connection was not found in the pool",
	})
	poolTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitgate_redis_pool_timeouts_total",
		Help: "Number of times a connection was not obtained due to timeout",
	})
	poolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unitgate_redis_pool_total_conns",
		Help: "Number of total connections in the pool",
	})
	poolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unitgate_redis_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})
)

// Client embeds go-redis so callers use the full command set directly.
type Client struct {
	*redis.Client
	lastStats *redis.PoolStats
}

// New parses the URL, applies pool settings and pings. Returns nil, nil when
// Redis is not configured.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Wrap adopts an existing go-redis client, e.g. one pointed at a test container.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RecordPoolStats publishes pool gauges and the counter deltas since the last call.
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()
	poolTotalConns.Set(float64(stats.TotalConns))
	poolIdleConns.Set(float64(stats.IdleConns))

	var prev redis.PoolStats
	if c.lastStats != nil {
		prev = *c.lastStats
	}
	if stats.Hits > prev.Hits {
		poolHits.Add(float64(stats.Hits - prev.Hits))
	}
	if stats.Misses > prev.Misses {
		poolMisses.Add(float64(stats.Misses - prev.Misses))
	}
	if stats.Timeouts > prev.Timeouts {
		poolTimeouts.Add(float64(stats.Timeouts - prev.Timeouts))
	}
	c.lastStats = stats
}

// RunPoolStats records pool stats every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}
