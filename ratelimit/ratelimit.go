// Package ratelimit 提供按 key 隔离的进程内令牌桶限流，基于 golang.org/x/time/rate。
//
// 每个 key（默认是客户端 IP）拥有独立的令牌桶，空闲超过 IdleTimeout 后回收。
//
//	limiter, _ := ratelimit.New(&ratelimit.Config{Rate: 200, Burst: 400},
//		ratelimit.WithLogger(logger), ratelimit.WithMeter(meter))
//	defer limiter.Close()
//
//	r := gin.New()
//	r.Use(ratelimit.GinMiddleware(limiter, nil))
package ratelimit

import (
	"context"
	"time"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
	"github.com/ceyewan/blockseq/xerrors"
)

// Limiter 限流器
type Limiter interface {
	// Allow 尝试从 key 的令牌桶取 1 个令牌，不阻塞
	Allow(ctx context.Context, key string) (bool, error)

	// Close 停止后台回收
	Close() error
}

// Config 令牌桶配置
type Config struct {
	// Rate 每秒生成的令牌数，必须为正
	Rate float64 `mapstructure:"rate"`

	// Burst 令牌桶容量，默认等于 Rate 向上取整
	Burst int `mapstructure:"burst"`

	// IdleTimeout 空闲多久后回收 key 的令牌桶，默认 5m
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// CleanupInterval 回收检查周期，默认 1m
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func (c *Config) setDefaults() {
	if c.Burst == 0 && c.Rate > 0 {
		c.Burst = int(c.Rate)
		if float64(c.Burst) < c.Rate {
			c.Burst++
		}
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = time.Minute
	}
}

func (c *Config) validate() error {
	if c.Rate <= 0 {
		return xerrors.WithCode(ErrInvalidLimit, "rate_must_be_positive")
	}
	if c.Burst <= 0 {
		return xerrors.WithCode(ErrInvalidLimit, "burst_must_be_positive")
	}
	if c.IdleTimeout < 0 || c.CleanupInterval < 0 {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "durations_cannot_be_negative")
	}
	return nil
}

// New 创建限流器
func New(cfg *Config, opts ...Option) (Limiter, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	o := options{logger: clog.Discard(), meter: metrics.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	l, err := newLocal(&c, o.logger, o.meter)
	if err != nil {
		return nil, err
	}
	o.logger.Info("rate limiter created",
		clog.Float64("rate", c.Rate),
		clog.Int("burst", c.Burst),
		clog.Duration("idle_timeout", c.IdleTimeout))
	return l, nil
}
