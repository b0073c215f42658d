// Package breaker 提供按 key 隔离的熔断器，基于 sony/gobreaker v2。
//
// 每个 key（例如 "store:redis"）拥有独立的熔断器，首次使用时创建。
// 熔断打开期间调用直接返回 ErrOpenState，不再访问下游。
//
//	brk, _ := breaker.New(&breaker.Config{FailureRatio: 0.5, MinimumRequests: 20},
//		breaker.WithLogger(logger), breaker.WithMeter(meter))
//
//	v, err := brk.Execute(ctx, "store:redis", func() (any, error) {
//		return client.Get(ctx, key).Result()
//	})
package breaker

import (
	"context"
	"time"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

// Breaker 熔断器
type Breaker interface {
	// Execute 在 key 对应的熔断器保护下执行 fn
	Execute(ctx context.Context, key string, fn func() (any, error)) (any, error)

	// State 返回 key 对应熔断器的状态，未使用过的 key 视为 Closed
	State(key string) (State, error)
}

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态允许通过的探测请求数，默认 1
	MaxRequests uint32 `mapstructure:"max_requests"`

	// Interval 闭合状态下清空统计的周期，0 表示不清空
	Interval time.Duration `mapstructure:"interval"`

	// Timeout 打开状态持续时间，默认 60s
	Timeout time.Duration `mapstructure:"timeout"`

	// FailureRatio 失败率阈值，默认 0.6
	FailureRatio float64 `mapstructure:"failure_ratio"`

	// MinimumRequests 统计窗口内达到该请求数才会判断失败率，默认 10
	MinimumRequests uint32 `mapstructure:"minimum_requests"`
}

func (c *Config) setDefaults() {
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.6
	}
	if c.MinimumRequests == 0 {
		c.MinimumRequests = 10
	}
}

// New 创建熔断器
func New(cfg *Config, opts ...Option) (Breaker, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	c := *cfg
	c.setDefaults()
	if c.FailureRatio > 1 {
		return nil, ErrInvalidRatio
	}

	o := options{
		logger:       clog.Discard(),
		meter:        metrics.Discard(),
		isSuccessful: defaultIsSuccessful,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cb, err := newCircuitBreaker(&c, &o)
	if err != nil {
		return nil, err
	}

	o.logger.Info("circuit breaker created",
		clog.Int("max_requests", int(c.MaxRequests)),
		clog.Duration("timeout", c.Timeout),
		clog.Float64("failure_ratio", c.FailureRatio),
		clog.Int("minimum_requests", int(c.MinimumRequests)))
	return cb, nil
}
