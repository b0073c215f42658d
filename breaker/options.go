package breaker

import (
	"context"
	"errors"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

// Option 熔断器选项
type Option func(*options)

// FallbackFunc 熔断打开时的降级逻辑，返回 nil 表示降级成功
type FallbackFunc func(ctx context.Context, key string, err error) error

type options struct {
	logger       clog.Logger
	meter        metrics.Meter
	fallback     FallbackFunc
	isSuccessful func(err error) bool
}

// WithLogger 设置日志记录器，自动追加 "breaker" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("breaker")
		}
	}
}

// WithMeter 设置指标收集器
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithFallback 设置降级函数
func WithFallback(fallback FallbackFunc) Option {
	return func(o *options) {
		o.fallback = fallback
	}
}

// WithSuccessPredicate 自定义哪些错误不计入失败
//
// 默认 nil 与 context.Canceled 视为成功：调用方放弃不代表下游故障。
func WithSuccessPredicate(fn func(err error) bool) Option {
	return func(o *options) {
		if fn != nil {
			o.isSuccessful = fn
		}
	}
}

func defaultIsSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
