package idgen

import (
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	logger         clog.Logger
	meter          metrics.Meter
	tracerProvider oteltrace.TracerProvider
}

func defaultOptions() options {
	return options{
		logger:         clog.Discard(),
		meter:          metrics.Discard(),
		tracerProvider: otel.GetTracerProvider(),
	}
}

// WithLogger 设置 Logger，自动追加 "idgen" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("idgen")
		}
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithTracerProvider 设置 TracerProvider，默认使用 otel 全局 Provider
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// NextOption 单次调用的覆盖参数
type NextOption func(*nextOptions)

type nextOptions struct {
	batchSize       int
	prefetchPercent int
}

// WithBatchSize 覆盖本次调用的号段大小
func WithBatchSize(n int) NextOption {
	return func(o *nextOptions) {
		o.batchSize = n
	}
}

// WithPrefetchPercent 覆盖本次调用的预取阈值百分比，0 表示不预取
func WithPrefetchPercent(p int) NextOption {
	return func(o *nextOptions) {
		o.prefetchPercent = p
	}
}
