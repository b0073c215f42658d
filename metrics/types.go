package metrics

import (
	"context"
	"net/http"
)

// Counter 单调递增计数器
type Counter interface {
	Inc(ctx context.Context, labels ...Label)
	// Add 增加 val，负值会被丢弃
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 可增可减的瞬时值
type Gauge interface {
	Set(ctx context.Context, val float64, labels ...Label)
	Inc(ctx context.Context, labels ...Label)
	Dec(ctx context.Context, labels ...Label)
}

// Histogram 分布统计，例如号段获取耗时
type Histogram interface {
	Record(ctx context.Context, val float64, labels ...Label)
}

// Meter 指标工厂
//
// 同名指标重复创建时返回同一底层 instrument，可安全并发使用。
type Meter interface {
	Counter(name string, desc string, opts ...MetricOption) (Counter, error)
	Gauge(name string, desc string, opts ...MetricOption) (Gauge, error)
	Histogram(name string, desc string, opts ...MetricOption) (Histogram, error)

	// Handler 返回 Prometheus 抓取端点
	Handler() http.Handler

	// Shutdown 刷新并关闭，之后的记录被丢弃
	Shutdown(ctx context.Context) error
}

// MetricOption 单个指标的选项
type MetricOption func(*MetricOptions)

// MetricOptions 单个指标的选项集合
type MetricOptions struct {
	// Unit UCUM 单位，例如 "s"、"By"、"{id}"
	Unit string

	// Buckets 直方图显式分桶边界，仅对 Histogram 生效
	Buckets []float64
}

// WithUnit 设置单位
func WithUnit(unit string) MetricOption {
	return func(o *MetricOptions) {
		o.Unit = unit
	}
}

// WithBuckets 设置直方图分桶边界（升序）
func WithBuckets(buckets []float64) MetricOption {
	return func(o *MetricOptions) {
		o.Buckets = append([]float64(nil), buckets...)
	}
}

func applyMetricOptions(opts []MetricOption) *MetricOptions {
	o := &MetricOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
