package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ceyewan/blockseq/xerrors"
)

const (
	MetricHTTPServerRequestTotal    = "http_server_requests_total"
	MetricHTTPServerDurationSeconds = "http_server_request_duration_seconds"
)

// DefaultHTTPDurationBuckets HTTP 耗时分桶（秒）
var DefaultHTTPDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HTTPServerMetrics HTTP 服务端 RED 指标
type HTTPServerMetrics struct {
	service      string
	requestTotal Counter
	duration     Histogram
}

// NewHTTPServerMetrics 在 m 上注册请求计数与耗时直方图
func NewHTTPServerMetrics(m Meter, service string) (*HTTPServerMetrics, error) {
	if m == nil {
		return nil, xerrors.WithCode(xerrors.ErrInvalidInput, "meter_required")
	}
	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}

	total, err := m.Counter(MetricHTTPServerRequestTotal, "Total number of HTTP requests.")
	if err != nil {
		return nil, err
	}
	duration, err := m.Histogram(MetricHTTPServerDurationSeconds, "HTTP request duration in seconds.",
		WithUnit("s"), WithBuckets(DefaultHTTPDurationBuckets))
	if err != nil {
		return nil, err
	}

	return &HTTPServerMetrics{service: service, requestTotal: total, duration: duration}, nil
}

// Observe 记录一次请求；route 应为路由模板而非原始路径
func (m *HTTPServerMetrics) Observe(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if route = strings.TrimSpace(route); route == "" {
		route = UnknownRoute
	}

	labels := []Label{
		L(LabelService, m.service),
		L(LabelOperation, OperationHTTPServer),
		L(LabelMethod, method),
		L(LabelRoute, route),
		L(LabelStatusClass, HTTPStatusClass(status)),
		L(LabelOutcome, HTTPOutcome(status)),
	}
	m.requestTotal.Inc(ctx, labels...)
	m.duration.Record(ctx, elapsed.Seconds(), labels...)
}
