package clog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// 标准 Context 键，配合 WithStandardContext 使用
const (
	RequestIDKey ctxKey = "request_id"
	ScopeKey     ctxKey = "scope"
)

// WithRequestID 将请求 ID 写入 Context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// extractContextFields 按规则从 ctx 中提取字段追加到 attrs
func extractContextFields(ctx context.Context, o *options, attrs []slog.Attr) []slog.Attr {
	if ctx == nil || o == nil {
		return attrs
	}

	for _, cf := range o.contextFields {
		if val := ctx.Value(cf.Key); val != nil {
			attrs = append(attrs, slog.Any(cf.FieldName, val))
		}
	}

	if o.enableTraceExtraction {
		sc := trace.SpanContextFromContext(ctx)
		if sc.IsValid() {
			attrs = append(attrs,
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
	}
	return attrs
}
