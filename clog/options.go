package clog

import "bytes"

// ContextField 定义从 Context 中提取字段的规则
type ContextField struct {
	Key       any    // Context 中存储的键
	FieldName string // 日志中的字段名
}

// Option 函数式选项
type Option func(*options)

type options struct {
	namespaceParts        []string
	contextFields         []ContextField
	enableTraceExtraction bool
	buffer                *bytes.Buffer // 仅测试使用
}

// WithNamespace 设置日志命名空间，支持多级
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}

// WithContextField 添加自定义的 Context 字段提取规则
func WithContextField(key any, fieldName string) Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields, ContextField{Key: key, FieldName: fieldName})
	}
}

// WithStandardContext 提取 request_id 与 scope 两个常用字段
func WithStandardContext() Option {
	return func(o *options) {
		o.contextFields = append(o.contextFields,
			ContextField{Key: RequestIDKey, FieldName: "request_id"},
			ContextField{Key: ScopeKey, FieldName: "scope"},
		)
	}
}

// WithTraceContext 开启 OpenTelemetry trace_id / span_id 自动提取
func WithTraceContext() Option {
	return func(o *options) {
		o.enableTraceExtraction = true
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
