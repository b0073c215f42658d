// Package clog 是 blockseq 的结构化日志组件，基于标准库 slog。
//
// 特性：
//   - 接口化，调用方不感知 slog
//   - 层级命名空间：logger.WithNamespace("idgen", "store")
//   - 从 Context 中提取字段（request_id、OTel trace_id 等）
//   - 运行时调整级别，可与 config 热更新联动
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{Level: "info", Format: "json"},
//	    clog.WithNamespace("blockseq"),
//	    clog.WithTraceContext(),
//	)
//	logger.Info("block reserved", clog.String("scope", "orders"), clog.Int64("max", 200))
package clog

import "context"

// Logger 日志接口
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// 带 Context 的版本会按 Option 配置提取 Context 字段
	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	// With 返回带预设字段的子 Logger，不影响父 Logger
	With(fields ...Field) Logger

	// WithNamespace 在现有命名空间后追加层级，以 "." 连接
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整级别，对同一根 Logger 派生出的所有子 Logger 生效
	SetLevel(level Level) error

	// Flush 同步缓冲区
	Flush()
}
