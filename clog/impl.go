package clog

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// NamespaceKey 是日志中命名空间的字段名
const NamespaceKey = "namespace"

// exitFunc 在 Fatal 之后调用，测试中可替换
var exitFunc = os.Exit

type loggerImpl struct {
	handler   slog.Handler
	levelVar  *slog.LevelVar
	options   *options
	namespace string
	baseAttrs []slog.Attr
}

func newLogger(config *Config, o *options) (Logger, error) {
	handler, levelVar, err := newHandler(config, o)
	if err != nil {
		return nil, err
	}
	return &loggerImpl{
		handler:   handler,
		levelVar:  levelVar,
		options:   o,
		namespace: strings.Join(o.namespaceParts, "."),
	}, nil
}

func (l *loggerImpl) Debug(msg string, fields ...Field) {
	l.log(context.Background(), DebugLevel, msg, fields)
}

func (l *loggerImpl) Info(msg string, fields ...Field) {
	l.log(context.Background(), InfoLevel, msg, fields)
}

func (l *loggerImpl) Warn(msg string, fields ...Field) {
	l.log(context.Background(), WarnLevel, msg, fields)
}

func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.log(context.Background(), ErrorLevel, msg, fields)
}

func (l *loggerImpl) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), FatalLevel, msg, fields)
}

func (l *loggerImpl) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, DebugLevel, msg, fields)
}

func (l *loggerImpl) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, InfoLevel, msg, fields)
}

func (l *loggerImpl) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, WarnLevel, msg, fields)
}

func (l *loggerImpl) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, ErrorLevel, msg, fields)
}

func (l *loggerImpl) FatalContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, FatalLevel, msg, fields)
}

func (l *loggerImpl) With(fields ...Field) Logger {
	child := *l
	child.baseAttrs = make([]slog.Attr, 0, len(l.baseAttrs)+len(fields))
	child.baseAttrs = append(child.baseAttrs, l.baseAttrs...)
	child.baseAttrs = append(child.baseAttrs, fields...)
	return &child
}

func (l *loggerImpl) WithNamespace(parts ...string) Logger {
	child := *l
	all := make([]string, 0, len(parts)+1)
	if l.namespace != "" {
		all = append(all, l.namespace)
	}
	all = append(all, parts...)
	child.namespace = strings.Join(all, ".")
	return &child
}

func (l *loggerImpl) SetLevel(level Level) error {
	l.levelVar.Set(level.slogLevel())
	return nil
}

// Flush slog handler 均为同步写入，无需刷新
func (l *loggerImpl) Flush() {}

func (l *loggerImpl) log(ctx context.Context, level Level, msg string, fields []Field) {
	if !l.handler.Enabled(ctx, level.slogLevel()) {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.baseAttrs)+len(fields)+4)
	if l.namespace != "" {
		attrs = append(attrs, slog.String(NamespaceKey, l.namespace))
	}
	attrs = append(attrs, l.baseAttrs...)
	for _, f := range fields {
		if f.Key != "" {
			attrs = append(attrs, f)
		}
	}
	attrs = extractContextFields(ctx, l.options, attrs)

	// skip: runtime.Callers, log, Info/Error 等
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level.slogLevel(), msg, pcs[0])
	record.AddAttrs(attrs...)

	_ = l.handler.Handle(ctx, record)

	if level == FatalLevel {
		exitFunc(1)
	}
}
