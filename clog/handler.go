package clog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// newHandler 按配置构造 slog.Handler，返回共享的 LevelVar 用于动态调级
func newHandler(config *Config, o *options) (slog.Handler, *slog.LevelVar, error) {
	w, err := openOutput(config.Output, o)
	if err != nil {
		return nil, nil, err
	}

	level, _ := ParseLevel(config.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level.slogLevel())

	hopts := &slog.HandlerOptions{
		AddSource:   config.AddSource,
		Level:       levelVar,
		ReplaceAttr: replaceAttr(config.SourceRoot),
	}

	if strings.EqualFold(config.Format, "json") {
		return slog.NewJSONHandler(w, hopts), levelVar, nil
	}
	return slog.NewTextHandler(w, hopts), levelVar, nil
}

func openOutput(output string, o *options) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "buffer":
		if o.buffer == nil {
			return nil, fmt.Errorf("buffer output requires a test buffer")
		}
		return o.buffer, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// replaceAttr 统一级别大写、时间格式，并把 source 压缩为 caller=file:line
func replaceAttr(sourceRoot string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.LevelKey:
			if lvl, ok := a.Value.Any().(slog.Level); ok {
				a.Value = slog.StringValue(levelLabel(lvl))
			}
		case slog.TimeKey:
			if a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().Format(timeFormat))
			}
		case slog.SourceKey:
			if src, ok := a.Value.Any().(*slog.Source); ok {
				return slog.String("caller", fmt.Sprintf("%s:%d", trimSource(src.File, sourceRoot), src.Line))
			}
		}
		return a
	}
}

func levelLabel(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "DEBUG"
	case l <= slog.LevelInfo:
		return "INFO"
	case l <= slog.LevelWarn:
		return "WARN"
	case l <= slog.LevelError:
		return "ERROR"
	default:
		return "FATAL"
	}
}

func trimSource(file, root string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
}
