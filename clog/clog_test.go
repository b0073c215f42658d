package clog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ceyewan/blockseq/xerrors"
)

func newBufferLogger(t *testing.T, level string, opts ...Option) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append(opts, withBuffer(&buf))
	logger, err := New(&Config{Level: level, Format: "json", Output: "buffer"}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("日志行不是合法 JSON: %v (%s)", err, line)
		}
		out = append(out, entry)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "valid config", config: &Config{Level: "info", Format: "console", Output: "stdout"}},
		{name: "nil config", config: nil},
		{name: "empty config uses defaults", config: &Config{}},
		{name: "invalid level", config: &Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", config: &Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() 返回 nil logger")
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, buf)
	want := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if len(entries) != len(want) {
		t.Fatalf("期望 %d 行日志，实际 %d", len(want), len(entries))
	}
	for i, entry := range entries {
		if entry["level"] != want[i] {
			t.Errorf("第 %d 行 level = %v，期望 %s", i, entry["level"], want[i])
		}
	}
}

func TestLoggerSetLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")
	child := logger.WithNamespace("idgen")

	child.Debug("filtered")
	if err := logger.SetLevel(DebugLevel); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	child.Debug("visible")

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("期望 1 行日志，实际 %d", len(entries))
	}
	if entries[0]["msg"] != "visible" {
		t.Errorf("msg = %v，期望 visible", entries[0]["msg"])
	}
}

func TestLoggerFatal(t *testing.T) {
	var code int
	orig := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = orig })

	logger, buf := newBufferLogger(t, "info")
	logger.Fatal("boom")

	if code != 1 {
		t.Errorf("exit code = %d，期望 1", code)
	}
	entries := decodeLines(t, buf)
	if len(entries) != 1 || entries[0]["level"] != "FATAL" {
		t.Errorf("期望一条 FATAL 日志，实际 %v", entries)
	}
}

func TestLoggerNamespaceAndWith(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug", WithNamespace("blockseq"))

	base := logger.WithNamespace("idgen").With(String("component", "allocator"))
	sibling := base.With(String("scope", "orders"))
	base.Info("base")
	sibling.Info("sibling")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("期望 2 行日志，实际 %d", len(entries))
	}
	for _, e := range entries {
		if e[NamespaceKey] != "blockseq.idgen" {
			t.Errorf("namespace = %v，期望 blockseq.idgen", e[NamespaceKey])
		}
		if e["component"] != "allocator" {
			t.Errorf("component = %v，期望 allocator", e["component"])
		}
	}
	if _, ok := entries[0]["scope"]; ok {
		t.Error("派生 Logger 的字段不应影响父 Logger")
	}
	if entries[1]["scope"] != "orders" {
		t.Errorf("scope = %v，期望 orders", entries[1]["scope"])
	}
}

func TestLoggerContextFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug", WithStandardContext())

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = context.WithValue(ctx, ScopeKey, "orders")
	logger.InfoContext(ctx, "with context")
	logger.InfoContext(context.Background(), "without context")

	entries := decodeLines(t, buf)
	if entries[0]["request_id"] != "req-1" || entries[0]["scope"] != "orders" {
		t.Errorf("Context 字段未提取: %v", entries[0])
	}
	if _, ok := entries[1]["request_id"]; ok {
		t.Error("空 Context 不应产生 request_id")
	}
}

func TestErrorFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	coded := xerrors.WithCode(errors.New("seed is abc"), "corrupt_seed")
	logger.Error("plain", Error(errors.New("timeout")))
	logger.Error("coded", ErrorWithCode(coded, ""))
	logger.Error("nil error", Error(nil))

	entries := decodeLines(t, buf)
	if entries[0]["err_msg"] != "timeout" {
		t.Errorf("err_msg = %v", entries[0]["err_msg"])
	}

	group, ok := entries[1]["error"].(map[string]any)
	if !ok {
		t.Fatalf("error 字段应为对象: %v", entries[1])
	}
	if group["code"] != "corrupt_seed" {
		t.Errorf("code = %v，期望 corrupt_seed", group["code"])
	}

	if _, ok := entries[2]["err_msg"]; ok {
		t.Error("Error(nil) 不应输出 err_msg")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"trace", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v，期望 %v", tt.in, got, tt.want)
			}
		})
	}

	if FatalLevel.String() != "fatal" {
		t.Errorf("FatalLevel.String() = %q", FatalLevel.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Info("ignored")
	if logger.WithNamespace("x").With(String("k", "v")) == nil {
		t.Error("Discard 派生 Logger 不应为 nil")
	}
	if err := logger.SetLevel(DebugLevel); err != nil {
		t.Errorf("SetLevel() error = %v", err)
	}
}

func TestConsoleFormatWithSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: "info", Format: "console", Output: "buffer", AddSource: true}, withBuffer(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("console message", Int("n", 3))

	out := buf.String()
	for _, want := range []string{"level=INFO", "console message", "n=3", "caller=clog/clog_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("输出缺少 %q: %s", want, out)
		}
	}
}
