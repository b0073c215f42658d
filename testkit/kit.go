// Package testkit 提供测试共用的依赖与容器化后端。
//
// 容器类辅助函数基于 testcontainers-go，生命周期由 t.Cleanup 管理，
// 仅应在带 integration 构建标签的测试中使用。
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

// Kit 包含通用的测试依赖
type Kit struct {
	Ctx    context.Context
	Logger clog.Logger
	Meter  metrics.Meter
}

// NewKit 返回一个包含默认依赖的测试工具包，Meter 在测试结束时关闭
func NewKit(t *testing.T) *Kit {
	meter := NewMeter()
	t.Cleanup(func() { _ = meter.Shutdown(context.Background()) })
	return &Kit{
		Ctx:    context.Background(),
		Logger: NewLogger(),
		Meter:  meter,
	}
}

// NewLogger 返回开发环境格式的 logger，适合本地调试
func NewLogger() clog.Logger {
	logger, err := clog.New(clog.NewDevDefaultConfig("blockseq-test"))
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewMeter 返回独立注册表的 meter，可通过 Handler() 抓取指标
func NewMeter() metrics.Meter {
	meter, err := metrics.New(metrics.NewDevDefaultConfig("test"))
	if err != nil {
		return metrics.Discard()
	}
	return meter
}

// NewContext 返回一个带有超时的测试上下文
func NewContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// NewID 返回一个唯一的测试 ID (UUID v4 前 8 位)
// 用于生成唯一的 scope、键前缀或表名后缀，避免测试间数据冲突
func NewID() string {
	return uuid.New().String()[0:8]
}
