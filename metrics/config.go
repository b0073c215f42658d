package metrics

import (
	"strings"

	"github.com/ceyewan/blockseq/xerrors"
)

// Config 指标配置
//
//	metrics:
//	  enabled: true
//	  service_name: "blockseq"
//	  path: "/metrics"
//	  enable_runtime_stats: true
type Config struct {
	// Enabled 为 false 时 New 返回 Discard
	Enabled bool `mapstructure:"enabled"`

	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`

	// Port 大于 0 时单独启动 Prometheus HTTP 服务；为 0 时由调用方挂载 Meter.Handler()
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`

	// EnableRuntimeStats 采集 Go 运行时指标（GC、goroutine、内存）
	EnableRuntimeStats bool `mapstructure:"enable_runtime_stats"`
}

// NewDevDefaultConfig 开发环境默认配置：启用、不单独监听端口
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:            true,
		ServiceName:        serviceName,
		Version:            "dev",
		Path:               "/metrics",
		EnableRuntimeStats: true,
	}
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "blockseq"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "metrics_port_out_of_range")
	}
	if !strings.HasPrefix(c.Path, "/") {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "metrics_path_must_start_with_slash")
	}
	return nil
}
