package trace

import "github.com/ceyewan/blockseq/xerrors"

// Config 链路追踪配置
//
//	trace:
//	  enabled: true
//	  service_name: "blockseq"
//	  endpoint: "localhost:4317"
//	  sampler: 0.1
type Config struct {
	// Enabled 为 false 时只生成 TraceID，不导出
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Sampler     float64 `mapstructure:"sampler"`
	// Batcher "batch"（默认）或 "simple"
	Batcher  string `mapstructure:"batcher"`
	Insecure bool   `mapstructure:"insecure"`
}

// DefaultConfig 本地 OTLP collector 的默认配置
func DefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Endpoint:    "localhost:4317",
		Sampler:     1.0,
		Batcher:     "batch",
		Insecure:    true,
	}
}

func (c *Config) validate() error {
	if c == nil {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "trace_config_required")
	}
	if c.ServiceName == "" {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "service_name_required")
	}
	if c.Endpoint == "" {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "endpoint_required")
	}
	if c.Sampler < 0 || c.Sampler > 1 {
		return xerrors.Wrapf(xerrors.WithCode(xerrors.ErrInvalidInput, "sampler_out_of_range"), "sampler %v", c.Sampler)
	}
	if c.Batcher != "" && c.Batcher != "batch" && c.Batcher != "simple" {
		return xerrors.Wrapf(xerrors.WithCode(xerrors.ErrInvalidInput, "unknown_batcher"), "batcher %q", c.Batcher)
	}
	return nil
}
