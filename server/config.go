package server

import (
	"time"

	"github.com/ceyewan/blockseq/xerrors"
)

// Config HTTP 服务配置
type Config struct {
	// Addr 监听地址，默认 ":8080"
	Addr string `mapstructure:"addr"`

	// ServiceName 用于 span 与 HTTP 指标的 service 标签，默认 "blockseq"
	ServiceName string `mapstructure:"service_name"`

	// MaxRangeSize 单次 /ids 请求允许的最大数量，默认 1000
	MaxRangeSize int `mapstructure:"max_range_size"`

	// MaxBatchSize 查询参数 batch_size 允许的最大值，默认 10000
	MaxBatchSize int `mapstructure:"max_batch_size"`

	// RateLimit 每个客户端每秒请求数，0 表示不限流
	RateLimit float64 `mapstructure:"rate_limit"`

	// RateBurst 令牌桶容量，默认等于 RateLimit
	RateBurst int `mapstructure:"rate_burst"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// HealthTimeout 单个连接器探活超时，默认 2s
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ServiceName == "" {
		c.ServiceName = "blockseq"
	}
	if c.MaxRangeSize == 0 {
		c.MaxRangeSize = 1000
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 10000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.HealthTimeout == 0 {
		c.HealthTimeout = 2 * time.Second
	}
}

func (c *Config) validate() error {
	if c.MaxRangeSize < 0 {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "max_range_size_cannot_be_negative")
	}
	if c.MaxBatchSize < 0 {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "max_batch_size_cannot_be_negative")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return xerrors.WithCode(xerrors.ErrInvalidInput, "rate_limit_cannot_be_negative")
	}
	return nil
}
