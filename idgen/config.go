package idgen

import (
	"time"

	"github.com/ceyewan/blockseq/xerrors"
)

// Config 号段分配器配置，作为每次调用的默认值
type Config struct {
	// BatchSize 每次向存储预留的 ID 数量，默认 100
	BatchSize int `mapstructure:"batch_size"`

	// PrefetchPercent 剩余量不超过 BatchSize 的该百分比时后台预取下一号段，默认 25
	PrefetchPercent int `mapstructure:"prefetch_percent"`

	// DisablePrefetch 关闭预取，此时 PrefetchPercent 被忽略
	DisablePrefetch bool `mapstructure:"disable_prefetch"`

	// MaxWriteAttempts 单次号段获取允许的最大条件写次数，默认 25
	MaxWriteAttempts int `mapstructure:"max_write_attempts"`

	// PrefetchTimeout 后台预取的超时，0 表示只受存储自身超时约束
	PrefetchTimeout time.Duration `mapstructure:"prefetch_timeout"`
}

func (c *Config) setDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.DisablePrefetch {
		c.PrefetchPercent = 0
	} else if c.PrefetchPercent == 0 {
		c.PrefetchPercent = 25
	}
	if c.MaxWriteAttempts == 0 {
		c.MaxWriteAttempts = 25
	}
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return xerrors.WithCode(ErrInvalidInput, "batch_size_must_be_positive")
	}
	if c.PrefetchPercent < 0 || c.PrefetchPercent > 100 {
		return xerrors.WithCode(ErrInvalidInput, "prefetch_percent_out_of_range")
	}
	if c.MaxWriteAttempts < 1 {
		return xerrors.WithCode(ErrInvalidInput, "max_write_attempts_must_be_positive")
	}
	if c.PrefetchTimeout < 0 {
		return xerrors.WithCode(ErrInvalidInput, "prefetch_timeout_cannot_be_negative")
	}
	return nil
}
