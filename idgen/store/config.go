package store

import (
	"time"

	"github.com/ceyewan/blockseq/xerrors"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverEtcd   = "etcd"
	DriverNATS   = "nats"
	DriverSQL    = "sql"
)

// Config 种子存储配置
type Config struct {
	// Driver 后端类型: "memory" | "redis" | "etcd" | "nats" | "sql"，默认 "memory"
	Driver string `mapstructure:"driver"`

	// KeyPrefix Redis / Etcd 键前缀，默认 "blockseq:seed:"
	KeyPrefix string `mapstructure:"key_prefix"`

	// Bucket NATS KV 桶名，默认 "blockseq_seeds"
	Bucket string `mapstructure:"bucket"`

	// Table SQL 表名，默认 "blockseq_seeds"
	Table string `mapstructure:"table"`

	// CacheSize 已知存在的 scope 缓存容量，默认 10000
	CacheSize int `mapstructure:"cache_size"`

	// OpTimeout 单次远端调用超时，默认 5s；负数表示不限制
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "blockseq:seed:"
	}
	if c.Bucket == "" {
		c.Bucket = "blockseq_seeds"
	}
	if c.Table == "" {
		c.Table = "blockseq_seeds"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 10000
	}
	if c.OpTimeout == 0 {
		c.OpTimeout = 5 * time.Second
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis, DriverEtcd, DriverNATS, DriverSQL:
	default:
		return xerrors.WithCode(ErrInvalidInput, "unsupported_driver")
	}
	if c.CacheSize < 0 {
		return xerrors.WithCode(ErrInvalidInput, "cache_size_cannot_be_negative")
	}
	return nil
}
