package store

import (
	"github.com/ceyewan/blockseq/breaker"
	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
)

// Option 存储初始化选项
type Option func(*options)

type options struct {
	logger  clog.Logger
	redis   connector.RedisConnector
	etcd    connector.EtcdConnector
	nats    connector.NATSConnector
	db      connector.DBConnector
	breaker breaker.Breaker
}

// WithLogger 设置 Logger，自动追加 "store" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("store")
		}
	}
}

// WithRedisConnector 设置 Redis 连接器
func WithRedisConnector(conn connector.RedisConnector) Option {
	return func(o *options) {
		o.redis = conn
	}
}

// WithEtcdConnector 设置 Etcd 连接器
func WithEtcdConnector(conn connector.EtcdConnector) Option {
	return func(o *options) {
		o.etcd = conn
	}
}

// WithNATSConnector 设置 NATS 连接器
func WithNATSConnector(conn connector.NATSConnector) Option {
	return func(o *options) {
		o.nats = conn
	}
}

// WithDBConnector 设置 GORM 连接器（MySQL / PostgreSQL / SQLite）
func WithDBConnector(conn connector.DBConnector) Option {
	return func(o *options) {
		o.db = conn
	}
}

// WithBreaker 为每次存储调用启用熔断保护
func WithBreaker(brk breaker.Breaker) Option {
	return func(o *options) {
		o.breaker = brk
	}
}
