// Package connector 管理外部存储客户端的生命周期。
//
// 连接器负责创建、探活和关闭底层客户端；idgen/store 等组件只借用
// GetClient() 返回的客户端，不负责关闭。
//
//	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: "127.0.0.1:6379"},
//		connector.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
//	client := conn.GetClient()
//
// 释放顺序遵循 LIFO：先关闭依赖连接器的组件，再关闭连接器。
package connector

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gorm.io/gorm"
)

// Connector 所有连接器的公共行为，方法均并发安全
type Connector interface {
	// Connect 建立连接，幂等
	Connect(ctx context.Context) error

	// Close 释放资源，幂等
	Close() error

	// HealthCheck 主动探活并刷新 IsHealthy 的缓存结果
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回最近一次探活结果，不阻塞
	IsHealthy() bool

	// Name 连接器实例名，用于日志与指标
	Name() string
}

// TypedConnector 提供类型安全的客户端访问
type TypedConnector[T any] interface {
	Connector

	// GetClient 在 Connect 之前或 Close 之后可能返回零值
	GetClient() T
}

// RedisConnector Redis 连接器
type RedisConnector interface {
	TypedConnector[*redis.Client]
}

// EtcdConnector Etcd 连接器
type EtcdConnector interface {
	TypedConnector[*clientv3.Client]
}

// NATSConnector NATS 连接器，JetStream KV 基于此连接创建
type NATSConnector interface {
	TypedConnector[*nats.Conn]
}

// DBConnector 基于 GORM 的关系型数据库连接器（MySQL / PostgreSQL / SQLite）
type DBConnector interface {
	TypedConnector[*gorm.DB]
}
