package testkit

import (
	"context"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ceyewan/blockseq/connector"
)

// NewRedisContainerConfig 使用 testcontainers 创建 Redis 容器并返回配置
func NewRedisContainerConfig(t *testing.T) *connector.RedisConfig {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	return &connector.RedisConfig{
		Name: "testcontainer-redis",
		Addr: hostPort(t, container, "6379"),
	}
}

// NewRedisContainerConnector 创建并连接 Redis 连接器
func NewRedisContainerConnector(t *testing.T) connector.RedisConnector {
	conn, err := connector.NewRedis(NewRedisContainerConfig(t), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create redis connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to redis")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func hostPort(t *testing.T, c testcontainers.Container, port nat.Port) string {
	t.Helper()
	ctx := context.Background()

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host + ":" + mapped.Port()
}
