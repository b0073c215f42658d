//go:build integration

// 运行：go test ./connector/... -tags=integration -v
package connector

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcetcd "github.com/testcontainers/testcontainers-go/modules/etcd"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ceyewan/blockseq/clog"
)

func testLogger() clog.Logger {
	logger, err := clog.New(clog.NewDevDefaultConfig("connector-test"))
	if err != nil {
		return clog.Discard()
	}
	return logger
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

func TestRedisConnectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	conn, err := NewRedis(&RedisConfig{
		Name:          "it-redis",
		Addr:          hostPort(t, container, "6379"),
		EnableTracing: true,
		EnableMetrics: true,
	}, WithLogger(testLogger()))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Connect(ctx))
	require.NoError(t, conn.Connect(ctx))
	assert.True(t, conn.IsHealthy())

	client := conn.GetClient()
	require.NoError(t, client.Set(ctx, "blockseq:ping", "1", time.Minute).Err())
	val, err := client.Get(ctx, "blockseq:ping").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.NoError(t, conn.HealthCheck(ctx))
}

func TestEtcdConnectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcetcd.Run(ctx, "quay.io/coreos/etcd:v3.5.9")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	conn, err := NewEtcd(&EtcdConfig{
		Name:      "it-etcd",
		Endpoints: []string{hostPort(t, container, "2379")},
	}, WithLogger(testLogger()))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Connect(ctx))
	assert.True(t, conn.IsHealthy())

	_, err = conn.GetClient().Put(ctx, "blockseq/ping", "1")
	require.NoError(t, err)
	assert.NoError(t, conn.HealthCheck(ctx))

	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.HealthCheck(ctx), ErrNotConnected)
}

func TestNATSConnectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcnats.Run(ctx, "nats:2.10-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	conn, err := NewNATS(&NATSConfig{
		Name: "it-nats",
		URL:  "nats://" + hostPort(t, container, "4222"),
	}, WithLogger(testLogger()))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Connect(ctx))
	assert.True(t, conn.IsHealthy())
	assert.True(t, conn.GetClient().IsConnected())
	assert.NoError(t, conn.HealthCheck(ctx))
}
