package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"

	"github.com/ceyewan/blockseq/connector"
)

// NewNATSContainerConfig 使用 testcontainers 创建开启 JetStream 的 NATS 容器并返回配置
func NewNATSContainerConfig(t *testing.T) *connector.NATSConfig {
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2.10-alpine")
	require.NoError(t, err, "failed to start NATS container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	return &connector.NATSConfig{
		Name:          "testcontainer-nats",
		URL:           "nats://" + hostPort(t, container, "4222"),
		MaxReconnects: 10,
		ReconnectWait: 100 * time.Millisecond,
	}
}

// NewNATSContainerConnector 创建并连接 NATS 连接器
func NewNATSContainerConnector(t *testing.T) connector.NATSConnector {
	conn, err := connector.NewNATS(NewNATSContainerConfig(t), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create nats connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to nats")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
