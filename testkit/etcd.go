package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcetcd "github.com/testcontainers/testcontainers-go/modules/etcd"

	"github.com/ceyewan/blockseq/connector"
)

// NewEtcdContainerConfig 使用 testcontainers 创建单节点 Etcd 容器并返回配置
func NewEtcdContainerConfig(t *testing.T) *connector.EtcdConfig {
	ctx := context.Background()

	container, err := tcetcd.Run(ctx, "quay.io/coreos/etcd:v3.5.9")
	require.NoError(t, err, "failed to start Etcd container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	return &connector.EtcdConfig{
		Name:      "testcontainer-etcd",
		Endpoints: []string{hostPort(t, container, "2379")},
	}
}

// NewEtcdContainerConnector 创建并连接 Etcd 连接器
func NewEtcdContainerConnector(t *testing.T) connector.EtcdConnector {
	conn, err := connector.NewEtcd(NewEtcdContainerConfig(t), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create etcd connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to etcd")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
