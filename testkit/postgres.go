package testkit

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ceyewan/blockseq/connector"
)

// NewPostgreSQLContainerConfig 使用 testcontainers 创建 PostgreSQL 容器并返回配置
func NewPostgreSQLContainerConfig(t *testing.T) *connector.PostgreSQLConfig {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("blockseq_db"),
		postgres.WithUsername("blockseq_user"),
		postgres.WithPassword("blockseq_password"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	return &connector.PostgreSQLConfig{
		Name:     "testcontainer-postgresql",
		Host:     host,
		Port:     port,
		Username: "blockseq_user",
		Password: "blockseq_password",
		Database: "blockseq_db",
		SSLMode:  "disable",
	}
}

// NewPostgreSQLConnector 创建并连接 PostgreSQL 连接器
func NewPostgreSQLConnector(t *testing.T) connector.DBConnector {
	conn, err := connector.NewPostgreSQL(NewPostgreSQLContainerConfig(t), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create postgresql connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to postgresql")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
