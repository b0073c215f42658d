package testkit

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/ceyewan/blockseq/connector"
)

// NewMySQLContainerConfig 使用 testcontainers 创建 MySQL 容器并返回配置
func NewMySQLContainerConfig(t *testing.T) *connector.MySQLConfig {
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("blockseq_db"),
		mysql.WithUsername("blockseq_user"),
		mysql.WithPassword("blockseq_password"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	return &connector.MySQLConfig{
		Name:     "testcontainer-mysql",
		Host:     host,
		Port:     port,
		Username: "blockseq_user",
		Password: "blockseq_password",
		Database: "blockseq_db",
	}
}

// NewMySQLConnector 创建并连接 MySQL 连接器
func NewMySQLConnector(t *testing.T) connector.DBConnector {
	conn, err := connector.NewMySQL(NewMySQLContainerConfig(t), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create mysql connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to mysql")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
