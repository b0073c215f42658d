package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/blockseq/connector"
)

// NewSQLiteConfig 返回独立命名的内存库配置，不同测试之间数据互不可见
func NewSQLiteConfig() *connector.SQLiteConfig {
	return &connector.SQLiteConfig{
		Name: "test-sqlite",
		Path: "file:blockseq_" + NewID() + "?mode=memory&cache=shared",
	}
}

// NewSQLiteConnector 创建并连接内存 SQLite 连接器，无需外部依赖
func NewSQLiteConnector(t *testing.T) connector.DBConnector {
	conn, err := connector.NewSQLite(NewSQLiteConfig(), connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to sqlite")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// NewPersistentSQLiteConnector 创建文件型 SQLite 连接器，文件位于 t.TempDir()
func NewPersistentSQLiteConnector(t *testing.T) connector.DBConnector {
	conn, err := connector.NewSQLite(&connector.SQLiteConfig{
		Name: "test-sqlite-file",
		Path: t.TempDir() + "/blockseq.db",
	}, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	require.NoError(t, conn.Connect(context.Background()), "failed to connect to sqlite")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
