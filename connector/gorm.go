package connector

import (
	"context"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

// gormConnector MySQL / PostgreSQL / SQLite 共用实现，只有 Dialector 不同
type gormConnector struct {
	*base
	dialector func() gorm.Dialector
	pool      PoolConfig
	tracing   bool
	target    clog.Field

	mu sync.RWMutex
	db *gorm.DB
}

// NewMySQL 创建 MySQL 连接器
func NewMySQL(cfg *MySQLConfig, opts ...Option) (DBConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newGormConnector("mysql", cfg.Name, cfg.Pool, cfg.EnableTracing,
		clog.String("host", cfg.Host),
		func() gorm.Dialector { return mysql.Open(cfg.dsn()) }, opts)
}

// NewPostgreSQL 创建 PostgreSQL 连接器
func NewPostgreSQL(cfg *PostgreSQLConfig, opts ...Option) (DBConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newGormConnector("postgresql", cfg.Name, cfg.Pool, cfg.EnableTracing,
		clog.String("host", cfg.Host),
		func() gorm.Dialector { return postgres.Open(cfg.dsn()) }, opts)
}

// NewSQLite 创建 SQLite 连接器，常用于测试与单机部署
func NewSQLite(cfg *SQLiteConfig, opts ...Option) (DBConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newGormConnector("sqlite", cfg.Name, cfg.Pool, cfg.EnableTracing,
		clog.String("path", cfg.Path),
		func() gorm.Dialector { return sqlite.Open(cfg.Path) }, opts)
}

func newGormConnector(kind, name string, pool PoolConfig, tracing bool, target clog.Field, dialector func() gorm.Dialector, opts []Option) (DBConnector, error) {
	b, err := newBase(kind, name, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	return &gormConnector{base: b, dialector: dialector, pool: pool, tracing: tracing, target: target}, nil
}

func (c *gormConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	db, err := c.open(ctx)
	c.observeConnect(ctx, err)
	if err != nil {
		c.logger.Error("connect to database failed", c.target, clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrConnection, err), "%s connector[%s]", c.kind, c.name)
	}

	c.db = db
	c.logger.Info("connected to database", c.target)
	return nil
}

func (c *gormConnector) open(ctx context.Context) (*gorm.DB, error) {
	db, err := gorm.Open(c.dialector(), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, err
	}

	if c.tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.pool.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (c *gormConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setHealthy(context.Background(), false)
	if c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		c.logger.Error("close database failed", clog.Error(err))
		return err
	}
	c.logger.Info("database connection closed")
	return nil
}

func (c *gormConnector) HealthCheck(ctx context.Context) error {
	db := c.GetClient()
	if db == nil {
		c.setHealthy(ctx, false)
		return xerrors.Wrapf(ErrNotConnected, "%s connector[%s]", c.kind, c.name)
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.setHealthy(ctx, false)
		c.logger.Warn("database health check failed", clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrHealthCheck, err), "%s connector[%s]", c.kind, c.name)
	}
	c.setHealthy(ctx, true)
	return nil
}

func (c *gormConnector) GetClient() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
