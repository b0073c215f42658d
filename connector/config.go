package connector

import (
	"fmt"
	"time"

	"github.com/ceyewan/blockseq/xerrors"
)

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Name string `mapstructure:"name"` // 默认 "default"

	Addr     string `mapstructure:"addr"` // 必填，如 "127.0.0.1:6379"
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`      // 默认 10
	MinIdleConns int           `mapstructure:"min_idle_conns"` // 默认 2
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`   // 默认 5s
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`   // 默认 3s
	WriteTimeout time.Duration `mapstructure:"write_timeout"`  // 默认 3s

	// EnableTracing / EnableMetrics 通过 redisotel 为每条命令生成 span 与指标
	EnableTracing bool `mapstructure:"enable_tracing"`
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

func (c *RedisConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

func (c *RedisConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "redis_config_required")
	}
	c.setDefaults()
	if c.Addr == "" {
		return xerrors.WithCode(ErrConfig, "redis_addr_required")
	}
	if c.DB < 0 {
		return xerrors.WithCode(ErrConfig, "redis_db_negative")
	}
	return nil
}

// EtcdConfig Etcd 连接配置
type EtcdConfig struct {
	Name string `mapstructure:"name"`

	Endpoints []string `mapstructure:"endpoints"` // 必填
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`

	DialTimeout      time.Duration `mapstructure:"dial_timeout"`       // 默认 5s
	KeepAliveTime    time.Duration `mapstructure:"keep_alive_time"`    // 默认 10s
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"` // 默认 3s
}

func (c *EtcdConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.KeepAliveTime == 0 {
		c.KeepAliveTime = 10 * time.Second
	}
	if c.KeepAliveTimeout == 0 {
		c.KeepAliveTimeout = 3 * time.Second
	}
}

func (c *EtcdConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "etcd_config_required")
	}
	c.setDefaults()
	if len(c.Endpoints) == 0 {
		return xerrors.WithCode(ErrConfig, "etcd_endpoints_required")
	}
	return nil
}

// NATSConfig NATS 连接配置
type NATSConfig struct {
	Name string `mapstructure:"name"`

	URL      string `mapstructure:"url"` // 必填，如 "nats://127.0.0.1:4222"
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`

	Timeout       time.Duration `mapstructure:"timeout"`        // 默认 5s
	MaxReconnects int           `mapstructure:"max_reconnects"` // 默认 60
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"` // 默认 2s
	PingInterval  time.Duration `mapstructure:"ping_interval"`  // 默认 2m
}

func (c *NATSConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 60
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 2 * time.Minute
	}
}

func (c *NATSConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "nats_config_required")
	}
	c.setDefaults()
	if c.URL == "" {
		return xerrors.WithCode(ErrConfig, "nats_url_required")
	}
	return nil
}

// PoolConfig database/sql 连接池参数
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 默认 10
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 默认 100
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 默认 1h
}

func (p *PoolConfig) setDefaults() {
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = 10
	}
	if p.MaxOpenConns == 0 {
		p.MaxOpenConns = 100
	}
	if p.ConnMaxLifetime == 0 {
		p.ConnMaxLifetime = time.Hour
	}
}

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	Name string `mapstructure:"name"`

	// DSN 非空时忽略 Host/Port 等字段
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"` // 默认 3306
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Charset  string `mapstructure:"charset"` // 默认 utf8mb4

	Pool PoolConfig `mapstructure:"pool"`

	// EnableTracing 通过 otelgorm 为每条 SQL 生成 span
	EnableTracing bool `mapstructure:"enable_tracing"`
}

func (c *MySQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.Charset == "" {
		c.Charset = "utf8mb4"
	}
	c.Pool.setDefaults()
}

func (c *MySQLConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "mysql_config_required")
	}
	c.setDefaults()
	if c.DSN != "" {
		return nil
	}
	if c.Host == "" {
		return xerrors.WithCode(ErrConfig, "mysql_host_required")
	}
	if c.Username == "" {
		return xerrors.WithCode(ErrConfig, "mysql_username_required")
	}
	if c.Database == "" {
		return xerrors.WithCode(ErrConfig, "mysql_database_required")
	}
	return nil
}

func (c *MySQLConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// PostgreSQLConfig PostgreSQL 连接配置
type PostgreSQLConfig struct {
	Name string `mapstructure:"name"`

	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"` // 默认 5432
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`  // 默认 disable
	Timezone string `mapstructure:"timezone"` // 默认 UTC

	Pool PoolConfig `mapstructure:"pool"`

	// EnableTracing 通过 otelgorm 为每条 SQL 生成 span
	EnableTracing bool `mapstructure:"enable_tracing"`
}

func (c *PostgreSQLConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	c.Pool.setDefaults()
}

func (c *PostgreSQLConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "postgres_config_required")
	}
	c.setDefaults()
	if c.DSN != "" {
		return nil
	}
	if c.Host == "" {
		return xerrors.WithCode(ErrConfig, "postgres_host_required")
	}
	if c.Username == "" {
		return xerrors.WithCode(ErrConfig, "postgres_username_required")
	}
	if c.Database == "" {
		return xerrors.WithCode(ErrConfig, "postgres_database_required")
	}
	return nil
}

func (c *PostgreSQLConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode, c.Timezone)
}

// SQLiteConfig SQLite 连接配置
type SQLiteConfig struct {
	Name string `mapstructure:"name"`

	// Path 文件路径，":memory:" 或 "file::memory:?cache=shared" 表示内存库
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`

	// EnableTracing 通过 otelgorm 为每条 SQL 生成 span
	EnableTracing bool `mapstructure:"enable_tracing"`
}

func (c *SQLiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	// 内存库的数据随连接存在：限制单连接且连接不过期
	if c.Pool.MaxOpenConns == 0 {
		c.Pool.MaxOpenConns = 1
	}
	if c.Pool.ConnMaxLifetime == 0 {
		c.Pool.ConnMaxLifetime = -1
	}
	c.Pool.setDefaults()
}

func (c *SQLiteConfig) validate() error {
	if c == nil {
		return xerrors.WithCode(ErrConfig, "sqlite_config_required")
	}
	c.setDefaults()
	if c.Path == "" {
		return xerrors.WithCode(ErrConfig, "sqlite_path_required")
	}
	return nil
}
