package connector

import (
	"context"
	"sync"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

type redisConnector struct {
	*base
	cfg    *RedisConfig
	client *redis.Client

	instrumentOnce sync.Once
	instrumentErr  error
}

// NewRedis 创建 Redis 连接器；客户端立即创建，首次命令时才拨号
func NewRedis(cfg *RedisConfig, opts ...Option) (RedisConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b, err := newBase("redis", cfg.Name, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	return &redisConnector{base: b, cfg: cfg, client: client}, nil
}

func (c *redisConnector) Connect(ctx context.Context) error {
	c.instrumentOnce.Do(func() {
		if c.cfg.EnableTracing {
			c.instrumentErr = redisotel.InstrumentTracing(c.client)
		}
		if c.instrumentErr == nil && c.cfg.EnableMetrics {
			c.instrumentErr = redisotel.InstrumentMetrics(c.client)
		}
	})
	if c.instrumentErr != nil {
		return xerrors.Wrapf(c.instrumentErr, "redis connector[%s]: instrument", c.name)
	}

	err := c.client.Ping(ctx).Err()
	c.observeConnect(ctx, err)
	if err != nil {
		c.logger.Error("connect to redis failed", clog.String("addr", c.cfg.Addr), clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrConnection, err), "redis connector[%s]", c.name)
	}

	c.logger.Info("connected to redis", clog.String("addr", c.cfg.Addr))
	return nil
}

func (c *redisConnector) Close() error {
	c.setHealthy(context.Background(), false)
	if err := c.client.Close(); err != nil && !xerrors.Is(err, redis.ErrClosed) {
		c.logger.Error("close redis failed", clog.Error(err))
		return err
	}
	c.logger.Info("redis connection closed")
	return nil
}

func (c *redisConnector) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.setHealthy(ctx, false)
		c.logger.Warn("redis health check failed", clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrHealthCheck, err), "redis connector[%s]", c.name)
	}
	c.setHealthy(ctx, true)
	return nil
}

func (c *redisConnector) GetClient() *redis.Client {
	return c.client
}
