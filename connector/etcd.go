package connector

import (
	"context"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

const etcdHealthKey = "blockseq/health"

type etcdConnector struct {
	*base
	cfg *EtcdConfig

	mu     sync.RWMutex
	client *clientv3.Client
}

// NewEtcd 创建 Etcd 连接器，客户端在 Connect 时创建
func NewEtcd(cfg *EtcdConfig, opts ...Option) (EtcdConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b, err := newBase("etcd", cfg.Name, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	return &etcdConnector{base: b, cfg: cfg}, nil
}

func (c *etcdConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            c.cfg.Endpoints,
		Username:             c.cfg.Username,
		Password:             c.cfg.Password,
		DialTimeout:          c.cfg.DialTimeout,
		DialKeepAliveTime:    c.cfg.KeepAliveTime,
		DialKeepAliveTimeout: c.cfg.KeepAliveTimeout,
		Context:              context.WithoutCancel(ctx),
	})
	if err == nil {
		err = pingEtcd(ctx, client, c.cfg)
		if err != nil {
			_ = client.Close()
		}
	}
	c.observeConnect(ctx, err)
	if err != nil {
		c.logger.Error("connect to etcd failed", clog.Any("endpoints", c.cfg.Endpoints), clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrConnection, err), "etcd connector[%s]", c.name)
	}

	c.client = client
	c.logger.Info("connected to etcd", clog.Any("endpoints", c.cfg.Endpoints))
	return nil
}

// pingEtcd 读一个固定 key，key 不存在不算错误
func pingEtcd(ctx context.Context, client *clientv3.Client, cfg *EtcdConfig) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	_, err := client.Get(ctx, etcdHealthKey, clientv3.WithCountOnly())
	return err
}

func (c *etcdConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setHealthy(context.Background(), false)
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	if err != nil {
		c.logger.Error("close etcd failed", clog.Error(err))
		return err
	}
	c.logger.Info("etcd connection closed")
	return nil
}

func (c *etcdConnector) HealthCheck(ctx context.Context) error {
	client := c.GetClient()
	if client == nil {
		c.setHealthy(ctx, false)
		return xerrors.Wrapf(ErrNotConnected, "etcd connector[%s]", c.name)
	}
	if err := pingEtcd(ctx, client, c.cfg); err != nil {
		c.setHealthy(ctx, false)
		c.logger.Warn("etcd health check failed", clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrHealthCheck, err), "etcd connector[%s]", c.name)
	}
	c.setHealthy(ctx, true)
	return nil
}

func (c *etcdConnector) GetClient() *clientv3.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
