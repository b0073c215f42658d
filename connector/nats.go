package connector

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

type natsConnector struct {
	*base
	cfg *NATSConfig

	mu   sync.RWMutex
	conn *nats.Conn
}

// NewNATS 创建 NATS 连接器，连接在 Connect 时建立
func NewNATS(cfg *NATSConfig, opts ...Option) (NATSConnector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	b, err := newBase("nats", cfg.Name, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	return &natsConnector{base: b, cfg: cfg}, nil
}

func (c *natsConnector) natsOptions() []nats.Option {
	opts := []nats.Option{
		nats.Name(c.cfg.Name),
		nats.Timeout(c.cfg.Timeout),
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.PingInterval(c.cfg.PingInterval),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.setHealthy(context.Background(), false)
			c.logger.Warn("nats disconnected", clog.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.setHealthy(context.Background(), true)
			c.logger.Info("nats reconnected", clog.String("url", nc.ConnectedUrl()))
		}),
	}
	if c.cfg.Username != "" {
		opts = append(opts, nats.UserInfo(c.cfg.Username, c.cfg.Password))
	}
	if c.cfg.Token != "" {
		opts = append(opts, nats.Token(c.cfg.Token))
	}
	return opts
}

func (c *natsConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	conn, err := nats.Connect(c.cfg.URL, c.natsOptions()...)
	c.observeConnect(ctx, err)
	if err != nil {
		c.logger.Error("connect to nats failed", clog.String("url", c.cfg.URL), clog.Error(err))
		return xerrors.Wrapf(xerrors.Join(ErrConnection, err), "nats connector[%s]", c.name)
	}

	c.conn = conn
	c.logger.Info("connected to nats", clog.String("url", c.cfg.URL))
	return nil
}

func (c *natsConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setHealthy(context.Background(), false)
	if c.conn == nil {
		return nil
	}
	c.conn.Close()
	c.conn = nil
	c.logger.Info("nats connection closed")
	return nil
}

func (c *natsConnector) HealthCheck(ctx context.Context) error {
	conn := c.GetClient()
	if conn == nil {
		c.setHealthy(ctx, false)
		return xerrors.Wrapf(ErrNotConnected, "nats connector[%s]", c.name)
	}
	if status := conn.Status(); status != nats.CONNECTED {
		c.setHealthy(ctx, false)
		return xerrors.Wrapf(ErrHealthCheck, "nats connector[%s]: status %s", c.name, status)
	}
	c.setHealthy(ctx, true)
	return nil
}

func (c *natsConnector) GetClient() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// MustNewNATS 类似 NewNATS，出错时 panic
func MustNewNATS(cfg *NATSConfig, opts ...Option) NATSConnector {
	conn, err := NewNATS(cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create nats connector: %v", err))
	}
	return conn
}
