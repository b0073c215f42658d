// Package store 定义 idgen 所需的远端种子存储契约及其实现。
//
// 每个 scope 在远端只保存一个十进制文本：下一个可预留的整数（种子）。
// 存储只需提供两个原语：读取（不存在则以 "1" 创建）与带版本条件的写入。
// 版本令牌对调用方不透明，idgen 从不解析它。
//
//	st, err := store.New(&store.Config{Driver: "redis"},
//		store.WithRedisConnector(redisConn),
//		store.WithLogger(logger),
//	)
//	seed, ver, err := st.Read(ctx, "orders")
//	ok, err := st.ConditionalWrite(ctx, "orders", "201", ver)
//
// 支持的 Driver：memory、redis、etcd、nats（JetStream KV）、sql（GORM）。
package store

import (
	"context"
	"strconv"
	"time"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

// Version 存储相关的不透明版本令牌
type Version string

// NoVersion 表示 "键不存在" 的前置条件
const NoVersion Version = ""

// InitialSeed 新 scope 的初始种子
const InitialSeed = "1"

// Store 种子存储
type Store interface {
	// Read 返回 scope 的当前种子与版本；scope 不存在时以 InitialSeed 创建。
	// 创建竞争视为成功，失败方重新读取。
	Read(ctx context.Context, scope string) (string, Version, error)

	// ConditionalWrite 仅当当前版本等于 expected 时写入 value。
	// expected 为 NoVersion 时仅当键不存在才写入。
	// 条件不满足返回 (false, nil)，其余远端错误返回 (false, err)。
	ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error)
}

// New 按 Driver 创建存储
func New(cfg *Config, opts ...Option) (Store, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrConfigNil, "store_config_nil")
	}
	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	opt := options{logger: clog.Discard()}
	for _, o := range opts {
		o(&opt)
	}

	var (
		st  Store
		err error
	)
	switch c.Driver {
	case DriverMemory:
		st = NewMemory()
	case DriverRedis:
		if opt.redis == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "redis_connector_required")
		}
		st, err = newRedisStore(&c, opt.redis, opt.logger)
	case DriverEtcd:
		if opt.etcd == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "etcd_connector_required")
		}
		st = newEtcdStore(&c, opt.etcd, opt.logger)
	case DriverNATS:
		if opt.nats == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "nats_connector_required")
		}
		st = newNATSStore(&c, opt.nats, opt.logger)
	case DriverSQL:
		if opt.db == nil {
			return nil, xerrors.WithCode(ErrConnectorNil, "sql_connector_required")
		}
		st, err = newSQLStore(&c, opt.db, opt.logger)
	default:
		return nil, xerrors.WithCode(ErrInvalidInput, "unsupported_driver")
	}
	if err != nil {
		return nil, err
	}

	if opt.breaker != nil {
		st = withBreaker(st, opt.breaker, c.Driver)
	}

	opt.logger.Info("scope store created",
		clog.String("driver", c.Driver),
		clog.Bool("breaker", opt.breaker != nil))
	return st, nil
}

// withTimeout 为单次远端调用附加 OpTimeout
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// parseRevision 解析数值型版本令牌，无法解析说明调用方传入了不属于本存储的版本
func parseRevision(expected Version) (int64, error) {
	rev, err := strconv.ParseInt(string(expected), 10, 64)
	if err != nil || rev < 0 {
		return 0, xerrors.WithCode(xerrors.Wrapf(ErrInvalidInput, "version %q", string(expected)), "invalid_version")
	}
	return rev, nil
}
