package store

import (
	"context"
	"strconv"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
	"github.com/ceyewan/blockseq/xerrors"
)

// maxReadAttempts 创建或读取事务的最大执行次数
const maxReadAttempts = 3

// etcdStore 以 ModRevision 作为版本
type etcdStore struct {
	etcd   connector.EtcdConnector
	cfg    *Config
	logger clog.Logger
}

func newEtcdStore(cfg *Config, conn connector.EtcdConnector, logger clog.Logger) Store {
	return &etcdStore{etcd: conn, cfg: cfg, logger: logger}
}

func (s *etcdStore) key(scope string) string {
	return s.cfg.KeyPrefix + scope
}

func (s *etcdStore) Read(ctx context.Context, scope string) (string, Version, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	key := s.key(scope)

	// 不存在则创建，否则读取
	for attempt := 1; attempt <= maxReadAttempts; attempt++ {
		resp, err := s.etcd.GetClient().Txn(ctx).
			If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
			Then(clientv3.OpPut(key, InitialSeed)).
			Else(clientv3.OpGet(key)).
			Commit()
		if err != nil {
			return "", NoVersion, err
		}

		if resp.Succeeded {
			s.logger.Debug("scope created", clog.String("scope", scope), clog.String("key", key))
			return InitialSeed, revisionVersion(resp.Header.Revision), nil
		}

		kvs := resp.Responses[0].GetResponseRange().Kvs
		if len(kvs) > 0 {
			return string(kvs[0].Value), revisionVersion(kvs[0].ModRevision), nil
		}
		// 键在比较与读取之间被删除，重新执行事务
	}
	return "", NoVersion, xerrors.WithCode(
		xerrors.Wrapf(xerrors.ErrUnavailable, "etcd key %s deleted during %d reads", key, maxReadAttempts),
		"scope_unstable")
}

func (s *etcdStore) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	key := s.key(scope)

	var cmp clientv3.Cmp
	if expected == NoVersion {
		cmp = clientv3.Compare(clientv3.CreateRevision(key), "=", 0)
	} else {
		rev, err := parseRevision(expected)
		if err != nil {
			return false, err
		}
		cmp = clientv3.Compare(clientv3.ModRevision(key), "=", rev)
	}

	resp, err := s.etcd.GetClient().Txn(ctx).
		If(cmp).
		Then(clientv3.OpPut(key, value)).
		Commit()
	if err != nil {
		return false, err
	}
	return resp.Succeeded, nil
}

func revisionVersion(rev int64) Version {
	return Version(strconv.FormatInt(rev, 10))
}
