package store

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
	"github.com/ceyewan/blockseq/xerrors"
)

// natsStore 基于 JetStream KeyValue，以条目 revision 作为版本
type natsStore struct {
	nats   connector.NATSConnector
	cfg    *Config
	logger clog.Logger

	mu sync.Mutex
	kv jetstream.KeyValue
}

func newNATSStore(cfg *Config, conn connector.NATSConnector, logger clog.Logger) Store {
	return &natsStore{nats: conn, cfg: cfg, logger: logger}
}

// bucket 首次使用时创建或更新 KV 桶，失败后下次调用重试
func (s *natsStore) bucket(ctx context.Context) (jetstream.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv != nil {
		return s.kv, nil
	}

	js, err := jetstream.New(s.nats.GetClient())
	if err != nil {
		return nil, xerrors.Wrap(err, "create jetstream context")
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      s.cfg.Bucket,
		Description: "blockseq scope seeds",
		History:     1,
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "provision kv bucket %s", s.cfg.Bucket)
	}

	s.logger.Info("kv bucket ready", clog.String("bucket", s.cfg.Bucket))
	s.kv = kv
	return kv, nil
}

// key KV 键只允许 [-/_=.A-Za-z0-9]，scope 名以无填充 URL 安全 base64 编码
func (s *natsStore) key(scope string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(scope))
}

func (s *natsStore) Read(ctx context.Context, scope string) (string, Version, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	kv, err := s.bucket(ctx)
	if err != nil {
		return "", NoVersion, err
	}
	key := s.key(scope)

	for {
		entry, err := kv.Get(ctx, key)
		if err == nil {
			return string(entry.Value()), revisionVersion(int64(entry.Revision())), nil
		}
		if !xerrors.Is(err, jetstream.ErrKeyNotFound) && !xerrors.Is(err, jetstream.ErrKeyDeleted) {
			return "", NoVersion, err
		}

		rev, err := kv.Create(ctx, key, []byte(InitialSeed))
		if err == nil {
			s.logger.Debug("scope created", clog.String("scope", scope), clog.String("key", key))
			return InitialSeed, revisionVersion(int64(rev)), nil
		}
		if !isWrongLastSequence(err) {
			return "", NoVersion, err
		}
		// 创建竞争失败，重新读取
	}
}

func (s *natsStore) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	kv, err := s.bucket(ctx)
	if err != nil {
		return false, err
	}
	key := s.key(scope)

	if expected == NoVersion {
		_, err = kv.Create(ctx, key, []byte(value))
	} else {
		rev, perr := parseRevision(expected)
		if perr != nil {
			return false, perr
		}
		_, err = kv.Update(ctx, key, []byte(value), uint64(rev))
	}

	switch {
	case err == nil:
		return true, nil
	case isWrongLastSequence(err):
		return false, nil
	default:
		return false, err
	}
}

func isWrongLastSequence(err error) bool {
	if xerrors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return xerrors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
