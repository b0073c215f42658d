package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
	"github.com/ceyewan/blockseq/xerrors"
)

// casScript 仅当当前值等于 ARGV[1] 时写入 ARGV[2]
var casScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2])
	return 1
end
return 0
`)

// redisStore 以值本身作为版本：种子只增不减，不存在 ABA
type redisStore struct {
	redis  connector.RedisConnector
	cfg    *Config
	logger clog.Logger
	known  *knownScopes
}

func newRedisStore(cfg *Config, conn connector.RedisConnector, logger clog.Logger) (Store, error) {
	known, err := newKnownScopes(cfg.CacheSize)
	if err != nil {
		return nil, xerrors.Wrap(err, "create scope cache")
	}
	return &redisStore{redis: conn, cfg: cfg, logger: logger, known: known}, nil
}

func (s *redisStore) key(scope string) string {
	return s.cfg.KeyPrefix + scope
}

func (s *redisStore) Read(ctx context.Context, scope string) (string, Version, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	client := s.redis.GetClient()
	key := s.key(scope)

	if !s.known.has(scope) {
		if err := s.create(ctx, client, scope, key); err != nil {
			return "", NoVersion, err
		}
	}

	value, err := client.Get(ctx, key).Result()
	if xerrors.Is(err, redis.Nil) {
		// 缓存认为存在但键已被外部删除
		if err := s.create(ctx, client, scope, key); err != nil {
			return "", NoVersion, err
		}
		value, err = client.Get(ctx, key).Result()
	}
	if err != nil {
		return "", NoVersion, err
	}
	return value, Version(value), nil
}

// create 以 SET NX 写入初始种子，键已存在同样视为成功
func (s *redisStore) create(ctx context.Context, client *redis.Client, scope, key string) error {
	created, err := client.SetNX(ctx, key, InitialSeed, 0).Result()
	if err != nil {
		return err
	}
	if created {
		s.logger.Debug("scope created", clog.String("scope", scope), clog.String("key", key))
	}
	s.known.add(scope)
	return nil
}

func (s *redisStore) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	client := s.redis.GetClient()
	key := s.key(scope)

	if expected == NoVersion {
		return client.SetNX(ctx, key, value, 0).Result()
	}

	n, err := casScript.Run(ctx, client, []string{key}, string(expected), value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
