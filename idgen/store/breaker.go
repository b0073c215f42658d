package store

import (
	"context"

	"github.com/ceyewan/blockseq/breaker"
)

// breakerStore 为每次存储调用套上熔断保护。
// 写冲突以 (false, nil) 返回，对熔断器而言是成功调用。
type breakerStore struct {
	next Store
	brk  breaker.Breaker
	key  string
}

func withBreaker(next Store, brk breaker.Breaker, driver string) Store {
	return &breakerStore{next: next, brk: brk, key: "store:" + driver}
}

type readResult struct {
	value   string
	version Version
}

func (s *breakerStore) Read(ctx context.Context, scope string) (string, Version, error) {
	v, err := s.brk.Execute(ctx, s.key, func() (any, error) {
		value, version, err := s.next.Read(ctx, scope)
		return readResult{value: value, version: version}, err
	})
	if err != nil {
		return "", NoVersion, err
	}
	// 降级成功时没有结果，按读取失败处理
	r, ok := v.(readResult)
	if !ok {
		return "", NoVersion, breaker.ErrOpenState
	}
	return r.value, r.version, nil
}

func (s *breakerStore) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	v, err := s.brk.Execute(ctx, s.key, func() (any, error) {
		return s.next.ConditionalWrite(ctx, scope, value, expected)
	})
	if err != nil {
		return false, err
	}
	// 降级成功时没有结果，不能当作写冲突
	ok, isBool := v.(bool)
	if !isBool {
		return false, breaker.ErrOpenState
	}
	return ok, nil
}
