package store

import "github.com/maypok86/otter/v2"

// knownScopes 记录已确认存在的 scope，命中时 Read 跳过创建步骤。
// 被淘汰后只是重新执行一次幂等的创建。
type knownScopes struct {
	cache *otter.Cache[string, struct{}]
}

func newKnownScopes(size int) (*knownScopes, error) {
	if size <= 0 {
		return &knownScopes{}, nil
	}
	cache, err := otter.New(&otter.Options[string, struct{}]{
		MaximumSize: size,
	})
	if err != nil {
		return nil, err
	}
	return &knownScopes{cache: cache}, nil
}

func (k *knownScopes) has(scope string) bool {
	if k.cache == nil {
		return false
	}
	_, ok := k.cache.GetIfPresent(scope)
	return ok
}

func (k *knownScopes) add(scope string) {
	if k.cache != nil {
		k.cache.Set(scope, struct{}{})
	}
}
