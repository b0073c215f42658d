package idgen

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ceyewan/blockseq/idgen/store"
)

// scriptedStore 包装内存存储，可按脚本注入冲突、错误与阻塞
type scriptedStore struct {
	*store.Memory

	writes atomic.Int64
	reads  atomic.Int64

	mu        sync.Mutex
	conflicts int   // 接下来强制冲突的写次数
	readErr   error // 非空时 Read 返回该错误
	writeErr  error // 非空时 ConditionalWrite 返回该错误
	gateScope string
	gate      chan struct{} // 非空时 gateScope 的写入阻塞直到关闭
	entered   chan struct{} // 每次在 gate 上阻塞时发送一次
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{Memory: store.NewMemory(), entered: make(chan struct{}, 16)}
}

func (s *scriptedStore) Read(ctx context.Context, scope string) (string, store.Version, error) {
	s.reads.Add(1)
	s.mu.Lock()
	err := s.readErr
	s.mu.Unlock()
	if err != nil {
		return "", store.NoVersion, err
	}
	return s.Memory.Read(ctx, scope)
}

func (s *scriptedStore) ConditionalWrite(ctx context.Context, scope, value string, expected store.Version) (bool, error) {
	s.writes.Add(1)

	s.mu.Lock()
	gate := s.gate
	if s.gateScope != "" && s.gateScope != scope {
		gate = nil
	}
	err := s.writeErr
	conflict := s.conflicts > 0
	if conflict {
		s.conflicts--
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if err != nil {
		return false, err
	}
	if conflict {
		return false, nil
	}
	return s.Memory.ConditionalWrite(ctx, scope, value, expected)
}

func (s *scriptedStore) forceConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

func (s *scriptedStore) failReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *scriptedStore) failWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// holdWrites 阻塞 scope 的写入，返回释放函数
func (s *scriptedStore) holdWrites(scope string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.gateScope = scope
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}
