package store

import (
	"context"
	"strconv"
	"sync"
)

type memoryEntry struct {
	value   string
	version uint64
}

// Memory 进程内存储，用于测试与单机场景
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	next    uint64
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Read(ctx context.Context, scope string) (string, Version, error) {
	if err := ctx.Err(); err != nil {
		return "", NoVersion, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[scope]
	if !ok {
		e = m.storeLocked(scope, InitialSeed)
	}
	return e.value, formatVersion(e.version), nil
}

func (m *Memory) ConditionalWrite(ctx context.Context, scope, value string, expected Version) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[scope]
	switch {
	case expected == NoVersion && ok:
		return false, nil
	case expected != NoVersion && (!ok || formatVersion(e.version) != expected):
		return false, nil
	}
	m.storeLocked(scope, value)
	return true, nil
}

// Seed 直接设置种子，绕过版本检查
func (m *Memory) Seed(scope, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeLocked(scope, value)
}

// Value 返回当前种子，不会创建 scope
func (m *Memory) Value(scope string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[scope]
	return e.value, ok
}

func (m *Memory) storeLocked(scope, value string) memoryEntry {
	m.next++
	e := memoryEntry{value: value, version: m.next}
	m.entries[scope] = e
	return e
}

func formatVersion(v uint64) Version {
	return Version(strconv.FormatUint(v, 10))
}
