package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/blockseq/testkit"
)

// runContract 对任意实现执行同一组存储契约测试
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("read seeds new scope", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "orders-" + testkit.NewID()

		value, version, err := st.Read(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, InitialSeed, value)
		assert.NotEqual(t, NoVersion, version)

		again, sameVersion, err := st.Read(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, InitialSeed, again)
		assert.Equal(t, version, sameVersion)
	})

	t.Run("write with current version succeeds", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "orders-" + testkit.NewID()

		_, version, err := st.Read(ctx, scope)
		require.NoError(t, err)

		ok, err := st.ConditionalWrite(ctx, scope, "101", version)
		require.NoError(t, err)
		assert.True(t, ok)

		value, newVersion, err := st.Read(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "101", value)
		assert.NotEqual(t, version, newVersion)
	})

	t.Run("write with stale version conflicts", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "orders-" + testkit.NewID()

		_, stale, err := st.Read(ctx, scope)
		require.NoError(t, err)
		ok, err := st.ConditionalWrite(ctx, scope, "11", stale)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = st.ConditionalWrite(ctx, scope, "21", stale)
		require.NoError(t, err, "冲突不应返回错误")
		assert.False(t, ok)

		value, _, err := st.Read(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "11", value)
	})

	t.Run("create via no version", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "fresh-" + testkit.NewID()

		ok, err := st.ConditionalWrite(ctx, scope, "5", NoVersion)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = st.ConditionalWrite(ctx, scope, "9", NoVersion)
		require.NoError(t, err)
		assert.False(t, ok, "键已存在时 NoVersion 写入应冲突")

		value, _, err := st.Read(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, "5", value)
	})

	t.Run("concurrent creation never fails", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "race-" + testkit.NewID()

		const readers = 8
		var wg sync.WaitGroup
		errs := make(chan error, readers)
		values := make(chan string, readers)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value, _, err := st.Read(ctx, scope)
				errs <- err
				values <- value
			}()
		}
		wg.Wait()
		close(errs)
		close(values)

		for err := range errs {
			assert.NoError(t, err)
		}
		for v := range values {
			assert.Equal(t, InitialSeed, v)
		}
	})

	t.Run("only one writer wins a version", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		scope := "cas-" + testkit.NewID()

		_, version, err := st.Read(ctx, scope)
		require.NoError(t, err)

		const writers = 8
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := st.ConditionalWrite(ctx, scope, "101", version)
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("scopes are independent", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		a, b := "a-"+testkit.NewID(), "b-"+testkit.NewID()

		_, va, err := st.Read(ctx, a)
		require.NoError(t, err)
		ok, err := st.ConditionalWrite(ctx, a, "201", va)
		require.NoError(t, err)
		require.True(t, ok)

		value, _, err := st.Read(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, InitialSeed, value)
	})
}

func TestMemoryContract(t *testing.T) {
	runContract(t, func(t *testing.T) Store { return NewMemory() })
}

func TestSQLiteContract(t *testing.T) {
	runContract(t, func(t *testing.T) Store {
		st, err := New(&Config{Driver: DriverSQL},
			WithDBConnector(testkit.NewSQLiteConnector(t)),
			WithLogger(testkit.NewLogger()))
		require.NoError(t, err)
		return st
	})
}
