package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
idgen:
  batch_size: 100
  prefetch_percent: 25
store:
  driver: memory
server:
  addr: ":8080"
`)
	writeFile(t, dir, "config.dev.yaml", `
idgen:
  batch_size: 10
`)
	writeFile(t, dir, ".env", "BLOCKSEQTEST_SERVER_ADDR=:9090\n")
	t.Cleanup(func() { os.Unsetenv("BLOCKSEQTEST_SERVER_ADDR") })

	t.Setenv("BLOCKSEQTEST_ENV", "dev")
	t.Setenv("BLOCKSEQTEST_STORE_DRIVER", "redis")

	loader, err := Load(context.Background(),
		WithConfigPaths(dir),
		WithEnvPrefix("blockseqtest"),
		WithDefault("idgen.max_write_attempts", 25),
	)
	require.NoError(t, err)

	assert.EqualValues(t, 10, loader.Get("idgen.batch_size"), "环境文件应覆盖基础文件")
	assert.EqualValues(t, 25, loader.Get("idgen.prefetch_percent"))
	assert.Equal(t, "redis", loader.Get("store.driver"), "环境变量优先级最高")
	assert.Equal(t, ":9090", loader.Get("server.addr"), ".env 应写入环境变量")
	assert.EqualValues(t, 25, loader.Get("idgen.max_write_attempts"), "默认值应可读取")

	var cfg struct {
		IDGen struct {
			BatchSize        int64 `mapstructure:"batch_size"`
			PrefetchPercent  int   `mapstructure:"prefetch_percent"`
			MaxWriteAttempts int   `mapstructure:"max_write_attempts"`
		} `mapstructure:"idgen"`
		Store struct {
			Driver string `mapstructure:"driver"`
		} `mapstructure:"store"`
	}
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, int64(10), cfg.IDGen.BatchSize)
	assert.Equal(t, 25, cfg.IDGen.PrefetchPercent)
	assert.Equal(t, 25, cfg.IDGen.MaxWriteAttempts)
	assert.Equal(t, "redis", cfg.Store.Driver)
}

func TestLoadWithoutFile(t *testing.T) {
	loader, err := Load(context.Background(),
		WithConfigPaths(t.TempDir()),
		WithEnvPrefix("BLOCKSEQNOFILE"),
		WithDefault("store.driver", "memory"),
	)
	require.NoError(t, err)

	var store struct {
		Driver string `mapstructure:"driver"`
	}
	require.NoError(t, loader.UnmarshalKey("store", &store))
	assert.Equal(t, "memory", store.Driver)
}

func TestLoadErrors(t *testing.T) {
	t.Run("empty configuration", func(t *testing.T) {
		_, err := Load(context.Background(),
			WithConfigPaths(t.TempDir()),
			WithEnvPrefix("BLOCKSEQEMPTY"),
		)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "config.yaml", "idgen: [unclosed\n")
		_, err := Load(context.Background(), WithConfigPaths(dir))
		assert.Error(t, err)
	})

	t.Run("must load panics", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "config.yaml", "idgen: [unclosed\n")
		assert.Panics(t, func() { MustLoad(WithConfigPaths(dir)) })
	})
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "log:\n  level: info\n")

	l, err := New(WithConfigPaths(dir))
	require.NoError(t, err)

	_, err = l.Watch(context.Background(), "log.level")
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := l.Watch(ctx, "log.level")
	require.NoError(t, err)

	impl := l.(*loader)
	impl.v.Set("log.level", "debug")
	impl.notifyWatches(fsnotify.Event{Name: "config.yaml", Op: fsnotify.Write})

	select {
	case ev := <-ch:
		assert.Equal(t, "log.level", ev.Key)
		assert.Equal(t, "debug", ev.Value)
		assert.Equal(t, "info", ev.OldValue)
		assert.Equal(t, "file", ev.Source)
	case <-time.After(time.Second):
		t.Fatal("未收到变更事件")
	}

	// 值未变化时不应重复通知
	impl.notifyWatches(fsnotify.Event{})
	select {
	case ev := <-ch:
		t.Fatalf("不应收到事件: %+v", ev)
	default:
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}
