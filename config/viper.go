package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

type loader struct {
	v         *viper.Viper
	opts      *Options
	logger    clog.Logger
	mu        sync.Mutex
	loaded    bool
	watches   map[string][]chan Event
	oldValues map[string]any
}

// New 创建配置加载器，需要调用 Load 后才能读取
func New(opts ...Option) (Loader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.normalize()

	return &loader{
		v:         viper.New(),
		opts:      o,
		logger:    o.Logger,
		watches:   make(map[string][]chan Event),
		oldValues: make(map[string]any),
	}, nil
}

// Load 创建并加载配置
func Load(ctx context.Context, opts ...Option) (Loader, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// MustLoad 类似 Load，但出错时 panic
func MustLoad(opts ...Option) Loader {
	l, err := Load(context.Background(), opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return l
}

func (l *loader) Load(ctx context.Context) error {
	l.v.SetConfigName(l.opts.Name)
	l.v.SetConfigType(l.opts.FileType)
	for _, path := range l.opts.Paths {
		l.v.AddConfigPath(path)
	}
	for key, value := range l.opts.Defaults {
		l.v.SetDefault(key, value)
	}

	l.v.SetEnvPrefix(l.opts.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.loadDotEnv()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return xerrors.Wrapf(err, "failed to read config file %s", l.opts.Name)
		}
		l.logger.Warn("no configuration file found, using defaults and env",
			clog.String("name", l.opts.Name), clog.Any("paths", l.opts.Paths))
	}

	if err := l.mergeEnvironmentConfig(); err != nil {
		return err
	}

	if err := l.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	l.loaded = true
	for key := range l.watches {
		l.oldValues[key] = l.v.Get(key)
	}
	l.mu.Unlock()

	if l.v.ConfigFileUsed() != "" {
		l.v.OnConfigChange(func(e fsnotify.Event) {
			if err := l.mergeEnvironmentConfig(); err != nil {
				l.logger.Error("reload environment config failed", clog.Error(err))
			}
			l.notifyWatches(e)
		})
		l.v.WatchConfig()
	}
	return nil
}

// loadDotEnv 依次尝试工作目录和各搜索路径下的 .env
func (l *loader) loadDotEnv() {
	candidates := []string{".env"}
	for _, path := range l.opts.Paths {
		candidates = append(candidates, filepath.Join(path, ".env"))
	}
	for _, file := range candidates {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			l.logger.Warn("failed to load .env file", clog.String("file", file), clog.Error(err))
			continue
		}
		l.logger.Debug("loaded .env file", clog.String("file", file))
	}
}

// mergeEnvironmentConfig 合并 <name>.<env>.yaml，env 来自 <PREFIX>_ENV
func (l *loader) mergeEnvironmentConfig() error {
	env := os.Getenv(l.opts.EnvPrefix + "_ENV")
	if env == "" {
		return nil
	}

	envName := fmt.Sprintf("%s.%s", l.opts.Name, env)
	l.v.SetConfigName(envName)
	defer l.v.SetConfigName(l.opts.Name)

	if err := l.v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return xerrors.Wrapf(err, "failed to merge environment config %s", envName)
		}
		l.logger.Info("no environment config file", clog.String("env", env))
		return nil
	}
	l.logger.Info("merged environment config", clog.String("env", env))
	return nil
}

func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

func (l *loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

func (l *loader) UnmarshalKey(key string, v any) error {
	return l.v.UnmarshalKey(key, v)
}

func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		return nil, ErrNotLoaded
	}

	ch := make(chan Event, 10)
	l.watches[key] = append(l.watches[key], ch)
	l.oldValues[key] = l.v.Get(key)

	go func() {
		<-ctx.Done()
		l.removeWatch(key, ch)
	}()

	return ch, nil
}

func (l *loader) removeWatch(key string, ch chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chans := l.watches[key]
	for i, c := range chans {
		if c == ch {
			l.watches[key] = append(chans[:i], chans[i+1:]...)
			close(ch)
			break
		}
	}
	if len(l.watches[key]) == 0 {
		delete(l.watches, key)
		delete(l.oldValues, key)
	}
}

func (l *loader) Validate() error {
	if len(l.v.AllSettings()) == 0 {
		return xerrors.Wrap(ErrValidationFailed, "configuration is empty")
	}
	return nil
}

func (l *loader) notifyWatches(_ fsnotify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, channels := range l.watches {
		newValue := l.v.Get(key)
		oldValue := l.oldValues[key]
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}

		event := Event{
			Key:       key,
			Value:     newValue,
			OldValue:  oldValue,
			Source:    "file",
			Timestamp: time.Now(),
		}
		l.oldValues[key] = newValue

		for _, ch := range channels {
			select {
			case ch <- event:
			default:
				l.logger.Warn("watch channel full, dropping event", clog.String("key", key))
			}
		}
	}
}
