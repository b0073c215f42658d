package config

import (
	"strings"

	"github.com/ceyewan/blockseq/clog"
)

// Option 配置加载器选项
type Option func(*Options)

// Options 加载器选项
type Options struct {
	Name      string         // 配置文件名称（不含扩展名），默认 "config"
	Paths     []string       // 搜索路径，默认 [".", "./config"]
	FileType  string         // 文件类型，默认 "yaml"
	EnvPrefix string         // 环境变量前缀，默认 "BLOCKSEQ"
	Defaults  map[string]any // 最低优先级的默认值
	Logger    clog.Logger
}

func defaultOptions() *Options {
	return &Options{
		Name:      "config",
		Paths:     []string{".", "./config"},
		FileType:  "yaml",
		EnvPrefix: "BLOCKSEQ",
		Defaults:  map[string]any{},
		Logger:    clog.Discard(),
	}
}

func (o *Options) normalize() {
	if o.Name == "" {
		o.Name = "config"
	}
	if len(o.Paths) == 0 {
		o.Paths = []string{".", "./config"}
	}
	if o.FileType == "" {
		o.FileType = "yaml"
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = "BLOCKSEQ"
	}
	o.EnvPrefix = strings.ToUpper(o.EnvPrefix)
	if o.Logger == nil {
		o.Logger = clog.Discard()
	}
}

// WithConfigName 设置配置文件名称（不带扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		o.Paths = paths
	}
}

// WithConfigType 设置配置文件类型 (yaml, json, etc.)
func WithConfigType(typ string) Option {
	return func(o *Options) {
		o.FileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithDefault 注册单个默认值，例如 WithDefault("idgen.batch_size", 100)
func WithDefault(key string, value any) Option {
	return func(o *Options) {
		if o.Defaults == nil {
			o.Defaults = map[string]any{}
		}
		o.Defaults[key] = value
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("config")
		}
	}
}
