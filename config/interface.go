// Package config 为 blockseq 提供配置加载能力，基于 Viper。
//
// 优先级：环境变量 > .env > config.<env>.yaml > config.yaml > WithDefault
//
// 基本使用：
//
//	loader, err := config.Load(ctx,
//		config.WithConfigName("config"),
//		config.WithConfigPaths("./examples/server"),
//		config.WithDefault("idgen.batch_size", 100),
//	)
//
//	var cfg AppConfig
//	_ = loader.Unmarshal(&cfg)
//
//	// 日志级别热更新
//	ch, _ := loader.Watch(ctx, "log.level")
//	for ev := range ch {
//		level, _ := clog.ParseLevel(fmt.Sprint(ev.Value))
//		_ = logger.SetLevel(level)
//	}
package config

import (
	"context"
	"time"
)

// Loader 配置加载器
type Loader interface {
	// Load 加载配置并开始监听文件变化
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体（mapstructure 标签）
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听某个 Key 的变化，ctx 取消后通道关闭
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string
	Value     any
	OldValue  any
	Source    string // "file"
	Timestamp time.Time
}
