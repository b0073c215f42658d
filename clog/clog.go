package clog

import "github.com/ceyewan/blockseq/xerrors"

// New 创建一个新的 Logger 实例
//
// config 为 nil 时使用 NewDevDefaultConfig("blockseq")。
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig("blockseq")
	}

	if err := config.validate(); err != nil {
		return nil, xerrors.Wrap(err, "invalid log config")
	}

	o := applyOptions(opts...)
	if config.Namespace != "" && len(o.namespaceParts) == 0 {
		o.namespaceParts = []string{config.Namespace}
	}

	return newLogger(config, o)
}

// Must 类似 New，但出错时 panic，仅用于初始化阶段
func Must(config *Config, opts ...Option) Logger {
	l, err := New(config, opts...)
	if err != nil {
		panic(err)
	}
	return l
}
