package server

import (
	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/connector"
	"github.com/ceyewan/blockseq/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

type options struct {
	logger     clog.Logger
	meter      metrics.Meter
	connectors []connector.Connector
}

// WithLogger 设置 Logger，自动追加 "server" 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("server")
		}
	}
}

// WithMeter 设置 Meter，同时决定 /metrics 暴露的内容
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithConnectors 注册 /healthz 需要探活的连接器
func WithConnectors(conns ...connector.Connector) Option {
	return func(o *options) {
		for _, c := range conns {
			if c != nil {
				o.connectors = append(o.connectors, c)
			}
		}
	}
}
