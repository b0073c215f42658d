package connector

import (
	"context"
	"sync/atomic"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

// base 各连接器共享的健康状态、日志与连接指标
type base struct {
	kind    string
	name    string
	logger  clog.Logger
	healthy atomic.Bool

	connects metrics.Counter
	up       metrics.Gauge
}

func newBase(kind, name string, o *options) (*base, error) {
	connects, err := o.meter.Counter("connector_connect_attempts_total", "Connector connect attempts.")
	if err != nil {
		return nil, err
	}
	up, err := o.meter.Gauge("connector_up", "1 when the last health check succeeded.")
	if err != nil {
		return nil, err
	}
	return &base{
		kind:     kind,
		name:     name,
		logger:   o.logger.With(clog.String("connector", kind), clog.String("name", name)),
		connects: connects,
		up:       up,
	}, nil
}

func (b *base) labels() []metrics.Label {
	return []metrics.Label{metrics.L("connector", b.kind), metrics.L("name", b.name)}
}

// observeConnect 记录一次连接尝试并同步健康状态
func (b *base) observeConnect(ctx context.Context, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	b.connects.Inc(ctx, append(b.labels(), metrics.L(metrics.LabelOutcome, outcome))...)
	b.setHealthy(ctx, err == nil)
}

func (b *base) setHealthy(ctx context.Context, ok bool) {
	b.healthy.Store(ok)
	val := 0.0
	if ok {
		val = 1
	}
	b.up.Set(ctx, val, b.labels()...)
}

func (b *base) IsHealthy() bool {
	return b.healthy.Load()
}

func (b *base) Name() string {
	return b.name
}
