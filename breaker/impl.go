package breaker

import (
	"context"
	"sync"

	"github.com/sony/gobreaker/v2"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
	"github.com/ceyewan/blockseq/xerrors"
)

type circuitBreaker struct {
	cfg  *Config
	opts *options

	requests     metrics.Counter
	stateChanges metrics.Counter

	breakers sync.Map // key -> *gobreaker.CircuitBreaker[any]
}

func newCircuitBreaker(cfg *Config, o *options) (*circuitBreaker, error) {
	requests, err := o.meter.Counter(MetricRequestsTotal, "Calls guarded by the circuit breaker.")
	if err != nil {
		return nil, err
	}
	stateChanges, err := o.meter.Counter(MetricStateChanges, "Circuit breaker state transitions.")
	if err != nil {
		return nil, err
	}
	return &circuitBreaker{cfg: cfg, opts: o, requests: requests, stateChanges: stateChanges}, nil
}

func (cb *circuitBreaker) Execute(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := cb.get(key).Execute(fn)

	if xerrors.Is(err, gobreaker.ErrOpenState) || xerrors.Is(err, gobreaker.ErrTooManyRequests) {
		cb.requests.Inc(ctx, metrics.L(LabelKey, key), metrics.L(LabelResult, "rejected"))
		cb.opts.logger.Debug("call rejected by open circuit", clog.String("key", key))

		if cb.opts.fallback != nil {
			return nil, cb.opts.fallback(ctx, key, ErrOpenState)
		}
		return nil, xerrors.Wrapf(ErrOpenState, "key %q", key)
	}

	outcome := "success"
	if !cb.opts.isSuccessful(err) {
		outcome = "failure"
	}
	cb.requests.Inc(ctx, metrics.L(LabelKey, key), metrics.L(LabelResult, outcome))
	return result, err
}

func (cb *circuitBreaker) State(key string) (State, error) {
	if key == "" {
		return StateClosed, ErrKeyEmpty
	}
	val, ok := cb.breakers.Load(key)
	if !ok {
		return StateClosed, nil
	}
	return fromGobreaker(val.(*gobreaker.CircuitBreaker[any]).State()), nil
}

func (cb *circuitBreaker) get(key string) *gobreaker.CircuitBreaker[any] {
	if val, ok := cb.breakers.Load(key); ok {
		return val.(*gobreaker.CircuitBreaker[any])
	}

	created := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:          key,
		MaxRequests:   cb.cfg.MaxRequests,
		Interval:      cb.cfg.Interval,
		Timeout:       cb.cfg.Timeout,
		ReadyToTrip:   cb.readyToTrip,
		IsSuccessful:  cb.opts.isSuccessful,
		OnStateChange: cb.onStateChange,
	})
	actual, _ := cb.breakers.LoadOrStore(key, created)
	return actual.(*gobreaker.CircuitBreaker[any])
}

func (cb *circuitBreaker) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < cb.cfg.MinimumRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= cb.cfg.FailureRatio
}

func (cb *circuitBreaker) onStateChange(name string, from, to gobreaker.State) {
	fromState, toState := fromGobreaker(from).String(), fromGobreaker(to).String()
	cb.stateChanges.Inc(context.Background(),
		metrics.L(LabelKey, name), metrics.L(LabelFrom, fromState), metrics.L(LabelTo, toState))

	fields := []clog.Field{clog.String("key", name), clog.String("from", fromState), clog.String("to", toState)}
	if to == gobreaker.StateOpen {
		cb.opts.logger.Warn("circuit breaker opened", fields...)
		return
	}
	cb.opts.logger.Info("circuit breaker state changed", fields...)
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}
