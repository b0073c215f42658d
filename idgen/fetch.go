package idgen

import (
	"context"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
	"github.com/ceyewan/blockseq/trace"
	"github.com/ceyewan/blockseq/xerrors"
)

// fetchBlock 向存储预留一个号段，记录 Span 与指标
func (g *generator) fetchBlock(ctx context.Context, scope string, batch int, mode string) (block, error) {
	ctx, span := g.tracer.Start(ctx, trace.SpanNameFetchBlock,
		oteltrace.WithAttributes(
			attribute.String(trace.AttrScope, scope),
			attribute.Int(trace.AttrBatchSize, batch),
			attribute.String(trace.AttrMode, mode),
		))
	defer span.End()

	start := time.Now()
	blk, attempts, err := g.reserve(ctx, scope, batch)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int(trace.AttrAttempts, attempts))
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int64(trace.AttrBlockLow, blk.low),
			attribute.Int64(trace.AttrBlockHigh, blk.high),
		)
	}

	g.metrics.fetches.Inc(ctx,
		metrics.L(LabelScope, scope), metrics.L(LabelMode, mode), metrics.L(LabelOutcome, outcome))
	g.metrics.duration.Record(ctx, elapsed.Seconds(), metrics.L(LabelMode, mode))
	if err != nil {
		return block{}, err
	}

	g.logger.DebugContext(ctx, "block reserved",
		clog.String("scope", scope),
		clog.String("mode", mode),
		clog.Int64("low", blk.low),
		clog.Int64("high", blk.high),
		clog.Int("attempts", attempts),
		clog.Duration("elapsed", elapsed))
	return blk, nil
}

// reserve 读取种子 N，预留 [N-1, N-1+B]，以条件写把种子推进到 N+B。
// 写冲突时重新读取，最多 MaxWriteAttempts 次。存储错误原样返回。
func (g *generator) reserve(ctx context.Context, scope string, batch int) (block, int, error) {
	for attempt := 1; attempt <= g.cfg.MaxWriteAttempts; attempt++ {
		value, version, err := g.store.Read(ctx, scope)
		if err != nil {
			return block{}, attempt, err
		}

		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || seed < 1 {
			g.logger.ErrorContext(ctx, "corrupt seed in store",
				clog.String("scope", scope),
				clog.String("seed", value))
			return block{}, attempt, xerrors.Wrapf(xerrors.WithCode(ErrCorruptSeed, "corrupt_seed"),
				"scope %q seed %q", scope, value)
		}
		if seed > math.MaxInt64-int64(batch) {
			g.logger.ErrorContext(ctx, "sequence exhausted",
				clog.String("scope", scope),
				clog.Int64("seed", seed),
				clog.Int("batch_size", batch))
			return block{}, attempt, xerrors.Wrapf(xerrors.WithCode(ErrSequenceExhausted, "sequence_exhausted"),
				"scope %q seed %d", scope, seed)
		}

		blk := block{low: seed - 1, high: seed - 1 + int64(batch)}
		ok, err := g.store.ConditionalWrite(ctx, scope, strconv.FormatInt(blk.high+1, 10), version)
		if err != nil {
			return block{}, attempt, err
		}
		if ok {
			return blk, attempt, nil
		}

		g.metrics.conflicts.Inc(ctx, metrics.L(LabelScope, scope))
		g.logger.WarnContext(ctx, "seed write conflict, retrying",
			clog.String("scope", scope),
			clog.Int("attempt", attempt),
			clog.Int("max_attempts", g.cfg.MaxWriteAttempts))
	}

	g.logger.ErrorContext(ctx, "block reservation gave up after repeated conflicts",
		clog.String("scope", scope),
		clog.Int("attempts", g.cfg.MaxWriteAttempts))
	return block{}, g.cfg.MaxWriteAttempts, &ContentionError{Scope: scope, Attempts: g.cfg.MaxWriteAttempts}
}
