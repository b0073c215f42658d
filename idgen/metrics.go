package idgen

import "github.com/ceyewan/blockseq/metrics"

// Metrics 指标常量定义
const (
	// MetricIDsIssued 发放的 ID 总数 (Counter)
	MetricIDsIssued = "idgen_block_ids_issued_total"

	// MetricBlockFetches 号段获取次数 (Counter)
	MetricBlockFetches = "idgen_block_fetches_total"

	// MetricWriteConflicts 种子条件写冲突次数 (Counter)
	MetricWriteConflicts = "idgen_block_write_conflicts_total"

	// MetricFetchDuration 号段获取耗时 (Histogram)
	MetricFetchDuration = "idgen_block_fetch_duration_seconds"
)

const (
	LabelScope   = "scope"
	LabelMode    = "mode"
	LabelOutcome = metrics.LabelOutcome

	ModeSync     = "sync"
	ModePrefetch = "prefetch"
)

var fetchDurationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

type generatorMetrics struct {
	issued    metrics.Counter
	fetches   metrics.Counter
	conflicts metrics.Counter
	duration  metrics.Histogram
}

func newGeneratorMetrics(m metrics.Meter) (*generatorMetrics, error) {
	issued, err := m.Counter(MetricIDsIssued, "IDs handed out to callers.")
	if err != nil {
		return nil, err
	}
	fetches, err := m.Counter(MetricBlockFetches, "Block reservations against the seed store.")
	if err != nil {
		return nil, err
	}
	conflicts, err := m.Counter(MetricWriteConflicts, "Conditional seed writes that lost a race.")
	if err != nil {
		return nil, err
	}
	duration, err := m.Histogram(MetricFetchDuration, "Time spent reserving one block.",
		metrics.WithUnit("s"), metrics.WithBuckets(fetchDurationBuckets))
	if err != nil {
		return nil, err
	}
	return &generatorMetrics{issued: issued, fetches: fetches, conflicts: conflicts, duration: duration}, nil
}
