package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/metrics"
)

const (
	// MetricRequests 限流检查次数 (Counter)
	MetricRequests = "ratelimit_requests_total"

	LabelResult = "result"
)

// bucket 包装 rate.Limiter 并记录最后访问时间
type bucket struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

type localLimiter struct {
	cfg      *Config
	logger   clog.Logger
	requests metrics.Counter

	buckets   sync.Map // key -> *bucket
	stopCh    chan struct{}
	closeOnce sync.Once
}

func newLocal(cfg *Config, logger clog.Logger, meter metrics.Meter) (*localLimiter, error) {
	requests, err := meter.Counter(MetricRequests, "Rate limit decisions.")
	if err != nil {
		return nil, err
	}
	l := &localLimiter{
		cfg:      cfg,
		logger:   logger,
		requests: requests,
		stopCh:   make(chan struct{}),
	}
	go l.cleanup()
	return l, nil
}

func (l *localLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}

	b := l.bucket(key)
	now := time.Now()
	allowed := b.limiter.AllowN(now, 1)
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()

	result := "allowed"
	if !allowed {
		result = "denied"
		l.logger.Debug("request rate limited", clog.String("key", key))
	}
	l.requests.Inc(ctx, metrics.L(LabelResult, result))
	return allowed, nil
}

func (l *localLimiter) bucket(key string) *bucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*bucket)
	}
	b := &bucket{
		limiter:  rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst),
		lastSeen: time.Now(),
	}
	actual, _ := l.buckets.LoadOrStore(key, b)
	return actual.(*bucket)
}

// cleanup 定期回收空闲的令牌桶
func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *localLimiter) sweep(now time.Time) int {
	count := 0
	l.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		idle := now.Sub(b.lastSeen)
		b.mu.Unlock()

		if idle > l.cfg.IdleTimeout {
			l.buckets.Delete(key)
			count++
		}
		return true
	})
	if count > 0 {
		l.logger.Debug("cleaned up idle buckets", clog.Int("count", count))
	}
	return count
}

func (l *localLimiter) Close() error {
	l.closeOnce.Do(func() { close(l.stopCh) })
	return nil
}
