package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		wantErr  bool
		wantNoop bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "disabled", cfg: &Config{Enabled: false}, wantNoop: true},
		{name: "dev default", cfg: NewDevDefaultConfig("blockseq-test")},
		{name: "empty path uses default", cfg: &Config{Enabled: true}},
		{name: "bad path", cfg: &Config{Enabled: true, Path: "metrics"}, wantErr: true},
		{name: "bad port", cfg: &Config{Enabled: true, Port: 70000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meter, err := New(tt.cfg, WithLogger(clog.Discard()))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			_, isNoop := meter.(noopMeter)
			assert.Equal(t, tt.wantNoop, isNoop)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, meter.Shutdown(ctx))
		})
	}
}

func scrape(t *testing.T, m Meter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusExport(t *testing.T) {
	cfg := NewDevDefaultConfig("blockseq-test")
	cfg.EnableRuntimeStats = false
	meter, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = meter.Shutdown(context.Background()) })

	ctx := context.Background()

	issued, err := meter.Counter("test_ids_issued_total", "issued ids")
	require.NoError(t, err)
	issued.Inc(ctx, L("scope", "orders"))
	issued.Add(ctx, 4, L("scope", "orders"))
	issued.Add(ctx, -3, L("scope", "orders"))

	inflight, err := meter.Gauge("test_inflight", "in-flight fetches")
	require.NoError(t, err)
	inflight.Inc(ctx)
	inflight.Inc(ctx)
	inflight.Dec(ctx)

	latency, err := meter.Histogram("test_fetch_duration_seconds", "fetch latency",
		WithUnit("s"), WithBuckets([]float64{0.1, 0.5}))
	require.NoError(t, err)
	latency.Record(ctx, 0.2, L("mode", "sync"))

	body := scrape(t, meter)
	assert.Contains(t, body, "test_ids_issued_total")
	assert.Contains(t, body, `scope="orders"`)
	assert.Regexp(t, `test_ids_issued_total\{[^}]*\} 5\b`, body)
	assert.Regexp(t, `test_inflight\{[^}]*\} 1\b`, body)
	assert.Contains(t, body, "test_fetch_duration_seconds_bucket")
	assert.Contains(t, body, `le="0.5"`)
	assert.Contains(t, body, `mode="sync"`)
}

func TestDiscard(t *testing.T) {
	m := Discard()
	ctx := context.Background()

	c, err := m.Counter("c", "")
	require.NoError(t, err)
	c.Inc(ctx, L("k", "v"))
	c.Add(ctx, 2)

	g, err := m.Gauge("g", "")
	require.NoError(t, err)
	g.Set(ctx, 1)
	g.Inc(ctx)
	g.Dec(ctx)

	h, err := m.Histogram("h", "", WithBuckets([]float64{1}))
	require.NoError(t, err)
	h.Record(ctx, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, m.Shutdown(ctx))
}

func TestMetricOptions(t *testing.T) {
	buckets := []float64{0.1, 1}
	o := applyMetricOptions([]MetricOption{WithUnit("s"), WithBuckets(buckets)})
	assert.Equal(t, "s", o.Unit)
	assert.Equal(t, []float64{0.1, 1}, o.Buckets)

	buckets[0] = 99
	assert.Equal(t, 0.1, o.Buckets[0], "WithBuckets 应复制切片")
}

func TestLabelKey(t *testing.T) {
	assert.Equal(t, "", labelKey(nil))
	assert.Equal(t, "a=1|b=2", labelKey([]Label{L("a", "1"), L("b", "2")}))
}

func TestHTTPStatusClassAndOutcome(t *testing.T) {
	tests := []struct {
		status  int
		class   string
		outcome string
	}{
		{200, "2xx", OutcomeSuccess},
		{304, "3xx", OutcomeSuccess},
		{400, "4xx", OutcomeError},
		{503, "5xx", OutcomeError},
		{42, "unknown", OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.class, HTTPStatusClass(tt.status), "status %d", tt.status)
		assert.Equal(t, tt.outcome, HTTPOutcome(tt.status), "status %d", tt.status)
	}
}
