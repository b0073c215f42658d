package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/xerrors"
)

func newTestLimiter(t *testing.T, cfg *Config) *localLimiter {
	t.Helper()
	limiter, err := New(cfg, WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter.(*localLimiter)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		wantErr  error
		wantCode string
	}{
		{name: "nil config", cfg: nil, wantErr: ErrConfigNil},
		{name: "zero rate", cfg: &Config{}, wantErr: ErrInvalidLimit, wantCode: "rate_must_be_positive"},
		{name: "negative burst", cfg: &Config{Rate: 1, Burst: -1}, wantErr: ErrInvalidLimit, wantCode: "burst_must_be_positive"},
		{name: "negative idle timeout", cfg: &Config{Rate: 1, IdleTimeout: -time.Second}, wantErr: xerrors.ErrInvalidInput, wantCode: "durations_cannot_be_negative"},
		{name: "valid", cfg: &Config{Rate: 10, Burst: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := New(tt.cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NoError(t, limiter.Close())
				assert.NoError(t, limiter.Close(), "Close 应幂等")
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, xerrors.GetCode(err))
		})
	}
}

func TestBurstDefaultsToRate(t *testing.T) {
	cfg := &Config{Rate: 2.5}
	cfg.setDefaults()
	assert.Equal(t, 3, cfg.Burst)
}

func TestAllow(t *testing.T) {
	limiter := newTestLimiter(t, &Config{Rate: 1, Burst: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed, "令牌耗尽后应拒绝")

	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "不同 key 互不影响")

	_, err = limiter.Allow(ctx, "")
	assert.ErrorIs(t, err, ErrKeyEmpty)
}

func TestSweep(t *testing.T) {
	limiter := newTestLimiter(t, &Config{Rate: 1, IdleTimeout: time.Minute, CleanupInterval: time.Hour})
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "idle")
	require.NoError(t, err)

	assert.Zero(t, limiter.sweep(time.Now()))
	assert.Equal(t, 1, limiter.sweep(time.Now().Add(2*time.Minute)))
	_, ok := limiter.buckets.Load("idle")
	assert.False(t, ok)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newTestLimiter(t, &Config{Rate: 1, Burst: 1})

	r := gin.New()
	r.Use(GinMiddleware(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("a").Code)
	limited := do("a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded","code":"rate_limited"}`, limited.Body.String())
	assert.Equal(t, http.StatusOK, do("b").Code)
	assert.Equal(t, http.StatusOK, do("").Code, "无法提取 key 时放行")
}
