// Package server 通过 HTTP 暴露 idgen.Generator。
//
// 路由：
//
//	GET /v1/scopes/:scope/next          下一个 ID，可选 batch_size / prefetch_percent
//	GET /v1/scopes/:scope/ids?count=N   N 个连续 ID
//	GET /healthz                        连接器探活
//	GET /metrics                        Prometheus 指标
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/idgen"
	"github.com/ceyewan/blockseq/metrics"
	"github.com/ceyewan/blockseq/ratelimit"
	"github.com/ceyewan/blockseq/trace"
	"github.com/ceyewan/blockseq/xerrors"
)

// Server ID 发号 HTTP 服务
type Server struct {
	gen     idgen.Generator
	cfg     Config
	opts    options
	logger  clog.Logger
	limiter ratelimit.Limiter
	engine  *gin.Engine
}

// New 创建 Server，cfg 为 nil 时使用默认配置
func New(gen idgen.Generator, cfg *Config, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, xerrors.WithCode(ErrGeneratorNil, "generator_required")
	}

	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	o := options{logger: clog.Discard(), meter: metrics.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{gen: gen, cfg: c, opts: o, logger: o.logger}

	if c.RateLimit > 0 {
		limiter, err := ratelimit.New(&ratelimit.Config{Rate: c.RateLimit, Burst: c.RateBurst},
			ratelimit.WithLogger(o.logger), ratelimit.WithMeter(o.meter))
		if err != nil {
			return nil, xerrors.Wrap(err, "server: create rate limiter")
		}
		s.limiter = limiter
	}

	httpMetrics, err := metrics.NewHTTPServerMetrics(o.meter, c.ServiceName)
	if err != nil {
		if s.limiter != nil {
			_ = s.limiter.Close()
		}
		return nil, err
	}

	s.engine = s.routes(httpMetrics)
	return s, nil
}

func (s *Server) routes(httpMetrics *metrics.HTTPServerMetrics) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		trace.GinMiddleware(s.cfg.ServiceName),
		metrics.GinHTTPMiddleware(httpMetrics),
		requestLog(s.logger),
	)

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.opts.meter.Handler()))

	v1 := r.Group("/v1")
	if s.limiter != nil {
		v1.Use(ratelimit.GinMiddleware(s.limiter, nil))
	}
	v1.GET("/scopes/:scope/next", s.handleNext)
	v1.GET("/scopes/:scope/ids", s.handleRange)
	return r
}

// Handler 返回路由，便于嵌入其他 http.Server 或测试
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 Config.Addr 并阻塞直到 ctx 结束，随后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return xerrors.Wrapf(err, "server: listen %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve 在 ln 上提供服务，ctx 结束后在 ShutdownTimeout 内关闭
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server started", clog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return xerrors.Wrap(err, "server: serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http server shutdown failed", clog.Error(err))
		return xerrors.Wrap(err, "server: shutdown")
	}
	s.logger.Info("http server stopped")
	return nil
}

// Close 释放限流器等后台资源，幂等
func (s *Server) Close() error {
	if s.limiter != nil {
		return s.limiter.Close()
	}
	return nil
}
