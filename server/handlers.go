package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/blockseq/clog"
	"github.com/ceyewan/blockseq/idgen"
	"github.com/ceyewan/blockseq/xerrors"
)

type nextResponse struct {
	Scope string `json:"scope"`
	ID    int64  `json:"id"`
}

type rangeResponse struct {
	Scope string  `json:"scope"`
	IDs   []int64 `json:"ids"`
}

type healthResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

func (s *Server) handleNext(c *gin.Context) {
	scope := c.Param("scope")
	opts, err := s.nextOptions(c)
	if err != nil {
		s.fail(c, scope, err)
		return
	}

	ctx := context.WithValue(c.Request.Context(), clog.ScopeKey, scope)
	id, err := s.gen.NextID(ctx, scope, opts...)
	if err != nil {
		s.fail(c, scope, err)
		return
	}
	c.JSON(http.StatusOK, nextResponse{Scope: scope, ID: id})
}

func (s *Server) handleRange(c *gin.Context) {
	scope := c.Param("scope")
	count, err := strconv.Atoi(c.Query("count"))
	if err != nil || count < 1 || count > s.cfg.MaxRangeSize {
		s.fail(c, scope, xerrors.WithCode(
			xerrors.Wrapf(xerrors.ErrInvalidInput, "count must be in [1, %d]", s.cfg.MaxRangeSize),
			"invalid_count"))
		return
	}
	opts, err := s.nextOptions(c)
	if err != nil {
		s.fail(c, scope, err)
		return
	}

	ctx := context.WithValue(c.Request.Context(), clog.ScopeKey, scope)
	ids, err := s.gen.NextIDs(ctx, scope, count, opts...)
	if err != nil {
		s.fail(c, scope, err)
		return
	}
	c.JSON(http.StatusOK, rangeResponse{Scope: scope, IDs: ids})
}

func (s *Server) handleHealth(c *gin.Context) {
	var (
		failed []string
		errs   []error
	)
	for _, conn := range s.opts.connectors {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.HealthTimeout)
		err := conn.HealthCheck(ctx)
		cancel()
		if err != nil {
			failed = append(failed, conn.Name())
			errs = append(errs, xerrors.Wrapf(err, "connector %s", conn.Name()))
		}
	}

	if err := xerrors.Combine(errs...); err != nil {
		s.logger.Warn("health check failed", clog.Any("connectors", failed), clog.Error(err))
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Failed: failed})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// nextOptions 解析可选的 batch_size / prefetch_percent 覆盖参数，batch_size 不超过 MaxBatchSize
func (s *Server) nextOptions(c *gin.Context) ([]idgen.NextOption, error) {
	var opts []idgen.NextOption
	if raw, ok := c.GetQuery("batch_size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n > s.cfg.MaxBatchSize {
			return nil, xerrors.WithCode(
				xerrors.Wrapf(xerrors.ErrInvalidInput, "batch_size %q must not exceed %d", raw, s.cfg.MaxBatchSize),
				"invalid_batch_size")
		}
		opts = append(opts, idgen.WithBatchSize(n))
	}
	if raw, ok := c.GetQuery("prefetch_percent"); ok {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return nil, xerrors.WithCode(xerrors.Wrapf(xerrors.ErrInvalidInput, "prefetch_percent %q", raw), "invalid_prefetch_percent")
		}
		opts = append(opts, idgen.WithPrefetchPercent(p))
	}
	return opts, nil
}

func (s *Server) fail(c *gin.Context, scope string, err error) {
	status, fallback := statusOf(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "id request failed",
			clog.String("scope", scope), clog.Int("status", status), clog.ErrorWithCode(err, ""))
	}
	c.AbortWithStatusJSON(status, newErrorBody(err, fallback))
}
