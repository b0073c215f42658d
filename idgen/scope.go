package idgen

import (
	"context"

	"github.com/ceyewan/blockseq/clog"
)

// block 预留到的号段，可发放 (low, high]
type block struct {
	low  int64
	high int64
}

// prefetch 后台号段获取的句柄。
// blk 与 err 在 done 关闭前写入，关闭后只读。
type prefetch struct {
	done chan struct{}
	blk  block
	err  error
}

// scopeState 单个 scope 的内存状态，所有字段只在持有 sem 时访问
type scopeState struct {
	sem chan struct{}

	lastIssued int64
	highest    int64
	pending    *prefetch
}

func newScopeState() *scopeState {
	return &scopeState{sem: make(chan struct{}, 1)}
}

// lock 获取 scope 锁，等待期间可被 ctx 取消
func (s *scopeState) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *scopeState) unlock() {
	<-s.sem
}

// nextLocked 发放下一个 ID，调用方必须持有 scope 锁
func (g *generator) nextLocked(ctx context.Context, s *scopeState, scope string, req request) (int64, error) {
	switch {
	case s.lastIssued == s.highest:
		blk, err := g.refill(ctx, s, scope, req)
		if err != nil {
			return 0, err
		}
		s.lastIssued, s.highest = blk.low, blk.high

	case req.prefetch > 0 && s.highest-s.lastIssued <= req.prefetch && s.pending == nil:
		s.pending = g.startPrefetch(ctx, scope, req.batch)
	}

	s.lastIssued++
	return s.lastIssued, nil
}

// refill 号段耗尽：优先采用进行中的预取，否则同步获取
func (g *generator) refill(ctx context.Context, s *scopeState, scope string, req request) (block, error) {
	p := s.pending
	if p == nil {
		return g.fetchBlock(ctx, scope, req.batch, ModeSync)
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		// 句柄保留给下一个调用方
		return block{}, ctx.Err()
	}

	s.pending = nil
	if p.err != nil {
		return block{}, p.err
	}
	return p.blk, nil
}

// startPrefetch 在后台获取下一号段。
// 使用脱离取消的 ctx：触发预取的请求返回后预取仍需完成。
func (g *generator) startPrefetch(ctx context.Context, scope string, batch int) *prefetch {
	p := &prefetch{done: make(chan struct{})}
	bg := context.WithoutCancel(ctx)

	go func() {
		defer close(p.done)

		if g.cfg.PrefetchTimeout > 0 {
			var cancel context.CancelFunc
			bg, cancel = context.WithTimeout(bg, g.cfg.PrefetchTimeout)
			defer cancel()
		}

		p.blk, p.err = g.fetchBlock(bg, scope, batch, ModePrefetch)
		if p.err != nil {
			g.logger.WarnContext(bg, "block prefetch failed",
				clog.String("scope", scope),
				clog.Int("batch_size", batch),
				clog.Error(p.err))
		}
	}()
	return p
}
