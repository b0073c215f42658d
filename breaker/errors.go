package breaker

import "github.com/ceyewan/blockseq/xerrors"

var (
	ErrConfigNil    = xerrors.New("breaker: config is nil")
	ErrInvalidRatio = xerrors.New("breaker: failure ratio must be in (0, 1]")
	ErrKeyEmpty     = xerrors.New("breaker: key is empty")

	// ErrOpenState 熔断打开或半开探测名额已满
	ErrOpenState = xerrors.New("breaker: circuit breaker is open")
)
