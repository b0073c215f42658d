package connector

import "github.com/ceyewan/blockseq/xerrors"

var (
	ErrNotConnected = xerrors.New("connector: not connected")
	ErrConnection   = xerrors.New("connector: connection failed")
	ErrHealthCheck  = xerrors.New("connector: health check failed")
	ErrConfig       = xerrors.New("connector: invalid config")
)
