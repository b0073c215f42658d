package store

import "github.com/ceyewan/blockseq/xerrors"

var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("store: config is nil")

	// ErrConnectorNil 所选 Driver 需要的连接器未提供
	ErrConnectorNil = xerrors.New("store: connector is nil")

	// ErrInvalidInput 无效的配置或参数
	ErrInvalidInput = xerrors.ErrInvalidInput
)
