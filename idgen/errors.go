package idgen

import (
	"fmt"

	"github.com/ceyewan/blockseq/xerrors"
)

var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("idgen: config is nil")

	// ErrStoreNil 种子存储为空
	ErrStoreNil = xerrors.New("idgen: store is nil")

	// ErrInvalidInput 无效的输入
	ErrInvalidInput = xerrors.ErrInvalidInput

	// ErrCorruptSeed 远端种子无法解析为正整数，不重试
	ErrCorruptSeed = xerrors.New("idgen: corrupt seed")

	// ErrSequenceExhausted 再预留一个号段将超出 int64
	ErrSequenceExhausted = xerrors.New("idgen: sequence exhausted")

	// ErrContention 连续写冲突次数达到上限
	ErrContention = xerrors.New("idgen: write contention")
)

var errContentionCoded = xerrors.WithCode(ErrContention, "write_contention")

// ContentionError 号段预留连续冲突 Attempts 次后放弃
//
// errors.Is(err, ErrContention) 为 true，调整 batch size 或降低并发可缓解。
type ContentionError struct {
	Scope    string
	Attempts int
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("idgen: scope %q: %d conflicting seed writes in a row", e.Scope, e.Attempts)
}

func (e *ContentionError) Unwrap() error {
	return errContentionCoded
}
