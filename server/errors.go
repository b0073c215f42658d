package server

import (
	"context"
	"net/http"

	"github.com/ceyewan/blockseq/breaker"
	"github.com/ceyewan/blockseq/idgen"
	"github.com/ceyewan/blockseq/xerrors"
)

// ErrGeneratorNil 未提供 Generator
var ErrGeneratorNil = xerrors.New("server: generator is nil")

// StatusClientClosedRequest 客户端在响应前断开
const StatusClientClosedRequest = 499

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf 将 idgen 与存储层错误映射为 HTTP 状态码和默认错误码
func statusOf(err error) (int, string) {
	switch {
	case xerrors.Is(err, idgen.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case xerrors.Is(err, idgen.ErrContention):
		return http.StatusServiceUnavailable, "write_contention"
	case xerrors.Is(err, breaker.ErrOpenState):
		return http.StatusServiceUnavailable, "circuit_open"
	case xerrors.Is(err, idgen.ErrCorruptSeed):
		return http.StatusInternalServerError, "corrupt_seed"
	case xerrors.Is(err, idgen.ErrSequenceExhausted):
		return http.StatusInternalServerError, "sequence_exhausted"
	case xerrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case xerrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "request_canceled"
	default:
		return http.StatusBadGateway, "store_unavailable"
	}
}

func newErrorBody(err error, fallback string) errorBody {
	code := xerrors.GetCode(err)
	if code == "" {
		code = fallback
	}
	return errorBody{Error: err.Error(), Code: code}
}
