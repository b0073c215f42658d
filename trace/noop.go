package trace

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ceyewan/blockseq/xerrors"
)

// Discard 安装不导出的 TracerProvider，仅用于生成 TraceID 供日志关联
func Discard(serviceName string) (func(context.Context) error, error) {
	res, err := newResource(context.Background(), serviceName)
	if err != nil {
		return nil, xerrors.Wrap(err, "create resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	install(tp)
	return tp.Shutdown, nil
}
