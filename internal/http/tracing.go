package http

import (
	"context"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// WithSpan runs fn inside a child span named name and records its error on the span.
func WithSpan(ctx context.Context, name string, fn func(ctx context.Context) error, opts ...tracer.StartSpanOption) error {
	span, ctx2 := tracer.StartSpanFromContext(ctx, name, opts...)
	err := fn(ctx2)
	span.Finish(tracer.WithError(err))
	return err
}
