// Package tracing wraps one run of the crawler in an otel span so a
// deployment that already runs a collector gets this repo's run
// boundaries for free. It never configures an exporter itself; a
// caller that wants spans to go anywhere installs a TracerProvider on
// the global otel registry before calling StartRun, same as any other
// otel-instrumented library.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cklxx/scoutqueue/internal/runner"

// StartRun opens a span covering one runner.Run invocation. The
// returned func must be deferred to end the span.
func StartRun(ctx context.Context, runDir string) (context.Context, func()) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "runner.Run", trace.WithAttributes(
		attribute.String("scoutqueue.run_dir", runDir),
	))
	return ctx, func() { span.End() }
}

// StartTask opens a span covering one task's Execute call, scoped
// under whatever span is already active in ctx.
func StartTask(ctx context.Context, taskID string) (context.Context, func(err error)) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "task.Execute", trace.WithAttributes(
		attribute.String("scoutqueue.task_id", taskID),
	))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
