package store

import (
	"context"
	"errors"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DriverMemory selects the process-local map store.
	DriverMemory = "memory"
	// DriverRedis selects the Redis store.
	DriverRedis = "redis"
	// DriverPostgres selects the PostgreSQL store.
	DriverPostgres = "postgres"
)

type tracer struct {
	ins    instrument.Instrumentation
	driver string
}

func (t tracer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.ins.Tracer("twofactor.outbound.store").Start(ctx, name,
		trace.WithAttributes(attribute.String("store.driver", t.driver)))
}

func (t tracer) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
