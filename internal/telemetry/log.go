package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Debug records a high-frequency event, such as a single interning operation.
func (r *Recorder) Debug(ctx context.Context, event, message string, attrs ...Attr) {
	r.emit(ctx, entry{log.SeverityDebug, event, message, nil, attrs})
}

// Info records an event that changes the state of a table, such as opening or
// closing it.
func (r *Recorder) Info(ctx context.Context, event, message string, attrs ...Attr) {
	r.emit(ctx, entry{log.SeverityInfo, event, message, nil, attrs})
}

// Error records a failed operation.
//
// The span in ctx is marked as failed and the "errors" counter is incremented,
// even if the logger discards error records.
func (r *Recorder) Error(ctx context.Context, event string, err error, attrs ...Attr) {
	attrs = append(attrs, Type("error.type", err))

	r.emit(ctx, entry{log.SeverityError, event, err.Error(), err, attrs})
	r.errorCount(ctx, 1)

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// entry is a single log record, before conversion to OpenTelemetry types.
type entry struct {
	severity log.Severity
	event    string
	message  string
	err      error
	attrs    []Attr
}

// emit writes e to the logger and attaches it to the current span as an
// event. Nothing is recorded if the logger is disabled for e's severity.
func (r *Recorder) emit(ctx context.Context, e entry) {
	if !r.logger.Enabled(ctx, log.EnabledParameters{Severity: e.severity}) {
		return
	}

	trace.SpanFromContext(ctx).AddEvent(
		e.event,
		trace.WithAttributes(attribute.String("message", e.message)),
		trace.WithAttributes(asAttrKeyValues(e.attrs)...),
	)

	var rec log.Record
	rec.SetEventName(e.event)
	rec.SetSeverity(e.severity)
	rec.AddAttributes(log.String("message", e.message))

	if e.err != nil {
		rec.AddAttributes(log.String("error", e.err.Error()))
	}

	if kvs := asLogKeyValues(e.attrs); len(kvs) != 0 {
		rec.SetBody(log.MapValue(kvs...))
	}

	r.logger.Emit(ctx, rec)
}
