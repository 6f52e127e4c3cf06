package table

import (
	"context"
	"sync/atomic"

	"github.com/dogmatiq/atomkit/internal/telemetry"
	"github.com/dogmatiq/atomkit/internal/x/xtelemetry"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [Store] that adds telemetry to s.
//
// A nil provider is replaced by the corresponding OpenTelemetry global
// provider.
func WithTelemetry(
	s Store,
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) Store {
	return &instrumentedStore{
		Next: s,
		Telemetry: telemetry.Provider{
			TracerProvider: p,
			MeterProvider:  m,
			LoggerProvider: l,
		},
	}
}

// instrumentedStore is a decorator that adds instrumentation to a [Store].
type instrumentedStore struct {
	Next      Store
	Telemetry telemetry.Provider
}

// Open returns the table with the given name.
func (s *instrumentedStore) Open(ctx context.Context, name string) (Table, error) {
	telem := s.Telemetry.Recorder(
		"github.com/dogmatiq/atomkit/table",
		telemetry.Type("table.store", s.Next),
		telemetry.String("table.name", name),
		telemetry.String("table.handle", xtelemetry.HandleID(name)),
	)

	t := &instrumentedTable{
		Telemetry:  telem,
		OpenTables: telem.UpDownCounter("open_tables", "{table}", "The number of tables that are currently open."),
		Interns:    telem.Counter("interns", "{operation}", "The number of times text has been interned."),
		AddRefs:    telem.Counter("add_refs", "{operation}", "The number of times an entry's reference count has been incremented."),
		Releases:   telem.Counter("releases", "{operation}", "The number of times an entry's reference count has been decremented."),
		LiveRefs:   telem.UpDownCounter("live_refs", "{reference}", "The number of references currently held through this table."),
		TextSize:   telem.Histogram("text.size", "{code_unit}", "The sizes of the entries that have been interned."),
	}

	ctx, span := telem.StartSpan(ctx, "table.open")
	defer span.End()

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		telem.Error(ctx, "table.open.error", err)
		return nil, err
	}

	t.Next = next
	t.OpenTables(ctx, 1)

	u, ok := next.(UTF16Table)

	telem.Info(
		ctx,
		"table.open.ok",
		"opened table",
		telemetry.Bool("utf16", ok),
	)

	if ok {
		return &instrumentedUTF16Table{t, u}, nil
	}

	return t, nil
}

type instrumentedTable struct {
	Next      Table
	Telemetry *telemetry.Recorder
	closed    atomic.Bool

	OpenTables telemetry.Instrument[int64]
	Interns    telemetry.Instrument[int64]
	AddRefs    telemetry.Instrument[int64]
	Releases   telemetry.Instrument[int64]
	LiveRefs   telemetry.Instrument[int64]
	TextSize   telemetry.Instrument[int64]
}

func (t *instrumentedTable) Name() string {
	return t.Next.Name()
}

func (t *instrumentedTable) Space() Space {
	return t.Next.Space()
}

func (t *instrumentedTable) Intern(text string) Ref {
	ctx, span := t.Telemetry.StartSpan(
		context.Background(),
		"table.intern",
		telemetry.Text("text", text),
		telemetry.Int("text_size", len(text)),
	)
	defer span.End()

	r := t.Next.Intern(text)
	t.interned(ctx, span, r)

	return r
}

func (t *instrumentedTable) Hash(r Ref) uint32 {
	return t.Next.Hash(r)
}

func (t *instrumentedTable) AddRef(r Ref) {
	t.Next.AddRef(r)

	ctx := context.Background()
	t.AddRefs(ctx, 1)
	t.LiveRefs(ctx, 1)
}

func (t *instrumentedTable) Release(r Ref) {
	t.Next.Release(r)

	ctx := context.Background()
	t.Releases(ctx, 1)
	t.LiveRefs(ctx, -1)
}

func (t *instrumentedTable) UTF16(r Ref) []uint16 {
	return t.Next.UTF16(r)
}

func (t *instrumentedTable) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		// Closing an already-closed resource is not an error, allowing Close()
		// to be called unconditionally by a defer statement.
		return nil
	}

	ctx, span := t.Telemetry.StartSpan(context.Background(), "table.close")
	defer span.End()

	defer t.OpenTables(ctx, -1)

	if err := t.Next.Close(); err != nil {
		t.Telemetry.Error(ctx, "table.close.error", err)
		return err
	}

	t.Telemetry.Info(ctx, "table.close.ok", "table closed")

	return nil
}

// interned records the outcome of a successful intern operation.
func (t *instrumentedTable) interned(ctx context.Context, span *telemetry.Span, r Ref) {
	size := int64(len(t.Next.UTF16(r)))

	span.SetAttributes(
		telemetry.Int("ref", r),
		telemetry.Int("code_units", size),
		telemetry.If(size == 0, telemetry.Bool("empty", true)),
	)

	t.Interns(ctx, 1)
	t.LiveRefs(ctx, 1)
	t.TextSize(ctx, size)

	t.Telemetry.Debug(ctx, "table.intern.ok", "interned text")
}

type instrumentedUTF16Table struct {
	*instrumentedTable
	next UTF16Table
}

func (t *instrumentedUTF16Table) InternUTF16(units []uint16) Ref {
	ctx, span := t.Telemetry.StartSpan(
		context.Background(),
		"table.intern_utf16",
		telemetry.Int("text_size", len(units)),
	)
	defer span.End()

	r := t.next.InternUTF16(units)
	t.interned(ctx, span, r)

	return r
}
