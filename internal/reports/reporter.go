// Package reports builds the canned analytics reports from the ERP store.
//
// A build never fails outright: every call yields a Result holding either
// the structured data plus its text rendering, or a tagged Error. The cause
// of a failure is logged before it is converted.
package reports

import (
	"context"
	"errors"
	"time"

	"agenticerp/internal/logging"
	"agenticerp/internal/types"

	"golang.org/x/sync/errgroup"
)

// Dialect supplies the backend-specific pieces of the report SQL.
type Dialect interface {
	MonthBucket(column string) string
	TimeArg(t time.Time) any
}

// Observer is told about every finished build; err is nil on success.
type Observer func(kind Kind, elapsed time.Duration, err *Error)

type builder func(ctx context.Context) (any, error)

// Reporter builds reports against an Executor.
type Reporter struct {
	exec        types.Executor
	dialect     Dialect
	now         func() time.Time
	concurrency int
	observer    Observer
	builders    map[Kind]builder
}

// New creates a reporter over exec.
func New(exec types.Executor, dialect Dialect) *Reporter {
	r := &Reporter{
		exec:        exec,
		dialect:     dialect,
		now:         time.Now,
		concurrency: len(Kinds()),
	}
	r.builders = map[Kind]builder{
		KindSales:     r.buildSales,
		KindCustomer:  r.buildCustomer,
		KindProduct:   r.buildProduct,
		KindFinancial: r.buildFinancial,
	}
	return r
}

// SetClock replaces the clock used for the trailing-month window.
func (r *Reporter) SetClock(now func() time.Time) {
	r.now = now
}

// SetConcurrency bounds how many reports BuildAll runs at once.
func (r *Reporter) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	r.concurrency = n
}

// SetObserver registers a callback for finished builds.
func (r *Reporter) SetObserver(fn Observer) {
	r.observer = fn
}

// Build builds one report.
func (r *Reporter) Build(ctx context.Context, kind Kind) Result {
	start := time.Now()
	res := r.build(ctx, kind)
	elapsed := time.Since(start)

	if r.observer != nil {
		r.observer(kind, elapsed, res.Err)
	}
	if res.OK() {
		logging.ReportsDebug("Built %s report in %v", kind, elapsed)
	}
	return res
}

func (r *Reporter) build(ctx context.Context, kind Kind) Result {
	b, ok := r.builders[kind]
	if !ok {
		logging.ReportsWarn("Unknown report kind %q", kind)
		return Result{Kind: kind, Err: &Error{Kind: ErrorUnknownKind, Message: ErrUnknownKind.Error() + ": " + string(kind)}}
	}

	data, err := b(ctx)
	if err != nil {
		logging.ReportsError("Building %s report failed: %v", kind, err)
		return Result{Kind: kind, Err: classify(err)}
	}

	return Result{Kind: kind, Data: data, Report: Render(data)}
}

func classify(err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrorTimeout, Message: err.Error()}
	}
	return &Error{Kind: ErrorStore, Message: err.Error()}
}

// BuildAll builds several reports concurrently and returns them in the
// order requested. With no kinds it builds every kind.
func (r *Reporter) BuildAll(ctx context.Context, kinds ...Kind) []Result {
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	timer := logging.StartTimer(logging.CategoryReports, "BuildAll")
	defer timer.Stop()

	results := make([]Result, len(kinds))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, k := range kinds {
		i, k := i, k
		g.Go(func() error {
			results[i] = r.Build(ctx, k)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
