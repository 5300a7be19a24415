package mongox

import (
	"io"
	"log/slog"
)

const (
	// DefaultBulkSize is the number of staged operations that triggers an
	// automatic flush of a BulkWriter.
	DefaultBulkSize = 100

	// DefaultPageSize is the number of documents fetched per round trip by
	// Iterate.
	DefaultPageSize = 1000
)

// StatsFunc receives operation counters as they are emitted. The key scheme
// follows the shape "bulk-write-<collection>-ops", "<collection>-inserted",
// and so on.
type StatsFunc func(key string, n int64)

// Option configures the functions of this package. Options that do not apply
// to a given call are ignored by it.
type Option func(*callOptions)

type callOptions struct {
	ordered     bool
	bulkSize    int
	pageSize    int
	limit       int64
	projection  interface{}
	resumeAfter interface{}
	stats       StatsFunc
	logger      *slog.Logger
}

func newCallOptions(opts ...Option) *callOptions {
	o := &callOptions{
		ordered:  false,
		bulkSize: DefaultBulkSize,
		pageSize: DefaultPageSize,
		stats:    func(string, int64) {},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithOrdered makes bulk writes execute operations in order and stop at the
// first error. The default is unordered, best-effort execution.
func WithOrdered(ordered bool) Option {
	return func(o *callOptions) {
		o.ordered = ordered
	}
}

// WithBulkSize sets the staging threshold at which a BulkWriter flushes
// itself.
func WithBulkSize(n int) Option {
	return func(o *callOptions) {
		o.bulkSize = n
	}
}

// WithPageSize sets how many documents Iterate fetches per round trip.
func WithPageSize(n int) Option {
	return func(o *callOptions) {
		o.pageSize = n
	}
}

// WithLimit stops Iterate after n documents have been produced.
func WithLimit(n int64) Option {
	return func(o *callOptions) {
		o.limit = n
	}
}

// WithProjection restricts the fields returned by Iterate, using the usual
// find projection document.
func WithProjection(projection interface{}) Option {
	return func(o *callOptions) {
		o.projection = projection
	}
}

// WithResumeAfter starts Iterate strictly after the given sort-field value,
// typically the last value seen by a previous iteration.
func WithResumeAfter(value interface{}) Option {
	return func(o *callOptions) {
		o.resumeAfter = value
	}
}

// WithStats registers a counter callback invoked on every bulk operation.
func WithStats(fn StatsFunc) Option {
	return func(o *callOptions) {
		if fn != nil {
			o.stats = fn
		}
	}
}

// WithLogger sets the logger used for debug output. By default nothing is
// logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *callOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func errAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
