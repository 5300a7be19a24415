package mongox

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Iterate walks the documents of col matching query in ascending sortField
// order, fetching them in pages of WithPageSize documents so only one page
// is in memory at a time. Iteration ends when a page comes back shorter than
// the page size.
//
// The query must not constrain sortField: its values are used as the paging
// boundary between round trips. The iterator is forward-only and not
// restartable; call Iterate again to walk the collection anew.
//
//	it := mongox.Iterate(col, bson.M{"status": "ready"}, "_id")
//	for it.Next(ctx) {
//		var doc item
//		if err := it.Decode(&doc); err != nil {
//			return err
//		}
//	}
//	return it.Err()
func Iterate(col Collection, query bson.M, sortField string, opts ...Option) *Iterator {
	o := newCallOptions(opts...)

	it := &Iterator{
		col:       col,
		sortField: sortField,
		after:     o.resumeAfter,
		o:         o,
	}

	if sortField == "" {
		it.err = InvalidArgumentErrorf("iterate on %q requires a sort field", col.Name())
		return it
	}
	if o.pageSize <= 0 {
		it.err = InvalidArgumentErrorf("iterate on %q requires a positive page size, got %d", col.Name(), o.pageSize)
		return it
	}
	if _, ok := query[sortField]; ok {
		it.err = InvalidArgumentErrorf("iterate query on %q cannot contain the sort field %q", col.Name(), sortField)
		return it
	}

	// Own copy so iteration never mutates the caller's query.
	it.query = make(bson.M, len(query))
	for k, v := range query {
		it.query[k] = v
	}

	return it
}

// Iterator is a forward-only cursor over the matching documents of a
// collection. Not safe for concurrent use.
type Iterator struct {
	col       Collection
	query     bson.M
	sortField string
	o         *callOptions

	// after is the strictly-greater-than sort boundary for the next page.
	after   interface{}
	page    []bson.Raw
	idx     int
	current bson.Raw
	seen    int64
	short   bool
	started bool
	err     error
}

// Next advances to the next document, fetching a new page from the
// collection when the current one is drained. It returns false when the
// result set is exhausted, the configured limit is reached, or an error
// occurred; check Err after the loop.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.o.limit > 0 && it.seen >= it.o.limit {
		return false
	}

	for {
		if it.idx < len(it.page) {
			doc := it.page[it.idx]
			it.idx++

			v, err := doc.LookupErr(it.sortField)
			if err != nil {
				it.err = InvalidArgumentErrorf(
					"document in %q has no sort field %q; a projection must keep it",
					it.col.Name(), it.sortField,
				)
				return false
			}

			it.after = v
			it.current = doc
			it.seen++
			return true
		}

		if it.started && it.short {
			return false
		}
		if !it.fetchPage(ctx) {
			return false
		}
	}
}

// Current returns the raw document the iterator is positioned on.
func (it *Iterator) Current() bson.Raw {
	return it.current
}

// Decode unmarshals the current document into v.
func (it *Iterator) Decode(v interface{}) error {
	if it.current == nil {
		return InvalidArgumentErrorf("iterator on %q is not positioned on a document", it.col.Name())
	}
	return bson.Unmarshal(it.current, v)
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// All drains the iterator and returns every remaining document. It defeats
// the paging memory bound, so reserve it for result sets known to be small.
func (it *Iterator) All(ctx context.Context) ([]bson.Raw, error) {
	docs := []bson.Raw{}
	for it.Next(ctx) {
		docs = append(docs, it.Current())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (it *Iterator) fetchPage(ctx context.Context) bool {
	filter := make(bson.M, len(it.query)+1)
	for k, v := range it.query {
		filter[k] = v
	}
	if it.after != nil {
		filter[it.sortField] = bson.M{"$gt": it.after}
	}

	fo := options.Find().
		SetSort(bson.D{{Key: it.sortField, Value: 1}}).
		SetLimit(int64(it.o.pageSize))
	if it.o.projection != nil {
		fo.SetProjection(it.o.projection)
	}

	cur, err := it.col.Find(ctx, filter, fo)
	if err != nil {
		it.err = Error{
			Type:          ErrorTypeDatabase,
			Message:       fmt.Sprintf("find on %q failed: %s", it.col.Name(), err),
			OriginalError: err,
		}
		return false
	}

	var page []bson.Raw
	if err := cur.All(ctx, &page); err != nil {
		it.err = Error{
			Type:          ErrorTypeDatabase,
			Message:       fmt.Sprintf("reading find cursor on %q failed: %s", it.col.Name(), err),
			OriginalError: err,
		}
		return false
	}

	it.page = page
	it.idx = 0
	it.started = true
	it.short = len(page) < it.o.pageSize

	it.o.logger.DebugContext(ctx, "fetched page",
		slog.String("collection", it.col.Name()),
		slog.Int("size", len(page)),
	)

	return true
}
