package mongox

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// BulkWriter stages write operations for a collection and sends them in one
// bulk round trip when flushed. The convenience methods (InsertOne,
// UpdateOne, DeleteOne) flush automatically once the staged batch reaches
// the bulk size (DefaultBulkSize unless overridden with WithBulkSize).
//
// A BulkWriter is not safe for concurrent use; callers sharing one across
// goroutines must provide their own locking.
type BulkWriter struct {
	col  Collection
	opts []Option
	o    *callOptions
	ops  []mongo.WriteModel
}

func NewBulkWriter(col Collection, opts ...Option) *BulkWriter {
	return &BulkWriter{
		col:  col,
		opts: opts,
		o:    newCallOptions(opts...),
	}
}

// Add appends operations to the staged batch without flushing.
func (w *BulkWriter) Add(ops ...mongo.WriteModel) {
	w.ops = append(w.ops, ops...)
}

// Len returns the number of staged operations.
func (w *BulkWriter) Len() int {
	return len(w.ops)
}

// InsertOne stages an insert of doc. If the batch reaches the bulk size the
// writer flushes and returns the result; otherwise it returns (nil, nil).
func (w *BulkWriter) InsertOne(ctx context.Context, doc interface{}) (*BulkResult, error) {
	w.Add(mongo.NewInsertOneModel().SetDocument(doc))
	return w.maybeFlush(ctx)
}

// UpdateOne stages an update of the first document matching filter. If the
// batch reaches the bulk size the writer flushes and returns the result;
// otherwise it returns (nil, nil).
func (w *BulkWriter) UpdateOne(ctx context.Context, filter, update interface{}) (*BulkResult, error) {
	w.Add(mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update))
	return w.maybeFlush(ctx)
}

// UpsertOne is UpdateOne with upsert enabled.
func (w *BulkWriter) UpsertOne(ctx context.Context, filter, update interface{}) (*BulkResult, error) {
	w.Add(mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	return w.maybeFlush(ctx)
}

// DeleteOne stages a delete of the first document matching filter. If the
// batch reaches the bulk size the writer flushes and returns the result;
// otherwise it returns (nil, nil).
func (w *BulkWriter) DeleteOne(ctx context.Context, filter interface{}) (*BulkResult, error) {
	w.Add(mongo.NewDeleteOneModel().SetFilter(filter))
	return w.maybeFlush(ctx)
}

func (w *BulkWriter) maybeFlush(ctx context.Context) (*BulkResult, error) {
	if len(w.ops) < w.o.bulkSize {
		return nil, nil
	}
	return w.Flush(ctx)
}

// Flush sends every staged operation in one bulk write. On success the
// staged batch is cleared; on failure it is left intact so the caller may
// retry or inspect it. Flushing an empty writer performs no network call and
// returns a zeroed result.
func (w *BulkWriter) Flush(ctx context.Context) (*BulkResult, error) {
	if len(w.ops) == 0 {
		return &BulkResult{}, nil
	}

	res, err := BulkWrite(ctx, w.col, w.ops, w.opts...)
	if err != nil {
		return nil, err
	}

	w.ops = nil
	return res, nil
}
