package mongox

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BulkWrite executes ops against col in a single bulk round trip.
//
// Operations run unordered by default; pass WithOrdered(true) to preserve
// order and stop at the first error. An empty batch is rejected with an
// INVALID_ARGUMENT error. Any failure reported by the driver comes back as a
// mongox Error; a failure made up exclusively of duplicate-key write errors
// is typed DUPLICATE_KEY so callers can recover from it, everything else is
// typed DATABASE.
func BulkWrite(ctx context.Context, col Collection, ops []mongo.WriteModel, opts ...Option) (*BulkResult, error) {
	o := newCallOptions(opts...)

	if len(ops) == 0 {
		return nil, InvalidArgumentErrorf("bulk write on %q requires a non-empty operation batch", col.Name())
	}

	o.stats(fmt.Sprintf("bulk-write-%s-ops", col.Name()), int64(len(ops)))

	res, err := col.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(o.ordered))
	if err != nil {
		terr := translateDriverError(col.Name(), err)
		o.logger.DebugContext(ctx, "bulk write failed",
			slog.String("collection", col.Name()),
			slog.Int("ops", len(ops)),
			errAttr(terr),
		)
		return nil, terr
	}

	br := newBulkResult(res)
	o.stats(fmt.Sprintf("%s-inserted", col.Name()), br.InsertedCount)
	o.stats(fmt.Sprintf("%s-upserted", col.Name()), br.UpsertedCount)
	o.stats(fmt.Sprintf("%s-modified", col.Name()), br.ModifiedCount)

	o.logger.DebugContext(ctx, "bulk write done",
		slog.String("collection", col.Name()),
		slog.Int("ops", len(ops)),
		slog.Int64("inserted", br.InsertedCount),
		slog.Int64("modified", br.ModifiedCount),
		slog.Int64("deleted", br.DeletedCount),
	)

	return br, nil
}
