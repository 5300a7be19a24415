package mongox

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// maxDocumentInError bounds how much of a document is echoed back in
// validation error messages.
const maxDocumentInError = 1000

// DocumentKey identifies a document by the values of its duplicate-key
// fields, in the order the fields were requested.
type DocumentKey struct {
	Values []bson.RawValue
}

// String renders the key values as a comma-separated extended JSON tuple.
func (k DocumentKey) String() string {
	parts := lo.Map(k.Values, func(v bson.RawValue, _ int) string {
		return v.String()
	})
	return strings.Join(parts, ",")
}

// id is a canonical byte-level identity usable as a map key.
func (k DocumentKey) id() string {
	var b strings.Builder
	for _, v := range k.Values {
		fmt.Fprintf(&b, "%d:%x;", v.Type, v.Value)
	}
	return b.String()
}

// BulkInsertDupRetok inserts documents treating duplicate-key violations as
// expected, and returns the keys of the documents that were actually
// inserted.
//
// Every operation must be an *mongo.InsertOneModel carrying all the dupKeys
// fields. Documents sharing a duplicate key within the batch are collapsed
// to the first occurrence before anything is written. The batch goes out
// unordered so one collision never blocks sibling inserts; write errors that
// are all duplicate-key violations are resolved back to the colliding
// documents through the error index list and their keys are dropped from the
// returned set. Any other failure aborts with a DATABASE error.
func BulkInsertDupRetok(ctx context.Context, col Collection, ops []mongo.WriteModel, dupKeys []string, opts ...Option) ([]DocumentKey, error) {
	o := newCallOptions(opts...)

	if len(dupKeys) == 0 {
		return nil, InvalidArgumentErrorf("bulk insert on %q requires at least one duplicate-key field", col.Name())
	}

	slots := make(map[string]DocumentKey, len(ops))
	slotIDs := make([]string, 0, len(ops))
	uniqOps := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		key, err := insertDocumentKey(op, dupKeys)
		if err != nil {
			return nil, err
		}
		id := key.id()
		if _, seen := slots[id]; seen {
			continue
		}
		slots[id] = key
		slotIDs = append(slotIDs, id)
		uniqOps = append(uniqOps, op)
	}

	o.stats(fmt.Sprintf("bulk-insert-dup-retok-%s-ops", col.Name()), int64(len(ops)))

	bwOpts := append(append([]Option{}, opts...), WithOrdered(false))
	if _, err := BulkWrite(ctx, col, uniqOps, bwOpts...); err != nil {
		if !IsDuplicateKeyError(err) {
			return nil, err
		}
		bwe, ok := asBulkWriteException(err)
		if !ok {
			return nil, err
		}

		failed := make(map[string]struct{}, len(bwe.WriteErrors))
		for _, we := range bwe.WriteErrors {
			if we.Index < 0 || we.Index >= len(slotIDs) {
				return nil, DatabaseErrorf("bulk write on %q reported a write error for unknown operation index %d", col.Name(), we.Index)
			}
			failed[slotIDs[we.Index]] = struct{}{}
		}

		keys := lo.FilterMap(slotIDs, func(id string, _ int) (DocumentKey, bool) {
			_, collided := failed[id]
			return slots[id], !collided
		})
		o.stats(fmt.Sprintf("%s-inserted", col.Name()), int64(len(keys)))
		return keys, nil
	}

	return lo.Map(slotIDs, func(id string, _ int) DocumentKey {
		return slots[id]
	}), nil
}

// BulkInsertDup inserts documents ignoring duplicate-key violations. Unlike
// BulkInsertDupRetok it keeps no per-document bookkeeping; the returned
// result only carries the count of documents actually inserted. Any failure
// other than duplicate-key aborts with a DATABASE error.
func BulkInsertDup(ctx context.Context, col Collection, ops []mongo.WriteModel, opts ...Option) (*BulkResult, error) {
	o := newCallOptions(opts...)

	for _, op := range ops {
		if _, ok := op.(*mongo.InsertOneModel); !ok {
			return nil, InvalidArgumentErrorf("bulk insert on %q accepts only InsertOneModel operations, got %T", col.Name(), op)
		}
	}

	o.stats(fmt.Sprintf("bulk-insert-dup-%s-ops", col.Name()), int64(len(ops)))

	bwOpts := append(append([]Option{}, opts...), WithOrdered(false))
	res, err := BulkWrite(ctx, col, ops, bwOpts...)
	if err != nil {
		if !IsDuplicateKeyError(err) {
			return nil, err
		}
		bwe, ok := asBulkWriteException(err)
		if !ok {
			return nil, err
		}

		res = &BulkResult{InsertedCount: int64(len(ops) - len(bwe.WriteErrors))}
		o.stats(fmt.Sprintf("%s-inserted", col.Name()), res.InsertedCount)
	}

	return res, nil
}

// insertDocumentKey validates that op is an insert carrying every dupKeys
// field and extracts the key values.
func insertDocumentKey(op mongo.WriteModel, dupKeys []string) (DocumentKey, error) {
	ins, ok := op.(*mongo.InsertOneModel)
	if !ok {
		return DocumentKey{}, InvalidArgumentErrorf("bulk insert accepts only InsertOneModel operations, got %T", op)
	}

	raw, err := bson.Marshal(ins.Document)
	if err != nil {
		return DocumentKey{}, InvalidArgumentErrorf("insert document is not marshalable: %s", err)
	}

	key := DocumentKey{Values: make([]bson.RawValue, 0, len(dupKeys))}
	for _, field := range dupKeys {
		v, err := bson.Raw(raw).LookupErr(field)
		if err != nil {
			return DocumentKey{}, InvalidArgumentErrorf(
				"insert document does not have duplicate-key field %q: %s",
				field, truncate(bson.Raw(raw).String(), maxDocumentInError),
			)
		}
		key.Values = append(key.Values, v)
	}

	return key, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
