package mongox

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mockCollection struct {
	mock.Mock

	name string
}

var _ Collection = (*mockCollection)(nil)

func newMockCollection(name string) *mockCollection {
	return &mockCollection{name: name}
}

func (mc *mockCollection) Name() string {
	return mc.name
}

func (mc *mockCollection) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	args := mc.Called(ctx, models, opts)
	res, _ := args.Get(0).(*mongo.BulkWriteResult)
	return res, args.Error(1)
}

func (mc *mockCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	args := mc.Called(ctx, filter, opts)
	cur, _ := args.Get(0).(*mongo.Cursor)
	return cur, args.Error(1)
}

// statsRecorder collects the counters emitted through WithStats.
type statsRecorder struct {
	counters map[string]int64
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{counters: map[string]int64{}}
}

func (s *statsRecorder) inc(key string, n int64) {
	s.counters[key] += n
}

func unorderedBulkOpts(opts []*options.BulkWriteOptions) bool {
	return len(opts) == 1 && opts[0].Ordered != nil && !*opts[0].Ordered
}

func orderedBulkOpts(opts []*options.BulkWriteOptions) bool {
	return len(opts) == 1 && opts[0].Ordered != nil && *opts[0].Ordered
}

func duplicateKeyException(indexes ...int) mongo.BulkWriteException {
	writeErrors := make([]mongo.BulkWriteError, 0, len(indexes))
	for _, idx := range indexes {
		writeErrors = append(writeErrors, mongo.BulkWriteError{
			WriteError: mongo.WriteError{
				Index:   idx,
				Code:    11000,
				Message: "E11000 duplicate key error",
			},
		})
	}
	return mongo.BulkWriteException{WriteErrors: writeErrors}
}
