package mongox

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestError(t *testing.T) {
	t.Run("should return mongox error from stack", func(t *testing.T) {
		err := DatabaseErrorf("test")
		serr := errors.WithStack(err)

		_, ok := IsError(serr)
		assert.True(t, ok)
	})

	t.Run("should return mongox error without stack", func(t *testing.T) {
		err := InvalidArgumentErrorf("test")

		_, ok := IsError(err)
		assert.True(t, ok)
	})

	t.Run("should not match foreign errors", func(t *testing.T) {
		_, ok := IsError(errors.New("boom"))
		assert.False(t, ok)
		assert.False(t, IsDatabaseError(errors.New("boom")))
	})

	t.Run("should detect duplicate key from stack", func(t *testing.T) {
		err := errors.WithStack(DuplicateKeyErrorf("test"))
		assert.True(t, IsDuplicateKeyError(err))
		assert.False(t, IsDatabaseError(err))
	})
}

func TestTranslateDriverError(t *testing.T) {
	t.Run("should type a plain driver error as database", func(t *testing.T) {
		err := translateDriverError("foo", errors.New("connection reset"))
		assert.True(t, IsDatabaseError(err))
		assert.False(t, IsDuplicateKeyError(err))
	})

	t.Run("should type an only-duplicates exception as duplicate key", func(t *testing.T) {
		err := translateDriverError("foo", duplicateKeyException(0, 2))
		assert.True(t, IsDuplicateKeyError(err))

		bwe, ok := asBulkWriteException(err)
		assert.True(t, ok)
		assert.Len(t, bwe.WriteErrors, 2)
	})

	t.Run("should type a mixed-code exception as database", func(t *testing.T) {
		bwe := duplicateKeyException(0)
		bwe.WriteErrors = append(bwe.WriteErrors, mongo.BulkWriteError{
			WriteError: mongo.WriteError{Index: 1, Code: 121, Message: "Document failed validation"},
		})

		err := translateDriverError("foo", bwe)
		assert.True(t, IsDatabaseError(err))
		assert.False(t, IsDuplicateKeyError(err))
	})

	t.Run("should type a write concern failure as database", func(t *testing.T) {
		bwe := duplicateKeyException(0)
		bwe.WriteConcernError = &mongo.WriteConcernError{Code: 64, Message: "waiting for replication timed out"}

		err := translateDriverError("foo", bwe)
		assert.True(t, IsDatabaseError(err))
	})

	t.Run("should type an exception with no write errors as database", func(t *testing.T) {
		err := translateDriverError("foo", mongo.BulkWriteException{})
		assert.True(t, IsDatabaseError(err))
	})
}
