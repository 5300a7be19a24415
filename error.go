package mongox

import (
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

type ErrorType string

const (
	// ErrorTypeUnspecified should not be used, it is only useful to assert
	// whether or not an error is a mongox Error during cast.
	ErrorTypeUnspecified     = ErrorType("")
	ErrorTypeDatabase        = ErrorType("DATABASE")
	ErrorTypeDuplicateKey    = ErrorType("DUPLICATE_KEY")
	ErrorTypeInvalidArgument = ErrorType("INVALID_ARGUMENT")
)

func (e ErrorType) String() string {
	return string(e)
}

// Error is the error surface of this package. Every failure reported by the
// underlying driver is translated into one, with the driver error kept on
// OriginalError.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`

	OriginalError error // Not returned to clients
}

var _ error = (*Error)(nil)

func (e Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

func (e Error) Unwrap() error {
	return e.OriginalError
}

// IsError returns the mongox Error wrapped anywhere in e's cause chain.
func IsError(e error) (*Error, bool) {
	e = errors.Cause(e)
	mE, ok := e.(Error)
	if !ok {
		if pE, okp := e.(*Error); okp {
			mE = *pE
			ok = true
		}
	}
	if !ok || mE.Type == ErrorTypeUnspecified {
		return nil, false
	}

	return &mE, true
}

func IsDatabaseError(e error) bool {
	mE, ok := IsError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeDatabase
}

func IsDuplicateKeyError(e error) bool {
	mE, ok := IsError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeDuplicateKey
}

func IsInvalidArgumentError(e error) bool {
	mE, ok := IsError(e)
	if !ok {
		return false
	}

	return mE.Type == ErrorTypeInvalidArgument
}

// DatabaseErrorf creates an Error with type ErrorTypeDatabase and a formatted message
func DatabaseErrorf(format string, args ...any) Error {
	return Error{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf(format, args...),
	}
}

// DuplicateKeyErrorf creates an Error with type ErrorTypeDuplicateKey and a formatted message
func DuplicateKeyErrorf(format string, args ...any) Error {
	return Error{
		Type:    ErrorTypeDuplicateKey,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidArgumentErrorf creates an Error with type ErrorTypeInvalidArgument and a formatted message
func InvalidArgumentErrorf(format string, args ...any) Error {
	return Error{
		Type:    ErrorTypeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// Server error codes raised on a unique index violation. The driver doesn't
// export a constant for these.
var duplicateKeyCodes = map[int]struct{}{
	11000: {},
	11001: {},
	12582: {},
}

// onlyDuplicateKeyErrors reports whether every write error in the exception
// is a duplicate-key violation and no write concern error occurred.
func onlyDuplicateKeyErrors(bwe mongo.BulkWriteException) bool {
	if len(bwe.WriteErrors) == 0 || bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if _, ok := duplicateKeyCodes[we.Code]; !ok {
			return false
		}
	}
	return true
}

// translateDriverError maps any error returned by the driver to a mongox
// Error. Bulk write exceptions made up exclusively of duplicate-key write
// errors get the DUPLICATE_KEY type so callers can tell them apart.
func translateDriverError(colname string, err error) error {
	bwe, ok := errors.Cause(err).(mongo.BulkWriteException)
	if !ok {
		return Error{
			Type:          ErrorTypeDatabase,
			Message:       fmt.Sprintf("bulk write on %q failed: %s", colname, err),
			OriginalError: err,
		}
	}

	eT := ErrorTypeDatabase
	if onlyDuplicateKeyErrors(bwe) {
		eT = ErrorTypeDuplicateKey
	}

	return Error{
		Type:          eT,
		Message:       fmt.Sprintf("bulk write on %q failed with %d write error(s)", colname, len(bwe.WriteErrors)),
		OriginalError: err,
	}
}

// asBulkWriteException digs the driver's bulk write exception out of a
// translated Error, if there is one.
func asBulkWriteException(err error) (mongo.BulkWriteException, bool) {
	mE, ok := IsError(err)
	if !ok || mE.OriginalError == nil {
		return mongo.BulkWriteException{}, false
	}

	bwe, ok := errors.Cause(mE.OriginalError).(mongo.BulkWriteException)
	return bwe, ok
}
