package mongox

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// BulkResult summarizes one bulk write round trip. The zero value is the
// result of flushing an empty BulkWriter.
type BulkResult struct {
	InsertedCount int64 `json:"insertedCount"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	DeletedCount  int64 `json:"deletedCount"`
	UpsertedCount int64 `json:"upsertedCount"`

	// UpsertedIDs maps the index of each upserted operation to the _id it
	// produced.
	UpsertedIDs map[int64]interface{} `json:"upsertedIDs,omitempty"`
}

func newBulkResult(res *mongo.BulkWriteResult) *BulkResult {
	if res == nil {
		return &BulkResult{}
	}

	return &BulkResult{
		InsertedCount: res.InsertedCount,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		DeletedCount:  res.DeletedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedIDs:   res.UpsertedIDs,
	}
}
