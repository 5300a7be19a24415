// Package mongox wraps a MongoDB collection's bulk write and chunked
// iteration paths: one-call bulk execution, a staging BulkWriter,
// duplicate-tolerant inserts, and a paged forward-only iterator. It never
// owns a client or a connection; every function takes a caller-supplied
// collection handle.
package mongox
