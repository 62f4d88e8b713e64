// Package index maintains the persisted cosine-similarity vector index.
//
// The index is a single immutable Snapshot serialized with the MUS format.
// Rebuilds construct a fresh snapshot, write it to a temp file and rename it
// over the old one, so queries never observe a half-built index. The snapshot
// header carries the embedding model identity and a generation stamp; loading
// rejects snapshots built with a different model.
package index
