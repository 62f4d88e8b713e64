// Package storage defines the metadata store contract and its errors.
//
// The MetadataStore interface covers the relational record of ingestion:
// documents, their chunks, the question/answer audit trail, and the index
// generation stamp. The sqlite subpackage provides the production
// implementation.
package storage
