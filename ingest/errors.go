package ingest

import "errors"

var (
	// ErrIngestionInProgress is returned when a run is started while another
	// one still holds the rebuild gate.
	ErrIngestionInProgress = errors.New("ingestion already in progress")

	// ErrStoreRequired is returned when a metadata store is not provided.
	ErrStoreRequired = errors.New("metadata store required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrIndexManagerRequired is returned when an index manager is not provided.
	ErrIndexManagerRequired = errors.New("index manager required")
)
