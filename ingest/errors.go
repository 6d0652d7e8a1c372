package ingest

import "errors"

var (
	// ErrCatalogRequired is returned when a catalog client is not provided.
	ErrCatalogRequired = errors.New("catalog client required")

	// ErrStoreRequired is returned when a catalog repository is not provided.
	ErrStoreRequired = errors.New("catalog repository required")
)
