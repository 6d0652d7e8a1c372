package enrich

import "errors"

var (
	// ErrFactRepositoryRequired is returned when a fact repository is not provided.
	ErrFactRepositoryRequired = errors.New("fact repository required")

	// ErrFactExtractorRequired is returned when a fact extractor is not provided.
	ErrFactExtractorRequired = errors.New("fact extractor required")
)
