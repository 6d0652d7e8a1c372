package registry

import "errors"

var (
	// ErrCatalogUnavailable indicates the catalog API could not be reached
	// or returned a malformed response.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrDocumentFetch indicates a non-retryable document download failure.
	ErrDocumentFetch = errors.New("document fetch failed")

	// ErrRateLimited indicates the upstream answered with HTTP 429.
	// Internal to the download retry loop; callers only see it when
	// classifying backoff.
	ErrRateLimited = errors.New("rate limited by upstream")
)
