package storage

import (
	"context"

	"github.com/lekodex/lekodex/core"
)

// CatalogRepository owns Product and Document records.
// All upserts are single-record, all-or-nothing, wholesale-replace
// operations keyed by product code. Implementations must be thread-safe.
type CatalogRepository interface {
	// UpsertProduct inserts or wholesale-replaces the product keyed by its
	// code. Attributes are never partially merged.
	UpsertProduct(ctx context.Context, product *core.Product) error

	// UpsertDocument inserts or wholesale-replaces the document keyed by
	// (code, doc id). Returns ErrProductMissing if the owning product has
	// not been stored yet; referential integrity is enforced here, not by
	// the caller.
	UpsertDocument(ctx context.Context, doc *core.Document) error

	// GetProduct retrieves a product by code.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, code string) (*core.Product, error)

	// GetDocument retrieves a document by (code, doc id).
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, code, docID string) (*core.Document, error)

	// ListProducts returns all stored products in key order.
	ListProducts(ctx context.Context) ([]*core.Product, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close releases repository resources.
	Close() error
}

// FactRepository owns ExtractedFact records, at most one per product code.
type FactRepository interface {
	// UpsertFacts inserts or wholesale-replaces the fact record keyed by
	// its code. SourceText is truncated to core.SourceTextLimit before
	// persisting. Individual fields are never partially updated.
	UpsertFacts(ctx context.Context, fact *core.ExtractedFact) error

	// GetFacts retrieves the fact record for a code.
	// Returns ErrNotFound if no record exists.
	GetFacts(ctx context.Context, code string) (*core.ExtractedFact, error)

	// ListFacts returns all stored fact records in key order.
	ListFacts(ctx context.Context) ([]*core.ExtractedFact, error)

	// SelectUnprocessed returns the enrichment backlog: every product with
	// a stored document of the given type but no fact record yet. Codes
	// already present in the fact store are never returned, so re-running
	// the extraction stage is always safe.
	SelectUnprocessed(ctx context.Context, docType string) ([]*core.PendingDocument, error)

	// Close releases repository resources.
	Close() error
}

// VectorRepository owns VectorRecord records, at most one per product code.
type VectorRepository interface {
	// UpsertVectors inserts or wholesale-replaces the vector record keyed
	// by its code. All vectors in a record must share the index's
	// dimensionality; a mismatch returns core.ErrDimensionMismatch.
	UpsertVectors(ctx context.Context, record *core.VectorRecord) error

	// GetVectors retrieves the vector record for a code.
	// Returns ErrNotFound if no record exists.
	GetVectors(ctx context.Context, code string) (*core.VectorRecord, error)

	// ListMissing returns the codes of fact records that have no vector
	// record yet, in key order.
	ListMissing(ctx context.Context) ([]string, error)

	// FindSimilar ranks all indexed products by cosine similarity of the
	// given field-group vector (field "" means the combined vector)
	// against the query vector, descending, truncated to limit. Records
	// lacking the requested field vector are skipped.
	FindSimilar(ctx context.Context, field string, vector []float32, limit int) ([]*core.SimilarityMatch, error)

	// Close releases repository resources.
	Close() error
}
