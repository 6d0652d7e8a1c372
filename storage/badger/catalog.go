package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (storage.CatalogRepository, error) {
	return &CatalogRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *CatalogRepository) Close() error {
	return nil
}

// UpsertProduct inserts or wholesale-replaces the product keyed by its code.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, product *core.Product) error {
	if err := core.ValidateProduct(product); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProductKey(product.Code)
		now := time.Now().UTC()

		old, err := readProduct(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			product.InsertedAt = old.InsertedAt
		} else {
			product.InsertedAt = now
		}
		product.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalProduct(product)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertDocument inserts or wholesale-replaces the document keyed by
// (code, doc id). The owning product must already be stored.
func (r *CatalogRepository) UpsertDocument(ctx context.Context, doc *core.Document) error {
	doc.Size = len(doc.Data)
	doc.Checksum = core.ChecksumFromContent(doc.Data)

	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Referential integrity: the document cannot outlive its product.
		if _, err := tx.Get(makeProductKey(doc.Code)); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrProductMissing
			}
			return err
		}

		key := makeDocumentKey(doc.Code, doc.DocID)
		now := time.Now().UTC()

		old, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			doc.InsertedAt = old.InsertedAt
			if old.Checksum == doc.Checksum {
				r.backend.logger.Debug("document payload unchanged on re-fetch",
					"code", doc.Code, "docID", doc.DocID)
			}
		} else {
			doc.InsertedAt = now
		}
		doc.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetProduct retrieves a product by code.
func (r *CatalogRepository) GetProduct(ctx context.Context, code string) (*core.Product, error) {
	var product *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		product, err = readProduct(tx, makeProductKey(code))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, storage.ErrNotFound
	}
	return product, nil
}

// GetDocument retrieves a document by (code, doc id).
func (r *CatalogRepository) GetDocument(ctx context.Context, code, docID string) (*core.Document, error) {
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(code, docID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// ListProducts returns all stored products in key order.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]*core.Product, error) {
	var products []*core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var product *core.Product
			err := iter.Item().Value(func(val []byte) error {
				var err error
				product, err = storage.UnmarshalProduct(val)
				return err
			})
			if err != nil {
				return err
			}
			products = append(products, product)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CountDocuments returns the number of stored documents.
func (r *CatalogRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// readProduct reads a product by key within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func readProduct(tx *badger.Txn, key []byte) (*core.Product, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var err error
		product, err = storage.UnmarshalProduct(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// readDocument reads a document by key within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
