package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage"
)

// FactRepository implements storage.FactRepository for BadgerDB.
type FactRepository struct {
	backend *Backend
}

var _ storage.FactRepository = (*FactRepository)(nil)

// NewFactRepository creates a new FactRepository.
func NewFactRepository(backend *Backend) (storage.FactRepository, error) {
	return &FactRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *FactRepository) Close() error {
	return nil
}

// UpsertFacts inserts or wholesale-replaces the fact record keyed by its
// code. SourceText is truncated to core.SourceTextLimit before persisting.
func (r *FactRepository) UpsertFacts(ctx context.Context, fact *core.ExtractedFact) error {
	if err := core.ValidateFact(fact); err != nil {
		return err
	}

	fact.SourceText = truncateRunes(fact.SourceText, core.SourceTextLimit)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFactKey(fact.Code)
		now := time.Now().UTC()

		old, err := readFact(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			fact.InsertedAt = old.InsertedAt
		} else {
			fact.InsertedAt = now
		}
		fact.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalFact(fact)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetFacts retrieves the fact record for a code.
func (r *FactRepository) GetFacts(ctx context.Context, code string) (*core.ExtractedFact, error) {
	var fact *core.ExtractedFact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		fact, err = readFact(tx, makeFactKey(code))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if fact == nil {
		return nil, storage.ErrNotFound
	}
	return fact, nil
}

// ListFacts returns all stored fact records in key order.
func (r *FactRepository) ListFacts(ctx context.Context) ([]*core.ExtractedFact, error) {
	var facts []*core.ExtractedFact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(factPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var fact *core.ExtractedFact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fact, err = storage.UnmarshalFact(val)
				return err
			})
			if err != nil {
				return err
			}
			facts = append(facts, fact)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// SelectUnprocessed returns every product with a stored document of the
// given type but no fact record yet. This is the resumability mechanism:
// re-running the extraction stage only processes the backlog.
func (r *FactRepository) SelectUnprocessed(ctx context.Context, docType string) ([]*core.PendingDocument, error) {
	var pending []*core.PendingDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		seen := make(map[string]bool)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}

			if doc.Type != docType || seen[doc.Code] {
				continue
			}
			seen[doc.Code] = true

			// Skip codes that are already enriched.
			if _, err := tx.Get(makeFactKey(doc.Code)); err == nil {
				continue
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			name := ""
			product, err := readProduct(tx, makeProductKey(doc.Code))
			if err != nil {
				return err
			}
			if product != nil {
				name = product.Name
			}

			pending = append(pending, &core.PendingDocument{
				Code: doc.Code,
				Name: name,
				Data: doc.Data,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// readFact reads a fact record by key within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func readFact(tx *badger.Txn, key []byte) (*core.ExtractedFact, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var fact *core.ExtractedFact
	err = item.Value(func(val []byte) error {
		var err error
		fact, err = storage.UnmarshalFact(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fact, nil
}

// truncateRunes bounds s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
