package badger

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/storage"
)

// dimensionKey records the index's vector dimensionality. It is written on
// the first upsert and every later upsert must match it: mixing dimensions
// corrupts similarity ranking.
const dimensionKey = "vecmeta:dim"

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (storage.VectorRepository, error) {
	return &VectorRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *VectorRepository) Close() error {
	return nil
}

// UpsertVectors inserts or wholesale-replaces the vector record keyed by
// its code.
func (r *VectorRepository) UpsertVectors(ctx context.Context, record *core.VectorRecord) error {
	if record == nil || record.Code == "" {
		return core.ErrEmptyCode
	}
	if len(record.Combined) == 0 {
		return core.ErrDimensionMismatch
	}
	for _, vector := range record.FieldVectors {
		if len(vector) != len(record.Combined) {
			return core.ErrDimensionMismatch
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := checkDimension(tx, len(record.Combined)); err != nil {
			return err
		}

		key := makeVectorKey(record.Code)
		now := time.Now().UTC()

		old, err := readVectorRecord(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			record.InsertedAt = old.InsertedAt
		} else {
			record.InsertedAt = now
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalVectorRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVectors retrieves the vector record for a code.
func (r *VectorRepository) GetVectors(ctx context.Context, code string) (*core.VectorRecord, error) {
	var record *core.VectorRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readVectorRecord(tx, makeVectorKey(code))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// ListMissing returns the codes of fact records that have no vector record
// yet, in key order.
func (r *VectorRepository) ListMissing(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(factPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			code := strings.TrimPrefix(key, factPrefix+":")

			if _, err := tx.Get(makeVectorKey(code)); err == nil {
				continue
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			codes = append(codes, code)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// FindSimilar ranks all indexed products by cosine similarity of the given
// field-group vector against the query vector, descending.
func (r *VectorRepository) FindSimilar(ctx context.Context, field string, vector []float32, limit int) ([]*core.SimilarityMatch, error) {
	var matches []*core.SimilarityMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			candidate := record.Combined
			if field != "" {
				candidate = record.FieldVectors[field]
			}
			if len(candidate) == 0 {
				continue
			}

			matches = append(matches, &core.SimilarityMatch{
				Code:  record.Code,
				Score: cosineSimilarity(vector, candidate),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// checkDimension compares dim against the recorded index dimensionality,
// recording it on first use.
func checkDimension(tx *badger.Txn, dim int) error {
	item, err := tx.Get([]byte(dimensionKey))
	if err == badger.ErrKeyNotFound {
		return tx.Set([]byte(dimensionKey), []byte{byte(dim), byte(dim >> 8)})
	}
	if err != nil {
		return err
	}

	var stored int
	err = item.Value(func(val []byte) error {
		if len(val) == 2 {
			stored = int(val[0]) | int(val[1])<<8
		}
		return nil
	})
	if err != nil {
		return err
	}
	if stored != dim {
		return core.ErrDimensionMismatch
	}
	return nil
}

// readVectorRecord reads a vector record by key within a transaction.
// Returns nil (not an error) if the key doesn't exist.
func readVectorRecord(tx *badger.Txn, key []byte) (*core.VectorRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.VectorRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalVectorRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Returns 0 for zero vectors.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float32
	for i := 0; i < minLen; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
