package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
// Similarity search is a brute-force cosine scan over every stored passage.
// Writes are serialized so concurrent batches never conflict on the
// dimension metadata key.
type CatalogRepository struct {
	backend *Backend
	writeMu sync.Mutex
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// newCatalogRepository creates a repository that owns backend.
func newCatalogRepository(backend *Backend) *CatalogRepository {
	return &CatalogRepository{backend: backend}
}

// NewRepository opens a BadgerDB database at path and returns a catalog repository
// that owns it.
func NewRepository(path string) (storage.CatalogRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newCatalogRepository(backend), nil
}

// Close closes the underlying database.
func (r *CatalogRepository) Close() error {
	return r.backend.Close()
}

// AddPassages upserts passages, assigning content-derived IDs where missing.
func (r *CatalogRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	for _, passage := range passages {
		if err := core.ValidatePassage(passage); err != nil {
			return nil, err
		}
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}

		for _, passage := range passages {
			if err := ctx.Err(); err != nil {
				return err
			}

			if dim == 0 {
				dim = len(passage.Vector)
				if err := tx.Set([]byte(catalogMetaDimKey), storage.MarshalID(core.ID(dim))); err != nil {
					return err
				}
			} else if len(passage.Vector) != dim {
				return fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(passage.Vector), dim)
			}

			if passage.Id == 0 {
				passage.Id = core.PassageID(passage.Source, passage.Page, passage.Content)
			}

			if err := tx.Set(makePassageKey(passage.Id), storage.MarshalPassage(passage)); err != nil {
				return err
			}
			if err := tx.Set(makeSourceKey(passage.Source, passage.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return passages, nil
}

// GetPassage retrieves a single passage by ID.
func (r *CatalogRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteSource removes every passage indexed under source.
func (r *CatalogRepository) DeleteSource(ctx context.Context, source string) (int, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.backend.ScanPrefix(tx, makePartialSourceKey(source), func(key, _ []byte) error {
			keys = append(keys, key)
			return nil
		})
	}, false)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(makePassageKey(idFromSourceKey(key))); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	r.backend.logger.Debug("deleted passages for source", "source", source, "count", len(keys))
	return len(keys), nil
}

// Count returns the number of stored passages.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(passagePrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar scans every passage and returns the limit most similar to vector.
func (r *CatalogRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredPassage, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ScoredPassage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}
		if dim == 0 {
			return nil
		}
		if dim != len(vector) {
			return fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(vector), dim)
		}

		return r.backend.ScanPrefix(tx, []byte(passagePrefix), func(_, val []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			passage, err := storage.UnmarshalPassage(val)
			if err != nil {
				return err
			}
			results = append(results, &core.ScoredPassage{
				Passage: passage,
				Score:   storage.CosineSimilarity(vector, passage.Vector),
			})
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, ID breaks ties for stable output
	slices.SortFunc(results, func(a, b *core.ScoredPassage) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Passage.Id < b.Passage.Id {
			return -1
		}
		if a.Passage.Id > b.Passage.Id {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	return passage, err
}

// readDimension returns the stored embedding dimension, or 0 for an empty catalog.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(catalogMetaDimKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var dim core.ID
	err = item.Value(func(val []byte) error {
		dim, err = storage.UnmarshalID(val)
		return err
	})
	return int(dim), err
}
