package store

import (
	"context"
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const (
	categoryPrefix       = "category:"
	categoryByNamePrefix = "idx:categories:user:" // idx:categories:user:<userID>:name:<name> -> categoryID
)

// categoryNameIndexKey builds the per-user category name index key.
func categoryNameIndexKey(userID, name string) []byte {
	return []byte(categoryByNamePrefix + userID + ":name:" + name)
}

// CreateCategory persists a new category. Name uniqueness is per owning
// user and enforced by the name index written in the same transaction.
func (s *Store) CreateCategory(_ context.Context, category *domain.Category) error {
	key := []byte(categoryPrefix + category.ID)
	nameKey := categoryNameIndexKey(category.UserID, category.Name)

	return s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(nameKey)
		if err == nil {
			return ErrCategoryExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check category name: %w", err)
		}

		if err := setInTxn(txn, key, category); err != nil {
			return fmt.Errorf("save category: %w", err)
		}

		return txn.Set(nameKey, []byte(category.ID))
	})
}

// GetCategory retrieves a category owned by userID. Absent and
// foreign-owned are indistinguishable.
func (s *Store) GetCategory(_ context.Context, userID, categoryID string) (*domain.Category, error) {
	key := []byte(categoryPrefix + categoryID)

	var category domain.Category
	if err := s.get(key, &category); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}

	return &category, nil
}

// GetCategoryByName retrieves a category by its per-user unique name.
func (s *Store) GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	var categoryID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(categoryNameIndexKey(userID, name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			categoryID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("lookup category by name: %w", err)
	}

	return s.GetCategory(ctx, userID, categoryID)
}

// ListCategories returns all of userID's categories, ordered by name.
func (s *Store) ListCategories(_ context.Context, userID string) ([]*domain.Category, error) {
	idxPrefix := []byte(categoryByNamePrefix + userID + ":name:")
	var categories []*domain.Category

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = idxPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(idxPrefix); it.ValidForPrefix(idxPrefix); it.Next() {
			var categoryID string
			err := it.Item().Value(func(val []byte) error {
				categoryID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			item, err := txn.Get([]byte(categoryPrefix + categoryID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get category %s: %w", categoryID, err)
			}

			err = item.Value(func(val []byte) error {
				var category domain.Category
				if unmarshalErr := json.Unmarshal(val, &category); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				categories = append(categories, &category)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	// Name index iteration is already byte-ordered, but sort explicitly
	// so the contract doesn't depend on key layout.
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

// DeleteCategory removes a category record and its name index entry.
// Books referencing the name are the caller's responsibility
// (ClearCategoryForBooks).
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	category, err := s.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(categoryPrefix + categoryID)); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return txn.Delete(categoryNameIndexKey(userID, category.Name))
	})
}

// AdjustCategoryCount applies delta to the book_count of userID's
// category called name, inside a single transaction with bounded
// conflict retries.
//
// When the category does not exist and delta is positive, a new one is
// created under newID with the default color and book_count = delta.
// The count never drops below zero: a decrement against an
// already-zero counter leaves it at zero rather than going negative.
func (s *Store) AdjustCategoryCount(_ context.Context, userID, name string, delta int, newID string) error {
	nameKey := categoryNameIndexKey(userID, name)

	return s.update(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			if delta <= 0 {
				// Nothing to decrement; tolerate rather than fail the
				// surrounding book operation.
				return nil
			}

			now := time.Now()
			category := &domain.Category{
				Timestamps: domain.Timestamps{
					ID:        newID,
					CreatedAt: now,
					UpdatedAt: now,
				},
				UserID:    userID,
				Name:      name,
				Color:     domain.DefaultCategoryColor,
				BookCount: delta,
			}

			if err := setInTxn(txn, []byte(categoryPrefix+newID), category); err != nil {
				return fmt.Errorf("create category: %w", err)
			}
			return txn.Set(nameKey, []byte(newID))
		}
		if err != nil {
			return fmt.Errorf("lookup category name: %w", err)
		}

		var categoryID string
		err = item.Value(func(val []byte) error {
			categoryID = string(val)
			return nil
		})
		if err != nil {
			return err
		}

		var category domain.Category
		if err := getInTxn(txn, []byte(categoryPrefix+categoryID), &category); err != nil {
			return fmt.Errorf("get category %s: %w", categoryID, err)
		}

		category.BookCount += delta
		if category.BookCount < 0 {
			category.BookCount = 0
		}
		category.Touch()

		return setInTxn(txn, []byte(categoryPrefix+categoryID), &category)
	})
}
