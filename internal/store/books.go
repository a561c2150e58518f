package store

import (
	"context"
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const (
	bookPrefix       = "book:"
	bookByUserPrefix = "idx:books:user:" // idx:books:user:<userID>:<bookID> -> bookID
)

// BookFilter narrows ListBooks results. Zero-value fields are ignored.
type BookFilter struct {
	// Search matches case-insensitively as a substring against title,
	// author, or original filename.
	Search string
	// Category matches exactly.
	Category string
	// Tags matches books carrying at least one of the given tags.
	Tags []string
}

// bookUserIndexKey builds the per-user book index key.
func bookUserIndexKey(userID, bookID string) []byte {
	return []byte(bookByUserPrefix + userID + ":" + bookID)
}

// CreateBook persists a new book record and its owner index entry.
func (s *Store) CreateBook(_ context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("book %s already exists", book.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check book exists: %w", err)
		}

		if err := setInTxn(txn, key, book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}

		return txn.Set(bookUserIndexKey(book.UserID, book.ID), []byte(book.ID))
	})
}

// GetBook retrieves a book owned by userID. A book that exists but
// belongs to a different user yields ErrBookNotFound, same as a book
// that does not exist at all.
func (s *Store) GetBook(_ context.Context, userID, bookID string) (*domain.Book, error) {
	key := []byte(bookPrefix + bookID)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if book.UserID != userID {
		return nil, ErrBookNotFound
	}

	return &book, nil
}

// UpdateBook overwrites an existing book record. Ownership is
// re-checked against the stored record, not the one passed in.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if _, err := s.GetBook(ctx, book.UserID, book.ID); err != nil {
		return err
	}

	book.Touch()

	return s.db.Update(func(txn *badger.Txn) error {
		return setInTxn(txn, []byte(bookPrefix+book.ID), book)
	})
}

// DeleteBook removes a book record and its owner index entry.
func (s *Store) DeleteBook(ctx context.Context, userID, bookID string) error {
	if _, err := s.GetBook(ctx, userID, bookID); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(bookPrefix + bookID)); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return txn.Delete(bookUserIndexKey(userID, bookID))
	})
}

// ListBooks returns all of userID's books matching the filter, ordered
// by upload time descending. Equal timestamps fall back to ID order so
// the result is stable.
func (s *Store) ListBooks(_ context.Context, userID string, filter BookFilter) ([]*domain.Book, error) {
	idxPrefix := []byte(bookByUserPrefix + userID + ":")
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = idxPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(idxPrefix); it.ValidForPrefix(idxPrefix); it.Next() {
			var bookID string
			err := it.Item().Value(func(val []byte) error {
				bookID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			item, err := txn.Get([]byte(bookPrefix + bookID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry; skip rather than fail the listing.
				continue
			}
			if err != nil {
				return fmt.Errorf("get book %s: %w", bookID, err)
			}

			err = item.Value(func(val []byte) error {
				var book domain.Book
				if unmarshalErr := json.Unmarshal(val, &book); unmarshalErr != nil {
					// Skip malformed records.
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				if !book.MatchesSearch(filter.Search) {
					return nil
				}
				if filter.Category != "" && book.Category != filter.Category {
					return nil
				}
				if !book.HasAnyTag(filter.Tags) {
					return nil
				}

				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID > books[j].ID
	})

	return books, nil
}

// ClearCategoryForBooks removes the category field from every book owned
// by userID whose category equals name. Books are orphaned, never
// deleted. Returns the number of books cleared.
func (s *Store) ClearCategoryForBooks(ctx context.Context, userID, name string) (int, error) {
	books, err := s.ListBooks(ctx, userID, BookFilter{Category: name})
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, book := range books {
		book.Category = ""
		book.Touch()

		err := s.db.Update(func(txn *badger.Txn) error {
			return setInTxn(txn, []byte(bookPrefix+book.ID), book)
		})
		if err != nil {
			return cleared, fmt.Errorf("clear category on book %s: %w", book.ID, err)
		}
		cleared++
	}

	return cleared, nil
}
