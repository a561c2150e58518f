package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func newTestBook(id, userID, title string) *domain.Book {
	b := &domain.Book{
		Timestamps: domain.Timestamps{
			ID: id,
		},
		UserID:   userID,
		Title:    title,
		Filename: title + ".epub",
		FileKey:  id + ".epub",
		FileType: domain.MediaTypeEPUB,
		FileSize: 1024,
	}
	b.InitTimestamps()
	return b
}

func TestCreateAndGetBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	book := newTestBook("bk-1", "usr-1", "Dune")
	book.Author = "Frank Herbert"
	book.Tags = []string{"scifi"}
	require.NoError(t, s.CreateBook(ctx, book))

	retrieved, err := s.GetBook(ctx, "usr-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", retrieved.Title)
	assert.Equal(t, "Frank Herbert", retrieved.Author)
	assert.Equal(t, []string{"scifi"}, retrieved.Tags)
	assert.Equal(t, domain.MediaTypeEPUB, retrieved.FileType)
}

func TestGetBook_WrongOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, newTestBook("bk-1", "usr-1", "Dune")))

	// Another user's lookup must be indistinguishable from a missing book.
	_, err := s.GetBook(ctx, "usr-2", "bk-1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = s.GetBook(ctx, "usr-2", "bk-missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	book := newTestBook("bk-1", "usr-1", "Dune")
	require.NoError(t, s.CreateBook(ctx, book))

	originalUpdatedAt := book.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	book.ReadingProgress = 0.5
	require.NoError(t, s.UpdateBook(ctx, book))

	retrieved, err := s.GetBook(ctx, "usr-1", "bk-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, retrieved.ReadingProgress, 1e-9)
	assert.True(t, retrieved.UpdatedAt.After(originalUpdatedAt))
}

func TestUpdateBook_WrongOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	book := newTestBook("bk-1", "usr-1", "Dune")
	require.NoError(t, s.CreateBook(ctx, book))

	stolen := *book
	stolen.UserID = "usr-2"
	err := s.UpdateBook(ctx, &stolen)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, newTestBook("bk-1", "usr-1", "Dune")))
	require.NoError(t, s.DeleteBook(ctx, "usr-1", "bk-1"))

	_, err := s.GetBook(ctx, "usr-1", "bk-1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	// Deleting again fails the same way.
	err = s.DeleteBook(ctx, "usr-1", "bk-1")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestListBooks_ScopedToUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, newTestBook("bk-1", "usr-1", "Dune")))
	require.NoError(t, s.CreateBook(ctx, newTestBook("bk-2", "usr-1", "Hyperion")))
	require.NoError(t, s.CreateBook(ctx, newTestBook("bk-3", "usr-2", "Neuromancer")))

	books, err := s.ListBooks(ctx, "usr-1", BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, "usr-1", b.UserID)
	}
}

func TestListBooks_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	older := newTestBook("bk-1", "usr-1", "Older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateBook(ctx, older))

	newer := newTestBook("bk-2", "usr-1", "Newer")
	require.NoError(t, s.CreateBook(ctx, newer))

	books, err := s.ListBooks(ctx, "usr-1", BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "bk-2", books[0].ID)
	assert.Equal(t, "bk-1", books[1].ID)
}

func TestListBooks_SearchCaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	dune := newTestBook("bk-1", "usr-1", "DUNE Messiah")
	require.NoError(t, s.CreateBook(ctx, dune))

	gibson := newTestBook("bk-2", "usr-1", "Neuromancer")
	gibson.Author = "William Gibson"
	require.NoError(t, s.CreateBook(ctx, gibson))

	books, err := s.ListBooks(ctx, "usr-1", BookFilter{Search: "dune"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "bk-1", books[0].ID)

	// Author matches too.
	books, err = s.ListBooks(ctx, "usr-1", BookFilter{Search: "GIBSON"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "bk-2", books[0].ID)

	books, err = s.ListBooks(ctx, "usr-1", BookFilter{Search: "asimov"})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestListBooks_FilterCategoryAndTags(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	a := newTestBook("bk-1", "usr-1", "Dune")
	a.Category = "Sci-Fi"
	a.Tags = []string{"classic", "space"}
	require.NoError(t, s.CreateBook(ctx, a))

	b := newTestBook("bk-2", "usr-1", "Emma")
	b.Category = "Romance"
	b.Tags = []string{"classic"}
	require.NoError(t, s.CreateBook(ctx, b))

	books, err := s.ListBooks(ctx, "usr-1", BookFilter{Category: "Sci-Fi"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "bk-1", books[0].ID)

	// Tag filter matches any of the given tags.
	books, err = s.ListBooks(ctx, "usr-1", BookFilter{Tags: []string{"classic"}})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	books, err = s.ListBooks(ctx, "usr-1", BookFilter{Tags: []string{"space", "nonexistent"}})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "bk-1", books[0].ID)
}

func TestClearCategoryForBooks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	for _, id := range []string{"bk-1", "bk-2"} {
		b := newTestBook(id, "usr-1", "Book "+id)
		b.Category = "Sci-Fi"
		require.NoError(t, s.CreateBook(ctx, b))
	}
	other := newTestBook("bk-3", "usr-1", "Emma")
	other.Category = "Romance"
	require.NoError(t, s.CreateBook(ctx, other))

	cleared, err := s.ClearCategoryForBooks(ctx, "usr-1", "Sci-Fi")
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	books, err := s.ListBooks(ctx, "usr-1", BookFilter{})
	require.NoError(t, err)
	for _, b := range books {
		if b.ID == "bk-3" {
			assert.Equal(t, "Romance", b.Category)
		} else {
			assert.Empty(t, b.Category)
		}
	}
}
