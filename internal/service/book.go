package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/storage"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// BookService handles book uploads, metadata, reading progress, and
// file retrieval. Every operation is scoped to the acting user.
type BookService struct {
	store      *store.Store
	storage    *storage.Storage
	categories *CategoryService
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, fileStorage *storage.Storage, categories *CategoryService, logger *slog.Logger) *BookService {
	return &BookService{
		store:      store,
		storage:    fileStorage,
		categories: categories,
		logger:     logger,
	}
}

// UploadRequest describes a book file being uploaded together with its
// initial metadata. Content is read exactly once.
type UploadRequest struct {
	Title     string
	Author    string
	Filename  string
	MediaType string
	Category  string
	Tags      []string
	Content   io.Reader
}

// UpdateRequest carries a partial metadata update. Nil fields are left
// unchanged; a non-nil empty value clears the field.
type UpdateRequest struct {
	Title      *string   `json:"title" validate:"omitempty,min=1,max=500"`
	Author     *string   `json:"author" validate:"omitempty,max=200"`
	Category   *string   `json:"category" validate:"omitempty,max=100"`
	Tags       *[]string `json:"tags"`
	CoverImage *string   `json:"cover_image"`
}

// ProgressRequest updates reading state for a book. CurrentPage is
// accepted for client convenience but not persisted.
type ProgressRequest struct {
	Progress    *float64 `json:"progress"`
	ReadingTime int      `json:"reading_time" validate:"gte=0"`
	CurrentPage int      `json:"current_page"`
}

// BookmarkRequest toggles a bookmark on a page.
type BookmarkRequest struct {
	PageNumber int `json:"page_number" validate:"gte=1"`
}

// BookmarkResponse reports the effect of a bookmark toggle.
type BookmarkResponse struct {
	Action    domain.BookmarkAction `json:"action"`
	Bookmarks []int                 `json:"bookmarks"`
}

// Upload stores a book file and its metadata record. Only PDF and EPUB
// media types are accepted; anything else is rejected before any bytes
// are written. If the metadata write fails after the file landed on
// disk, the file is removed again.
func (s *BookService) Upload(ctx context.Context, userID string, req UploadRequest) (*domain.Book, error) {
	if req.Title == "" {
		return nil, domainerrors.Validation("title is required")
	}
	if req.Filename == "" {
		return nil, domainerrors.Validation("filename is required")
	}
	if req.Content == nil {
		return nil, domainerrors.Validation("file content is required")
	}

	mediaType := req.MediaType
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	if !domain.IsAllowedMediaType(mediaType) {
		return nil, domainerrors.UnsupportedMedia(fmt.Sprintf("media type %q is not supported; upload a PDF or EPUB", req.MediaType))
	}

	bookID, err := id.Generate("bk")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	fileKey := storage.NewKey(domain.FileExtension(mediaType))
	size, err := s.storage.Save(fileKey, req.Content)
	if err != nil {
		return nil, fmt.Errorf("save book file: %w", err)
	}

	book := &domain.Book{
		Timestamps: domain.Timestamps{
			ID: bookID,
		},
		UserID:   userID,
		Title:    req.Title,
		Author:   req.Author,
		Filename: req.Filename,
		FileKey:  fileKey,
		FileType: mediaType,
		FileSize: size,
		Category: req.Category,
		Tags:     req.Tags,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		if delErr := s.storage.Delete(fileKey); delErr != nil && s.logger != nil {
			s.logger.Warn("Failed to remove orphaned file after record failure",
				"file_key", fileKey,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("create book record: %w", err)
	}

	if book.Category != "" {
		if err := s.categories.touchOnBookAdded(ctx, userID, book.Category); err != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to update category count",
					"category", book.Category,
					"error", err,
				)
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("Book uploaded",
			"book_id", bookID,
			"user_id", userID,
			"file_size", size,
			"file_type", mediaType,
		)
	}

	return book, nil
}

// List returns the user's books, newest first, narrowed by the filter.
func (s *BookService) List(ctx context.Context, userID string, filter store.BookFilter) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get returns a single book owned by the user.
func (s *BookService) Get(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Update applies a partial metadata update. When the category changes,
// both the old and new category counts are adjusted.
func (s *BookService) Update(ctx context.Context, userID, bookID string, req UpdateRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	oldCategory := book.Category

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Tags != nil {
		book.Tags = *req.Tags
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	if req.Category != nil && book.Category != oldCategory {
		if oldCategory != "" {
			if err := s.categories.touchOnBookRemoved(ctx, userID, oldCategory); err != nil && s.logger != nil {
				s.logger.Warn("Failed to decrement category count",
					"category", oldCategory,
					"error", err,
				)
			}
		}
		if book.Category != "" {
			if err := s.categories.touchOnBookAdded(ctx, userID, book.Category); err != nil && s.logger != nil {
				s.logger.Warn("Failed to increment category count",
					"category", book.Category,
					"error", err,
				)
			}
		}
	}

	return book, nil
}

// Download opens the stored file for a book. The record can outlive the
// file on disk; that case surfaces as a distinct missing-file error
// rather than a generic not-found.
func (s *BookService) Download(ctx context.Context, userID, bookID string) (*domain.Book, io.ReadSeekCloser, int64, error) {
	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return nil, nil, 0, err
	}

	reader, size, err := s.storage.Open(book.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, 0, domainerrors.FileMissing("book file is missing from storage")
		}
		return nil, nil, 0, fmt.Errorf("open book file: %w", err)
	}

	return book, reader, size, nil
}

// UpdateProgress records reading progress and accumulates reading time.
// Progress outside [0, 1] is rejected, not clamped.
func (s *BookService) UpdateProgress(ctx context.Context, userID, bookID string, req ProgressRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 1) {
		return nil, domainerrors.Validation("progress must be between 0 and 1")
	}

	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if req.Progress != nil {
		book.ReadingProgress = *req.Progress
	}
	book.ReadingTime += req.ReadingTime

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update reading progress: %w", err)
	}

	return book, nil
}

// ToggleBookmark adds the page to the book's bookmarks, or removes it
// if already present. Toggling twice restores the original state.
func (s *BookService) ToggleBookmark(ctx context.Context, userID, bookID string, req BookmarkRequest) (*BookmarkResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	action := book.ToggleBookmark(req.PageNumber)

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update bookmarks: %w", err)
	}

	return &BookmarkResponse{
		Action:    action,
		Bookmarks: book.Bookmarks,
	}, nil
}

// Delete removes the book record and its category count contribution,
// then removes the file. File deletion is best effort; a failure there
// is logged but does not fail the operation, since the record is gone.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if book.Category != "" {
		if err := s.categories.touchOnBookRemoved(ctx, userID, book.Category); err != nil && s.logger != nil {
			s.logger.Warn("Failed to decrement category count",
				"category", book.Category,
				"error", err,
			)
		}
	}

	if err := s.storage.Delete(book.FileKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		if s.logger != nil {
			s.logger.Warn("Failed to delete book file",
				"book_id", bookID,
				"file_key", book.FileKey,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "user_id", userID)
	}

	return nil
}
