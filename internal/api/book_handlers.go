package api

import (
	"github.com/go-json-experiment/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// maxUploadSize caps multipart uploads at 500 MB.
const maxUploadSize = 500 << 20

// handleUploadBook accepts a multipart upload with a "file" part and
// metadata fields (title, author, category, tags).
// POST /api/v1/books
func (s *Server) handleUploadBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.BadRequest(w, "Invalid multipart form", s.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field", s.logger)
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	title := r.FormValue("title")
	if title == "" {
		// Fall back to the filename without extension.
		base := filepath.Base(header.Filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	book, err := s.bookService.Upload(ctx, userID, service.UploadRequest{
		Title:     title,
		Author:    r.FormValue("author"),
		Filename:  filepath.Base(header.Filename),
		MediaType: mediaType,
		Category:  r.FormValue("category"),
		Tags:      tags,
		Content:   file,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleListBooks returns the user's books, filtered by query params.
// GET /api/v1/books?search=&category=&tags=a,b
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	filter := store.BookFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	books, err := s.bookService.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list books", "user_id", userID, "error", err)
		response.InternalError(w, "Failed to list books", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"books": books,
		"total": len(books),
	}, s.logger)
}

// handleGetBook returns a single book.
// GET /api/v1/books/{id}
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	book, err := s.bookService.Get(ctx, userID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleUpdateBook applies a partial metadata update.
// PATCH /api/v1/books/{id}
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	var req service.UpdateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.Update(ctx, userID, bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book and its stored file.
// DELETE /api/v1/books/{id}
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	if err := s.bookService.Delete(ctx, userID, bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleDownloadBook streams the book file with its original filename.
// GET /api/v1/books/{id}/download
func (s *Server) handleDownloadBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	book, reader, size, err := s.bookService.Download(ctx, userID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", book.FileType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", book.Filename))

	// ServeContent handles Range requests for resumable downloads.
	http.ServeContent(w, r, book.Filename, book.UpdatedAt, reader)
}

// handleUpdateProgress records reading progress and time.
// PUT /api/v1/books/{id}/progress
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	var req service.ProgressRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.UpdateProgress(ctx, userID, bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleToggleBookmark toggles a bookmark on a page.
// POST /api/v1/books/{id}/bookmarks
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	bookID := chi.URLParam(r, "id")

	var req service.BookmarkRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.bookService.ToggleBookmark(ctx, userID, bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
