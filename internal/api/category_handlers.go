package api

import (
	"github.com/go-json-experiment/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleCreateCategory creates a named category.
// POST /api/v1/categories
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.CreateCategoryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	category, err := s.categoryService.Create(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, category, s.logger)
}

// handleListCategories returns the user's categories sorted by name.
// GET /api/v1/categories
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	categories, err := s.categoryService.List(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list categories", "user_id", userID, "error", err)
		response.InternalError(w, "Failed to list categories", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"categories": categories,
		"total":      len(categories),
	}, s.logger)
}

// handleDeleteCategory removes a category, orphaning its books.
// DELETE /api/v1/categories/{id}
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	categoryID := chi.URLParam(r, "id")

	if err := s.categoryService.Delete(ctx, userID, categoryID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
