// Package domain contains the core business entities and domain logic for the Inkwell e-book library.
package domain

import (
	"slices"
	"strings"
)

// Allowed media types for uploaded books.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeEPUB = "application/epub+zip"
)

// CompletionThreshold is the reading progress at which a book counts as
// completed in statistics. Fixed, not configurable.
const CompletionThreshold = 0.95

// BookmarkAction reports the effect of a bookmark toggle.
type BookmarkAction string

const (
	// BookmarkAdded means the page was not bookmarked and now is.
	BookmarkAdded BookmarkAction = "added"
	// BookmarkRemoved means the page was bookmarked and no longer is.
	BookmarkRemoved BookmarkAction = "removed"
)

// Book represents an uploaded e-book owned by exactly one user.
// CreatedAt is the upload timestamp.
type Book struct {
	Timestamps
	UserID          string   `json:"user_id"`
	Title           string   `json:"title"`
	Author          string   `json:"author,omitempty"`
	Filename        string   `json:"filename"`
	FileKey         string   `json:"file_key"` // Storage locator, generated, never derived from user input
	FileType        string   `json:"file_type"`
	FileSize        int64    `json:"file_size"`
	ReadingProgress float64  `json:"reading_progress"`
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	ReadingTime     int      `json:"reading_time"` // Accumulated minutes, never overwritten
	Bookmarks       []int    `json:"bookmarks,omitempty"`
	CoverImage      string   `json:"cover_image,omitempty"`
}

// IsAllowedMediaType reports whether mediaType is one of the two
// accepted book content types. The match is exact.
func IsAllowedMediaType(mediaType string) bool {
	return mediaType == MediaTypePDF || mediaType == MediaTypeEPUB
}

// FileExtension returns the storage extension for an allowed media type.
func FileExtension(mediaType string) string {
	if mediaType == MediaTypeEPUB {
		return ".epub"
	}
	return ".pdf"
}

// IsCompleted reports whether the book counts as finished for statistics.
func (b *Book) IsCompleted() bool {
	return b.ReadingProgress >= CompletionThreshold
}

// ToggleBookmark adds pageNumber to the bookmark set if absent, removes
// it if present. The set stays sorted and duplicate-free. Toggling twice
// with the same page restores the original set.
func (b *Book) ToggleBookmark(pageNumber int) BookmarkAction {
	if i := slices.Index(b.Bookmarks, pageNumber); i >= 0 {
		b.Bookmarks = slices.Delete(b.Bookmarks, i, i+1)
		return BookmarkRemoved
	}
	b.Bookmarks = append(b.Bookmarks, pageNumber)
	slices.Sort(b.Bookmarks)
	return BookmarkAdded
}

// MatchesSearch reports whether the query matches the book's title,
// author, or original filename, case-insensitively as a substring.
// An empty query matches everything.
func (b *Book) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.Filename), q)
}

// HasAnyTag reports whether the book carries at least one of the given
// tags. An empty tag list matches everything.
func (b *Book) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		if slices.Contains(b.Tags, want) {
			return true
		}
	}
	return false
}
