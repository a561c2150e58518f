package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// StatsService computes reading statistics over a user's library.
type StatsService struct {
	store *store.Store
}

// NewStatsService creates a new statistics service.
func NewStatsService(store *store.Store) *StatsService {
	return &StatsService{store: store}
}

// Compute derives the user's reading statistics from their books. The
// favorite category is the one holding the most books; ties go to the
// lexicographically smallest name. Streak tracking needs per-day
// reading events that aren't recorded, so the streak is always zero.
func (s *StatsService) Compute(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	books, err := s.store.ListBooks(ctx, userID, store.BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("list books for stats: %w", err)
	}

	now := time.Now()
	stats := &domain.ReadingStats{}
	categoryCounts := make(map[string]int)

	for _, book := range books {
		stats.TotalBooks++
		stats.TotalReadingTime += book.ReadingTime

		if book.IsCompleted() {
			stats.BooksCompleted++
		}

		if book.CreatedAt.Year() == now.Year() && book.CreatedAt.Month() == now.Month() {
			stats.BooksThisMonth++
		}

		if book.Category != "" {
			categoryCounts[book.Category]++
		}
	}

	best := 0
	for name, count := range categoryCounts {
		if count > best || (count == best && (stats.FavoriteCategory == "" || name < stats.FavoriteCategory)) {
			best = count
			stats.FavoriteCategory = name
		}
	}

	return stats, nil
}
