package domain

// ReadingStats is a read-only aggregate derived from a user's book set
// at computation time. Nothing here is persisted.
type ReadingStats struct {
	TotalBooks       int    `json:"total_books"`
	BooksCompleted   int    `json:"books_completed"`
	TotalReadingTime int    `json:"total_reading_time"` // minutes
	BooksThisMonth   int    `json:"books_this_month"`
	FavoriteCategory string `json:"favorite_category,omitempty"`

	// CurrentStreak is reserved for a streak algorithm that is not part
	// of this core. It is always zero.
	CurrentStreak int `json:"current_streak"`
}
