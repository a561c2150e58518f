package domain

// DefaultCategoryColor is assigned to categories created implicitly
// during upload, when the client supplied no color.
const DefaultCategoryColor = "#6366f1"

// Category groups a user's books under a display name.
//
// Names are unique per owning user, not globally. BookCount is a
// denormalized aggregate: it tracks the number of the owner's books
// whose category field equals Name, adjusted at every book
// create/update/delete that touches a category rather than recomputed
// on read.
type Category struct {
	Timestamps
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	BookCount int    `json:"book_count"`
}
