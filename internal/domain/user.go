package domain

// User represents an authenticated user account in the system.
//
// Accounts are created on registration and never mutated or deleted
// afterwards. Email uniqueness is exact: two addresses differing only in
// case are distinct identities.
type User struct {
	Timestamps
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string `json:"display_name"`
}

// Public returns a copy of the user safe for API responses.
func (u *User) Public() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}
