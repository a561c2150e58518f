package store

import "errors"

// Sentinel errors. Services translate these into API-facing domain errors.
var (
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when attempting to create a user with an email that's already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrBookNotFound is returned when a book is absent or owned by a
	// different user. The two cases are indistinguishable on purpose:
	// cross-tenant existence must never leak.
	ErrBookNotFound = errors.New("book not found")
	// ErrCategoryNotFound is returned when a category is absent or owned
	// by a different user.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists is returned when a user already has a category with that name.
	ErrCategoryExists = errors.New("category already exists")
)
