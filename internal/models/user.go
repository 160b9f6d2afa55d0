package models

// User represents a person who can record and split expenses.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user (3 to 80 characters).
	Name string

	// Email is the user's email address (unique).
	Email string

	// MobileNumber is the user's phone number (at most 10 characters).
	MobileNumber string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}
