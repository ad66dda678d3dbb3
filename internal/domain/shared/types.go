package shared

import "github.com/google/uuid"

// PlayerID identifies a participant in the hunt
type PlayerID string

// String returns the string representation of PlayerID
func (id PlayerID) String() string {
	return string(id)
}

// IsEmpty checks if PlayerID is empty
func (id PlayerID) IsEmpty() bool {
	return string(id) == ""
}

// Category is one of the two mutually exclusive classes partitioning the
// player population. Each category hunts the other category's target.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
)

// IsValid reports whether the category is one of the two known values
func (c Category) IsValid() bool {
	return c == CategoryA || c == CategoryB
}

// Opposite returns the other category
func (c Category) Opposite() Category {
	if c == CategoryA {
		return CategoryB
	}
	return CategoryA
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// NewConnectionID generates an opaque connection identifier
func NewConnectionID() string {
	return uuid.New().String()
}
