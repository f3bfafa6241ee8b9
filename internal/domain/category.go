package domain

import "time"

// Category is an admin-managed lookup for valid request categories.
// Requests record the category name at creation time, so deactivating or
// deleting a category never invalidates existing requests.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
