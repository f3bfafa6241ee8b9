package dto

import "time"

// CreateCategoryRequest payload for new categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest payload for category edits.
type UpdateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SetCategoryActiveRequest payload to toggle availability.
type SetCategoryActiveRequest struct {
	Active bool `json:"active"`
}

// CategoryResponse is the public category representation.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
