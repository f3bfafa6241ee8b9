package domain

import "time"

// Feedback rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a satisfaction rating attached to a resolved request.
// At most one per request.
type Feedback struct {
	ID        string
	RequestID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
