package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	StatusSubmitted  RequestStatus = "SUBMITTED"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusResolved   RequestStatus = "RESOLVED"
)

// RequestPriority enumerates urgency levels.
type RequestPriority string

const (
	PriorityLow      RequestPriority = "LOW"
	PriorityMedium   RequestPriority = "MEDIUM"
	PriorityHigh     RequestPriority = "HIGH"
	PriorityCritical RequestPriority = "CRITICAL"
)

// DefaultPriority applies when a request is created without one.
const DefaultPriority = PriorityMedium

// ServiceRequest is the aggregate tracked through the lifecycle.
type ServiceRequest struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Category    string
	Status      RequestStatus
	Priority    RequestPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsResolved reports whether the request reached its terminal state.
func (r *ServiceRequest) IsResolved() bool {
	return r.Status == StatusResolved
}

// allowedTransitions is the adjacency table for the fixed forward ordering.
// RESOLVED is terminal.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusSubmitted:  {StatusInProgress},
	StatusInProgress: {StatusResolved},
	StatusResolved:   {},
}

// NextStatuses returns the legal successors of the given status.
func NextStatuses(current RequestStatus) []RequestStatus {
	return allowedTransitions[current]
}

// CanTransition reports whether next is the immediate successor of current.
func CanTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p RequestPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
