package dto

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CreateRequestRequest payload for new service requests.
type CreateRequestRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Priority    domain.RequestPriority `json:"priority,omitempty"`
}

// AdvanceStatusRequest payload for admin status transitions.
type AdvanceStatusRequest struct {
	Status domain.RequestStatus `json:"status"`
	Remark string               `json:"remark,omitempty"`
}

// UpdatePriorityRequest payload for admin priority changes.
type UpdatePriorityRequest struct {
	Priority domain.RequestPriority `json:"priority"`
}

// RequestSummary is the list representation of a service request.
type RequestSummary struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Category  string                 `json:"category"`
	Status    domain.RequestStatus   `json:"status"`
	Priority  domain.RequestPriority `json:"priority"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// RequestDetailResponse is the full representation including the timeline.
type RequestDetailResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Status      domain.RequestStatus   `json:"status"`
	Priority    domain.RequestPriority `json:"priority"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	History     []AuditEntryResponse   `json:"history"`
}

// AuditEntryResponse is one transition in the timeline.
type AuditEntryResponse struct {
	ID        string               `json:"id"`
	RequestID string               `json:"request_id"`
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Remark    string               `json:"remark,omitempty"`
	ActorID   string               `json:"actor_id"`
	CreatedAt time.Time            `json:"created_at"`
}
