package domain

import "time"

// AuditEntry is an immutable record of one status transition. Entries are
// only written inside the same transaction as the status update; they are
// never updated or deleted.
type AuditEntry struct {
	ID        string
	RequestID string
	OldStatus RequestStatus
	NewStatus RequestStatus
	Remark    string
	ActorID   string
	CreatedAt time.Time
}
