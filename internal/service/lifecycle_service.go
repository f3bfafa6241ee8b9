package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// LifecycleService owns service request records and is the only component
// permitted to mutate a request's status.
type LifecycleService struct {
	requests   repository.RequestRepository
	categories repository.CategoryRepository
	audit      repository.AuditRepository
	dispatcher events.Dispatcher
}

// LifecycleDependencies bundles repositories for the lifecycle service.
type LifecycleDependencies struct {
	RequestRepo  repository.RequestRepository
	CategoryRepo repository.CategoryRepository
	AuditRepo    repository.AuditRepository
	Dispatcher   events.Dispatcher
}

// CreateRequestInput describes request creation payload.
type CreateRequestInput struct {
	Title       string
	Description string
	Category    string
	Priority    domain.RequestPriority
}

// ListFilter describes listing filters; all combine with AND.
type ListFilter struct {
	Status   *domain.RequestStatus
	Category *string
	Priority *domain.RequestPriority
	Limit    int
	Offset   int
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		requests:   deps.RequestRepo,
		categories: deps.CategoryRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateRequest creates a request in SUBMITTED state owned by the actor.
// Creation is not a transition, so no audit entry is written.
func (s *LifecycleService) CreateRequest(ctx context.Context, actor *domain.User, input CreateRequestInput) (*domain.ServiceRequest, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	category, err := s.categories.GetByName(ctx, strings.TrimSpace(input.Category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
		}
		return nil, apperrors.MapError(err)
	}
	if !category.IsActive {
		return nil, apperrors.NewValidationError("category is no longer available", map[string]any{"category": category.Name})
	}

	request := &domain.ServiceRequest{
		UserID:      actor.ID,
		Title:       title,
		Description: description,
		Category:    category.Name,
		Status:      domain.StatusSubmitted,
		Priority:    priority,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestCreatedPayload{
			Category: request.Category,
			Priority: request.Priority,
			Title:    request.Title,
		},
	})
	return request, nil
}

// AdvanceStatus moves a request to the immediate successor of its current
// status. Admin only. The status update and audit append persist as one
// atomic unit; a lost optimistic check is retried once against re-read
// state before surfacing an error.
func (s *LifecycleService) AdvanceStatus(ctx context.Context, actor *domain.User, requestID string, target domain.RequestStatus, remark string) (*domain.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !domain.ValidStatus(target) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": target})
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	updated, err := s.tryAdvance(ctx, actor, request, target, remark)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, repository.ErrStaleStatus) {
		return nil, err
	}

	// Lost the optimistic check to a concurrent transition: re-read current
	// state, re-validate, and retry exactly once.
	request, err = s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	updated, err = s.tryAdvance(ctx, actor, request, target, remark)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewInvalidTransition(string(request.Status), string(target))
		}
		return nil, err
	}
	return updated, nil
}

// tryAdvance validates legality against the given snapshot and performs the
// transactional update. Returns repository.ErrStaleStatus when the snapshot
// lost a race.
func (s *LifecycleService) tryAdvance(ctx context.Context, actor *domain.User, request *domain.ServiceRequest, target domain.RequestStatus, remark string) (*domain.ServiceRequest, error) {
	if request.IsResolved() {
		return nil, apperrors.NewTerminalState("request is resolved and can no longer change status")
	}
	if !domain.CanTransition(request.Status, target) {
		return nil, apperrors.NewInvalidTransition(string(request.Status), string(target))
	}

	entry := &domain.AuditEntry{
		RequestID: request.ID,
		OldStatus: request.Status,
		NewStatus: target,
		Remark:    strings.TrimSpace(remark),
		ActorID:   actor.ID,
	}
	updated, err := s.requests.AdvanceStatus(ctx, request.ID, request.Status, target, entry)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, err
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: updated.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestStatusChangedPayload{
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			Remark:    entry.Remark,
		},
	})
	return updated, nil
}

// UpdatePriority changes the priority of a non-resolved request. Admin only.
// Priority is operational metadata, not part of the status ledger, so no
// audit entry is written.
func (s *LifecycleService) UpdatePriority(ctx context.Context, actor *domain.User, requestID string, priority domain.RequestPriority) (*domain.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.IsResolved() {
		return nil, apperrors.NewTerminalState("request is resolved and its priority is frozen")
	}

	oldPriority := request.Priority
	updated, err := s.requests.UpdatePriority(ctx, requestID, priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The guarded update matched nothing: the request either
			// resolved concurrently or disappeared.
			if current, readErr := s.getRequest(ctx, requestID); readErr == nil && current.IsResolved() {
				return nil, apperrors.NewTerminalState("request is resolved and its priority is frozen")
			}
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestPriorityChanged,
		RequestID: updated.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: updated.Priority,
		},
	})
	return updated, nil
}

// ListRequests returns requests visible to the actor, most recent first.
// Non-admin actors are always scoped to their own requests regardless of
// the supplied filter.
func (s *LifecycleService) ListRequests(ctx context.Context, actor *domain.User, filter ListFilter) ([]domain.ServiceRequest, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	repoFilter := repository.RequestFilter{
		Status:   filter.Status,
		Category: filter.Category,
		Priority: filter.Priority,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	if !actor.IsAdmin() {
		userID := actor.ID
		repoFilter.UserID = &userID
	}

	result, err := s.requests.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetRequest fetches a single request, enforcing ownership for non-admins.
func (s *LifecycleService) GetRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && request.UserID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return request, nil
}

// History returns the request's transition ledger ordered by time
// ascending. Non-admin actors may only read their own requests.
func (s *LifecycleService) History(ctx context.Context, actor *domain.User, requestID string) ([]domain.AuditEntry, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && request.UserID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	entries, err := s.audit.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// RecentActivity returns the latest transitions across all requests for the
// admin dashboard.
func (s *LifecycleService) RecentActivity(ctx context.Context, actor *domain.User, limit int) ([]domain.AuditEntry, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *LifecycleService) getRequest(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor *domain.User) events.Actor {
	if actor == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: actor.ID, Role: actor.Role}
}
