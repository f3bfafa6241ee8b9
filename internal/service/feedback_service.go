package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// FeedbackService records post-resolution satisfaction ratings.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
}

// FeedbackDependencies bundles repositories for the feedback service.
type FeedbackDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	RequestRepo  repository.RequestRepository
	Dispatcher   events.Dispatcher
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{
		feedback:   deps.FeedbackRepo,
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
	}
}

// SubmitFeedback attaches a rating to a resolved request. Only the owning
// user may rate, only once, and only after resolution.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, actor *domain.User, requestID string, rating int, comment string) (*domain.Feedback, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !domain.ValidRating(rating) {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if request.UserID != actor.ID {
		return nil, apperrors.NewForbidden("feedback is limited to the request owner")
	}
	if !request.IsResolved() {
		return nil, apperrors.NewNotResolved("feedback requires a resolved request")
	}

	if _, err := s.feedback.GetByRequest(ctx, requestID); err == nil {
		return nil, apperrors.NewDuplicateFeedback(requestID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	feedback := &domain.Feedback{
		RequestID: requestID,
		UserID:    actor.ID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		// The unique constraint backs the duplicate check against races.
		if errors.Is(err, repository.ErrFeedbackExists) {
			return nil, apperrors.NewDuplicateFeedback(requestID)
		}
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFeedbackSubmitted,
			RequestID: requestID,
			Actor:     eventActor(actor),
			Timestamp: feedback.CreatedAt,
			Payload: events.FeedbackSubmittedPayload{
				FeedbackID: feedback.ID,
				Rating:     feedback.Rating,
			},
		})
	}
	return feedback, nil
}

// GetFeedback returns the feedback for a request, if any. Owner or admin.
func (s *FeedbackService) GetFeedback(ctx context.Context, actor *domain.User, requestID string) (*domain.Feedback, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if !actor.IsAdmin() && request.UserID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	feedback, err := s.feedback.GetByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// ListFeedback returns all feedback entries, most recent first. Admin only.
func (s *FeedbackService) ListFeedback(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Feedback, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	result, err := s.feedback.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
