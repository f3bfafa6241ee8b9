package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/persistence"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

const overviewCacheKey = "stats:overview"

// Overview aggregates dashboard statistics.
type Overview struct {
	Total      int64                            `json:"total"`
	ByStatus   map[domain.RequestStatus]int64   `json:"by_status"`
	ByCategory map[string]int64                 `json:"by_category"`
	ByPriority map[domain.RequestPriority]int64 `json:"by_priority"`
	Feedback   repository.FeedbackStats         `json:"feedback"`
}

// UserOverview aggregates a single user's request counts.
type UserOverview struct {
	Total    int64                          `json:"total"`
	ByStatus map[domain.RequestStatus]int64 `json:"by_status"`
}

// StatsService computes dashboard statistics. The admin overview is cached
// in Redis with a short TTL; cache failures fall back to the database.
type StatsService struct {
	requests repository.RequestRepository
	feedback repository.FeedbackRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(requests repository.RequestRepository, feedback repository.FeedbackRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{
		requests: requests,
		feedback: feedback,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// AdminOverview returns system-wide statistics. Admin only.
func (s *StatsService) AdminOverview(ctx context.Context, actor *domain.User) (*Overview, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}

	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	byStatus, err := s.requests.CountByStatus(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byCategory, err := s.requests.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.requests.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	feedbackStats, err := s.feedback.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	overview := &Overview{
		ByStatus:   byStatus,
		ByCategory: byCategory,
		ByPriority: byPriority,
		Feedback:   *feedbackStats,
	}
	for _, count := range byStatus {
		overview.Total += count
	}

	s.writeCache(ctx, overview)
	return overview, nil
}

// UserOverview returns the actor's own request counts.
func (s *StatsService) UserOverview(ctx context.Context, actor *domain.User) (*UserOverview, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	userID := actor.ID
	byStatus, err := s.requests.CountByStatus(ctx, &userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	overview := &UserOverview{ByStatus: byStatus}
	for _, count := range byStatus {
		overview.Total += count
	}
	return overview, nil
}

func (s *StatsService) readCache(ctx context.Context) *Overview {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, overviewCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var overview Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		return nil
	}
	return &overview
}

func (s *StatsService) writeCache(ctx context.Context, overview *Overview) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, overviewCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}
