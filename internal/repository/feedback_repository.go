package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// ErrFeedbackExists is returned when the one-feedback-per-request unique
// constraint rejects an insert.
var ErrFeedbackExists = errors.New("feedback already exists for request")

// FeedbackStats aggregates ratings for the admin dashboard.
type FeedbackStats struct {
	Total         int64
	AverageRating float64
	ByRating      map[int]int64
}

// FeedbackRepository persists satisfaction ratings.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByRequest(ctx context.Context, requestID string) (*domain.Feedback, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
	Stats(ctx context.Context) (*FeedbackStats, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository builds the repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO request_feedback (request_id, user_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		feedback.RequestID,
		feedback.UserID,
		feedback.Rating,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrFeedbackExists
		}
		return err
	}
	return nil
}

func (r *feedbackRepository) GetByRequest(ctx context.Context, requestID string) (*domain.Feedback, error) {
	const query = `
        SELECT id, request_id, user_id, rating, comment, created_at
        FROM request_feedback WHERE request_id=$1`
	var feedback domain.Feedback
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&feedback.ID,
		&feedback.RequestID,
		&feedback.UserID,
		&feedback.Rating,
		&feedback.Comment,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, request_id, user_id, rating, comment, created_at
        FROM request_feedback ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFeedback(rows)
}

func (r *feedbackRepository) Stats(ctx context.Context) (*FeedbackStats, error) {
	stats := &FeedbackStats{ByRating: make(map[int]int64)}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM request_feedback`,
	).Scan(&stats.Total, &stats.AverageRating); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT rating, COUNT(*) FROM request_feedback GROUP BY rating`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		stats.ByRating[rating] = count
	}
	return stats, rows.Err()
}

func scanFeedback(rows pgx.Rows) ([]domain.Feedback, error) {
	var result []domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.RequestID,
			&feedback.UserID,
			&feedback.Rating,
			&feedback.Comment,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
