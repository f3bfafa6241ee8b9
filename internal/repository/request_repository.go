package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/persistence"
)

// ErrStaleStatus indicates the compare-and-swap on the request's status
// found a different current status than expected. The caller re-reads and
// re-validates before surfacing an error.
var ErrStaleStatus = errors.New("request status changed concurrently")

// RequestFilter captures listing parameters. Filters combine with AND.
type RequestFilter struct {
	UserID   *string
	Status   *domain.RequestStatus
	Category *string
	Priority *domain.RequestPriority
	Limit    int
	Offset   int
}

// RequestRepository encapsulates service request persistence. AdvanceStatus
// is the only writer of both the status column and the audit log; the two
// writes share one transaction.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	AdvanceStatus(ctx context.Context, requestID string, from, to domain.RequestStatus, entry *domain.AuditEntry) (*domain.ServiceRequest, error)
	UpdatePriority(ctx context.Context, requestID string, priority domain.RequestPriority) (*domain.ServiceRequest, error)
	CountByStatus(ctx context.Context, userID *string) (map[domain.RequestStatus]int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	CountByPriority(ctx context.Context) (map[domain.RequestPriority]int64, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (user_id, title, description, category, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.UserID,
		request.Title,
		request.Description,
		request.Category,
		request.Status,
		request.Priority,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	const query = `
        SELECT id, user_id, title, description, category, status, priority, created_at, updated_at
        FROM service_requests WHERE id=$1`
	var request domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.UserID,
		&request.Title,
		&request.Description,
		&request.Category,
		&request.Status,
		&request.Priority,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	base := `SELECT id, user_id, title, description, category, status, priority, created_at, updated_at
             FROM service_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// created_at DESC ordering is part of the listing contract.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// AdvanceStatus moves the request from one status to the next and appends
// the audit entry in a single transaction. The UPDATE is guarded by the
// expected current status; a concurrent transition makes it match zero rows
// and the whole unit rolls back with ErrStaleStatus.
func (r *requestRepository) AdvanceStatus(ctx context.Context, requestID string, from, to domain.RequestStatus, entry *domain.AuditEntry) (*domain.ServiceRequest, error) {
	var updated domain.ServiceRequest
	err := persistence.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const updateQuery = `
            UPDATE service_requests SET status=$1, updated_at=NOW()
            WHERE id=$2 AND status=$3
            RETURNING id, user_id, title, description, category, status, priority, created_at, updated_at`
		if err := tx.QueryRow(ctx, updateQuery, to, requestID, from).Scan(
			&updated.ID,
			&updated.UserID,
			&updated.Title,
			&updated.Description,
			&updated.Category,
			&updated.Status,
			&updated.Priority,
			&updated.CreatedAt,
			&updated.UpdatedAt,
		); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStaleStatus
			}
			return err
		}

		const auditQuery = `
            INSERT INTO request_audit_log (request_id, old_status, new_status, remark, actor_id)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at`
		return tx.QueryRow(ctx, auditQuery,
			entry.RequestID,
			entry.OldStatus,
			entry.NewStatus,
			entry.Remark,
			entry.ActorID,
		).Scan(&entry.ID, &entry.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdatePriority refuses to touch resolved requests at the SQL level so a
// request resolving between the caller's read and this write cannot be
// mutated. Matching zero rows surfaces as pgx.ErrNoRows.
func (r *requestRepository) UpdatePriority(ctx context.Context, requestID string, priority domain.RequestPriority) (*domain.ServiceRequest, error) {
	const query = `
        UPDATE service_requests SET priority=$1, updated_at=NOW()
        WHERE id=$2 AND status <> 'RESOLVED'
        RETURNING id, user_id, title, description, category, status, priority, created_at, updated_at`
	var updated domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, priority, requestID).Scan(
		&updated.ID,
		&updated.UserID,
		&updated.Title,
		&updated.Description,
		&updated.Category,
		&updated.Status,
		&updated.Priority,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *requestRepository) CountByStatus(ctx context.Context, userID *string) (map[domain.RequestStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM service_requests GROUP BY status`
	args := []any{}
	if userID != nil {
		query = `SELECT status, COUNT(*) FROM service_requests WHERE user_id=$1 GROUP BY status`
		args = append(args, *userID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var status domain.RequestStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *requestRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM service_requests GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		result[category] = count
	}
	return result, rows.Err()
}

func (r *requestRepository) CountByPriority(ctx context.Context) (map[domain.RequestPriority]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT priority, COUNT(*) FROM service_requests GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.RequestPriority]int64)
	for rows.Next() {
		var priority domain.RequestPriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		result[priority] = count
	}
	return result, rows.Err()
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var request domain.ServiceRequest
		if err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Title,
			&request.Description,
			&request.Category,
			&request.Status,
			&request.Priority,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
