package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
)

// fakeRequestStore implements RequestRepository and AuditRepository over the
// same in-memory state, mirroring how the real store couples the status
// update and the audit append in one transaction.
type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*domain.ServiceRequest
	audit    []domain.AuditEntry
	seq      int
	clock    time.Time
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[string]*domain.ServiceRequest),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRequestStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeRequestStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRequestStore) Create(_ context.Context, request *domain.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = f.nextID("req")
	request.CreatedAt = f.tick()
	request.UpdatedAt = request.CreatedAt
	stored := *request
	f.requests[request.ID] = &stored
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRequestStore) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []domain.ServiceRequest
	for _, stored := range f.requests {
		if filter.UserID != nil && stored.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && stored.Category != *filter.Category {
			continue
		}
		if filter.Priority != nil && stored.Priority != *filter.Priority {
			continue
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	offset := filter.Offset
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *fakeRequestStore) AdvanceStatus(_ context.Context, requestID string, from, to domain.RequestStatus, entry *domain.AuditEntry) (*domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.requests[requestID]
	if !ok || stored.Status != from {
		return nil, repository.ErrStaleStatus
	}
	stored.Status = to
	stored.UpdatedAt = f.tick()

	entry.ID = f.nextID("audit")
	entry.CreatedAt = stored.UpdatedAt
	f.audit = append(f.audit, *entry)

	copied := *stored
	return &copied, nil
}

func (f *fakeRequestStore) UpdatePriority(_ context.Context, requestID string, priority domain.RequestPriority) (*domain.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.requests[requestID]
	if !ok || stored.Status == domain.StatusResolved {
		return nil, pgx.ErrNoRows
	}
	stored.Priority = priority
	stored.UpdatedAt = f.tick()
	copied := *stored
	return &copied, nil
}

func (f *fakeRequestStore) CountByStatus(_ context.Context, userID *string) (map[domain.RequestStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[domain.RequestStatus]int64)
	for _, stored := range f.requests {
		if userID != nil && stored.UserID != *userID {
			continue
		}
		result[stored.Status]++
	}
	return result, nil
}

func (f *fakeRequestStore) CountByCategory(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[string]int64)
	for _, stored := range f.requests {
		result[stored.Category]++
	}
	return result, nil
}

func (f *fakeRequestStore) CountByPriority(_ context.Context) (map[domain.RequestPriority]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[domain.RequestPriority]int64)
	for _, stored := range f.requests {
		result[stored.Priority]++
	}
	return result, nil
}

func (f *fakeRequestStore) ListByRequest(_ context.Context, requestID string) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.AuditEntry
	for _, entry := range f.audit {
		if entry.RequestID == requestID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeRequestStore) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := append([]domain.AuditEntry{}, f.audit...)
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeRequestStore) auditCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.audit)
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
	usage      map[string]int64
	seq        int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[string]*domain.Category),
		usage:      make(map[string]int64),
	}
}

func (f *fakeCategoryRepo) add(name string, active bool) *domain.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	category := &domain.Category{
		ID:       fmt.Sprintf("cat-%d", f.seq),
		Name:     name,
		IsActive: active,
	}
	f.categories[category.ID] = category
	return category
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	category.ID = fmt.Sprintf("cat-%d", f.seq)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	stored := *category
	f.categories[category.ID] = &stored
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *category
	f.categories[category.ID] = &stored
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.categories {
		if strings.EqualFold(stored.Name, name) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) ListAll(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Category
	for _, stored := range f.categories {
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeCategoryRepo) ListActive(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Category
	for _, stored := range f.categories {
		if stored.IsActive {
			result = append(result, *stored)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeCategoryRepo) UsageCount(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage[strings.ToLower(name)], nil
}

type fakeFeedbackRepo struct {
	mu        sync.Mutex
	byRequest map[string]*domain.Feedback
	seq       int
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{byRequest: make(map[string]*domain.Feedback)}
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byRequest[feedback.RequestID]; ok {
		return repository.ErrFeedbackExists
	}
	f.seq++
	feedback.ID = fmt.Sprintf("fb-%d", f.seq)
	feedback.CreatedAt = time.Now()
	stored := *feedback
	f.byRequest[feedback.RequestID] = &stored
	return nil
}

func (f *fakeFeedbackRepo) GetByRequest(_ context.Context, requestID string) (*domain.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byRequest[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeFeedbackRepo) ListAll(_ context.Context, limit, offset int) ([]domain.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Feedback
	for _, stored := range f.byRequest {
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeFeedbackRepo) Stats(_ context.Context) (*repository.FeedbackStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repository.FeedbackStats{ByRating: make(map[int]int64)}
	var sum int64
	for _, stored := range f.byRequest {
		stats.Total++
		stats.ByRating[stored.Rating]++
		sum += int64(stored.Rating)
	}
	if stats.Total > 0 {
		stats.AverageRating = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.users {
		if strings.EqualFold(stored.Email, email) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
	seq    int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token.ID = fmt.Sprintf("reset-%d", f.seq)
	token.CreatedAt = time.Now()
	stored := *token
	f.tokens[token.Token] = &stored
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, token string) (*repository.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, stored := range f.tokens {
		if stored.ID == id {
			stored.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
