package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// RequestsHandler manages service request endpoints shared by users and
// admins; ownership scoping happens in the lifecycle core.
type RequestsHandler struct {
	lifecycle *service.LifecycleService
	feedback  *service.FeedbackService
	stats     *service.StatsService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(lifecycle *service.LifecycleService, feedback *service.FeedbackService, stats *service.StatsService) *RequestsHandler {
	return &RequestsHandler{lifecycle: lifecycle, feedback: feedback, stats: stats}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.lifecycle.CreateRequest(c.Context(), principal, service.CreateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestSummary(request)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	requests, err := h.lifecycle.ListRequests(c.Context(), principal, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	request, err := h.lifecycle.GetRequest(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.lifecycle.History(c.Context(), principal, request.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request, history)})
}

// GetHistory GET /requests/:id/history.
func (h *RequestsHandler) GetHistory(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	history, err := h.lifecycle.History(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditEntryResponses(history)})
}

// SubmitFeedback POST /requests/:id/feedback.
func (h *RequestsHandler) SubmitFeedback(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	feedback, err := h.feedback.SubmitFeedback(c.Context(), principal, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// GetFeedback GET /requests/:id/feedback.
func (h *RequestsHandler) GetFeedback(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	feedback, err := h.feedback.GetFeedback(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// MyStats GET /stats/me.
func (h *RequestsHandler) MyStats(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	overview, err := h.stats.UserOverview(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseListFilter(c *fiber.Ctx) service.ListFilter {
	filter := service.ListFilter{}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.RequestStatus(statusStr)
		filter.Status = &status
	}
	if categoryStr := strings.TrimSpace(c.Query("category")); categoryStr != "" {
		filter.Category = &categoryStr
	}
	if priorityStr := strings.TrimSpace(c.Query("priority")); priorityStr != "" {
		priority := domain.RequestPriority(priorityStr)
		filter.Priority = &priority
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func requestSummary(request *domain.ServiceRequest) dto.RequestSummary {
	return dto.RequestSummary{
		ID:        request.ID,
		UserID:    request.UserID,
		Title:     request.Title,
		Category:  request.Category,
		Status:    request.Status,
		Priority:  request.Priority,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

func requestDetail(request *domain.ServiceRequest, history []domain.AuditEntry) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		ID:          request.ID,
		UserID:      request.UserID,
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		Status:      request.Status,
		Priority:    request.Priority,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
		History:     auditEntryResponses(history),
	}
}

func auditEntryResponses(entries []domain.AuditEntry) []dto.AuditEntryResponse {
	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:        entry.ID,
			RequestID: entry.RequestID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			Remark:    entry.Remark,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}

func feedbackResponse(feedback *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        feedback.ID,
		RequestID: feedback.RequestID,
		UserID:    feedback.UserID,
		Rating:    feedback.Rating,
		Comment:   feedback.Comment,
		CreatedAt: feedback.CreatedAt,
	}
}
