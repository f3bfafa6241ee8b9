package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// AdminRequestsHandler exposes the admin-only lifecycle mutations and
// dashboard reads.
type AdminRequestsHandler struct {
	lifecycle *service.LifecycleService
	feedback  *service.FeedbackService
	stats     *service.StatsService
}

// NewAdminRequestsHandler constructs handler.
func NewAdminRequestsHandler(lifecycle *service.LifecycleService, feedback *service.FeedbackService, stats *service.StatsService) *AdminRequestsHandler {
	return &AdminRequestsHandler{lifecycle: lifecycle, feedback: feedback, stats: stats}
}

// AdvanceStatus POST /admin/requests/:id/status.
func (h *AdminRequestsHandler) AdvanceStatus(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AdvanceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	request, err := h.lifecycle.AdvanceStatus(c.Context(), principal, c.Params("id"), req.Status, req.Remark)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(request)})
}

// UpdatePriority PATCH /admin/requests/:id/priority.
func (h *AdminRequestsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}

	request, err := h.lifecycle.UpdatePriority(c.Context(), principal, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(request)})
}

// RecentActivity GET /admin/activity.
func (h *AdminRequestsHandler) RecentActivity(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	limit := parseInt(c.Query("limit"), 10)
	entries, err := h.lifecycle.RecentActivity(c.Context(), principal, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditEntryResponses(entries)})
}

// Overview GET /admin/stats.
func (h *AdminRequestsHandler) Overview(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	overview, err := h.stats.AdminOverview(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// ListFeedback GET /admin/feedback.
func (h *AdminRequestsHandler) ListFeedback(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.feedback.ListFeedback(c.Context(), principal, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackResponse, 0, len(entries))
	for i := range entries {
		items = append(items, feedbackResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
