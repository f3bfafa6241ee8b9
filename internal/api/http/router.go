package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/http/handlers"
	"github.com/spec-kit/service-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	AdminRequests  *handlers.AdminRequestsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/password/change", cfg.Users.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	requests := protected.Group("/requests")
	requests.Post("", cfg.Requests.CreateRequest)
	requests.Get("", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Get("/:id/history", cfg.Requests.GetHistory)
	requests.Post("/:id/feedback", cfg.Requests.SubmitFeedback)
	requests.Get("/:id/feedback", cfg.Requests.GetFeedback)

	protected.Get("/categories", cfg.Categories.ListCategories)
	protected.Get("/stats/me", cfg.Requests.MyStats)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Post("/requests/:id/status", cfg.AdminRequests.AdvanceStatus)
	admin.Patch("/requests/:id/priority", cfg.AdminRequests.UpdatePriority)
	admin.Get("/activity", cfg.AdminRequests.RecentActivity)
	admin.Get("/stats", cfg.AdminRequests.Overview)
	admin.Get("/feedback", cfg.AdminRequests.ListFeedback)

	admin.Post("/categories", cfg.Categories.CreateCategory)
	admin.Put("/categories/:id", cfg.Categories.UpdateCategory)
	admin.Patch("/categories/:id/active", cfg.Categories.SetCategoryActive)
	admin.Delete("/categories/:id", cfg.Categories.DeleteCategory)
}
