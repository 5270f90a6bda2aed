package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RegisterOps mounts the health probe and the Prometheus scrape endpoint.
func RegisterOps(app fiber.Router, health *HealthHandler, metrics http.Handler) {
	app.Get("/health", health.Healthy)
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}
}

// RegisterRoutes mounts the JSON API. authenticated resolves the caller and
// admin guards admin-only operations.
func (h *Handler) RegisterRoutes(app fiber.Router, authenticated, admin fiber.Handler) {
	api := app.Group("/api")

	// Public
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/register", h.Register)
	auth.Get("/registration", h.RegistrationStatus)
	auth.Get("/google/login", h.GoogleLogin)
	auth.Get("/google/callback", h.GoogleCallback)
	auth.Get("/me", authenticated, h.Me)

	api.Post("/webhooks/stripe", h.StripeWebhook)

	// Any identity
	api.Get("/events", authenticated, h.ListEvents)
	api.Get("/events/:id", authenticated, h.GetEvent)
	api.Get("/birthdays", authenticated, h.Birthdays)
	api.Get("/members/:id", authenticated, h.GetMember)
	api.Get("/members/:id/photo", authenticated, h.MemberPhoto)
	api.Put("/members/:id/photo", authenticated, h.UploadMemberPhoto)

	notifications := api.Group("/notifications", authenticated)
	notifications.Get("/", h.ListNotifications)
	notifications.Get("/unread-count", h.UnreadCount)
	notifications.Post("/mark-all-read", h.MarkAllNotificationsRead)
	notifications.Patch("/:id", h.SetNotificationRead)
	notifications.Post("/", admin, h.Announce)

	// Member self-service
	member := api.Group("/member", authenticated)
	member.Get("/profile", h.MemberProfile)
	member.Get("/duties", h.MemberDuties)
	member.Get("/calendar", h.MemberCalendar)
	member.Get("/schedule", h.MemberSchedule)
	member.Get("/group", h.MyGroup)
	member.Get("/groups", h.MemberGroups)
	member.Get("/expenses", h.MemberExpenses)
	member.Post("/expenses", h.SubmitExpense)
	api.Post("/dues/:id/checkout", authenticated, h.CheckoutDues)

	// Admin
	api.Get("/admin/dashboard", authenticated, admin, h.AdminDashboard)

	api.Get("/members", authenticated, admin, h.ListMembers)
	api.Post("/members", authenticated, admin, h.CreateMember)
	api.Patch("/members/:id", authenticated, admin, h.UpdateMember)
	api.Delete("/members/:id", authenticated, admin, h.DeactivateMember)

	attendance := api.Group("/attendance", authenticated, admin)
	attendance.Get("/", h.ListAttendance)
	attendance.Post("/", h.MarkAttendance)
	attendance.Get("/monthly", h.MonthlyAttendance)
	attendance.Post("/monthly", h.SaveMonthlyAttendance)

	assignments := api.Group("/assignments", authenticated, admin)
	assignments.Get("/", h.ListAssignments)
	assignments.Post("/", h.AssignSlot)
	assignments.Delete("/:key/members/:memberId", h.RemoveAssignment)
	assignments.Post("/:key/attendance", h.ToggleAssignmentAttendance)

	groups := api.Group("/groups", authenticated, admin)
	groups.Get("/", h.ListGroups)
	groups.Post("/", h.CreateGroup)
	groups.Delete("/:id", h.DeleteGroup)
	groups.Post("/:id/members", h.AddGroupMember)
	groups.Delete("/:id/members/:memberId", h.RemoveGroupMember)

	// the dues and events prefixes also carry member routes
	api.Get("/dues", authenticated, admin, h.ListDues)
	api.Post("/dues", authenticated, admin, h.CreateDues)
	api.Get("/dues/report.xlsx", authenticated, admin, h.DuesReportWorkbook)
	api.Get("/dues/report", authenticated, admin, h.DuesReport)
	api.Post("/dues/:id/pay", authenticated, admin, h.PayDues)
	api.Post("/dues/:id/waive", authenticated, admin, h.WaiveDues)
	api.Post("/dues/:id/remind", authenticated, admin, h.RemindDues)

	api.Post("/events", authenticated, admin, h.CreateEvent)
	api.Patch("/events/:id", authenticated, admin, h.UpdateEvent)
	api.Delete("/events/:id", authenticated, admin, h.CancelEvent)
}
