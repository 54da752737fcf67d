package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type Handlers struct {
	Session     *handlers.SessionHandler
	Health      *handlers.HealthHandler
	Doctor      *handlers.DoctorHandler
	Appointment *handlers.AppointmentHandler
	Schedule    *handlers.ScheduleHandler
	Profile     *handlers.ProfileHandler
}

func Setup(app *fiber.App, store *session.Store, issuer *session.TokenIssuer, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Session (public)
	api.Get("/session", h.Session.Current)
	api.Get("/navigation", h.Session.Navigation)

	// Sign-in rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/session")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", h.Session.Login)
	auth.Post("/register", h.Session.Register)
	auth.Post("/demo", h.Session.DemoLogin)

	// Protected routes: token must match the current session generation.
	// Applied per route so unknown paths still 404.
	protect := middleware.SessionProtected(store, issuer)
	api.Post("/session/logout", protect, h.Session.Logout)

	// Patient: Home stack
	api.Get("/doctors", protect, middleware.RequireScreen(navigation.Home), h.Doctor.List)
	api.Get("/categories", protect, middleware.RequireScreen(navigation.Categories), h.Doctor.Categories)
	api.Get("/doctors/:id", protect, middleware.RequireScreen(navigation.DoctorDetails), h.Doctor.Get)
	api.Get("/booking/options", protect, middleware.RequireScreen(navigation.BookAppointment), h.Appointment.BookingOptions)
	api.Post("/appointments", protect, middleware.RequireScreen(navigation.BookAppointment), h.Appointment.Book)

	// Patient: Appointments stack
	api.Get("/appointments", protect, middleware.RequireScreen(navigation.Appointments), h.Appointment.Mine)
	api.Get("/appointments/:id/prescription", protect, middleware.RequireScreen(navigation.PrescriptionDetails), h.Appointment.Prescription)

	// Doctor: Dashboard stack
	api.Get("/dashboard", protect, middleware.RequireScreen(navigation.Dashboard), h.Appointment.Dashboard)
	api.Put("/appointments/:id/status", protect, middleware.RequireScreen(navigation.Dashboard), h.Appointment.UpdateStatus)
	api.Post("/prescriptions", protect, middleware.RequireScreen(navigation.AddPrescription), h.Appointment.CreatePrescription)
	api.Get("/patients/:id/history", protect, middleware.RequireScreen(navigation.PatientHistory), h.Appointment.PatientHistory)

	// Doctor: Schedule
	api.Get("/schedule", protect, middleware.RequireScreen(navigation.Schedule), h.Schedule.Get)
	api.Put("/schedule/:day", protect, middleware.RequireScreen(navigation.Schedule), h.Schedule.SaveDay)

	// Both roles
	api.Get("/profile", protect, middleware.RequireScreen(navigation.Profile), h.Profile.Get)
	api.Put("/profile", protect, middleware.RequireScreen(navigation.Profile), h.Profile.Update)
	api.Post("/profile/push-token", protect, middleware.RequireScreen(navigation.Profile), h.Profile.RegisterPushToken)
	api.Get("/settings", protect, middleware.RequireScreen(navigation.Settings), h.Profile.Settings)
	api.Put("/settings", protect, middleware.RequireScreen(navigation.Settings), h.Profile.UpdateSettings)
}
