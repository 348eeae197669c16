package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET /health                              database and snapshot status
//	GET /calendar                            last scheduled table, HTML
//	GET /calendar/{year}                     table built on demand, HTML
//	GET /api/v1/calendar/{year}/table        table structure, JSON
//	GET /api/v1/calendar/{year}/events.ics   iCalendar export
//	GET /api/v1/refresh/runs                 refresh history
//
// Calendar routes take table options and API settings from the query string.
func SetupRoutes(handlers *Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", handlers.HealthCheck)
	r.Get("/calendar", handlers.GetSnapshot)
	r.Get("/calendar/{year}", handlers.GetCalendarPage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calendar/{year}/table", handlers.GetCalendarTable)
		r.Get("/calendar/{year}/events.ics", handlers.GetCalendarICS)
		r.Get("/refresh/runs", handlers.ListRefreshRuns)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	return r
}
