package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/session"
)

type RouterConfig struct {
	Identities *identity.Service
	Inventory  *inventory.Service
	Bookings   *booking.Service
	Sessions   *session.RedisStore
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Env        string
	Version    string
	Log        *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Registration and login need no session
	r.Post("/patients", registerHandler(cfg.Identities, identity.RolePatient))
	r.Post("/caregivers", registerHandler(cfg.Identities, identity.RoleCaregiver))
	r.Post("/sessions/patient", loginHandler(cfg.Identities, cfg.Sessions, identity.RolePatient))
	r.Post("/sessions/caregiver", loginHandler(cfg.Identities, cfg.Sessions, identity.RoleCaregiver))

	// Everything else is session-gated
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Sessions))

		r.Delete("/sessions", logoutHandler(cfg.Sessions))
		r.Get("/schedule/{date}", scheduleHandler(cfg.Bookings, cfg.Inventory))
		r.Post("/reservations", reserveHandler(cfg.Bookings))
		r.Post("/availability", publishAvailabilityHandler(cfg.Bookings))
		r.Post("/vaccines", addDosesHandler(cfg.Inventory))
		r.Get("/appointments", listAppointmentsHandler(cfg.Bookings))
	})

	return r
}
