// Package calendar computes technician day-slot views, validates
// availability, and keeps the best-effort calendar-event mirror.
package calendar

import (
	"assistec_backend/internal/calendar/repository"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/platform/config"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the calendar domain module.
type Module struct {
	handler    *Handler
	Service    *Service
	Repository *repository.Repository
}

// NewModule creates a new calendar module. The appointment and order sources
// come from their own modules so slot views read the same stores.
func NewModule(pool *pgxpool.Pool, workdayCfg config.WorkdayConfig, appointments AppointmentSource, orders OrderSource, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := NewService(WorkdayFromConfig(workdayCfg), appointments, orders, repo, log)
	h := NewHandler(svc, val)

	return &Module{
		handler:    h,
		Service:    svc,
		Repository: repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "calendar"
}

// RegisterRoutes registers the module's routes under /api/v1/calendario.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	calendario := ctx.Protected.Group("/calendario")
	m.handler.RegisterRoutes(calendario)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
