// Package appointments provides the appointment intake domain module.
package appointments

import (
	"assistec_backend/internal/appointments/handler"
	"assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/appointments/service"
	"assistec_backend/internal/events"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/internal/numbering"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the appointments domain module.
type Module struct {
	handler    *handler.Handler
	Service    *service.Service
	Repository *repository.Repository
}

// NewModule creates a new appointments module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	numbers := numbering.NewGenerator(repo, numbering.KindPreSchedule, log)
	svc := service.New(repo, numbers, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		Service:    svc,
		Repository: repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "appointments"
}

// RegisterRoutes registers the module's routes under /api/v1/agendamentos.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	agendamentos := ctx.Protected.Group("/agendamentos")
	m.handler.RegisterRoutes(agendamentos)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
