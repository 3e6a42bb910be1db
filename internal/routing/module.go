// Package routing applies proposed routes: batch confirmation of
// appointments against one technician's day.
package routing

import (
	"assistec_backend/internal/calendar"
	"assistec_backend/internal/events"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/internal/routing/handler"
	"assistec_backend/internal/routing/repository"
	"assistec_backend/internal/routing/service"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the routing domain module.
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new routing module. The appointment store and mirror
// come from their own modules; the notifier may be nil when the notification
// module is disabled.
func NewModule(pool *pgxpool.Pool, workday calendar.Workday, appointments service.AppointmentStore, mirror service.Mirror, notifier service.Notifier, val *validator.Validator, eventBus events.Bus, log *logger.Logger) *Module {
	technicians := repository.NewTechnicianRepository(pool)
	svc := service.New(workday, appointments, mirror, technicians, notifier, eventBus, log)
	h := handler.New(svc, technicians, val, log)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "routing"
}

// RegisterRoutes registers the module's routes under /api/v1/rotas.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rotas := ctx.Protected.Group("/rotas")
	m.handler.RegisterRoutes(rotas)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
