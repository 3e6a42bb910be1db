// Package orders provides the service order domain module, including the
// appointment-to-order lifecycle converter.
package orders

import (
	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/clients"
	"assistec_backend/internal/events"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/internal/numbering"
	"assistec_backend/internal/orders/handler"
	"assistec_backend/internal/orders/repository"
	"assistec_backend/internal/orders/service"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the service orders domain module.
type Module struct {
	handler    *handler.Handler
	Service    *service.Service
	Converter  *service.Converter
	Repository *repository.Repository
}

// NewModule creates a new orders module with all dependencies wired. The
// appointments repository and the clients service come from their own
// modules so conversion reads the same stores.
func NewModule(pool *pgxpool.Pool, appointments *apptrepo.Repository, clientSvc *clients.Service, val *validator.Validator, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	numbers := numbering.NewGenerator(repo, numbering.KindServiceOrder, log)
	svc := service.New(repo, numbers, log)
	converter := service.NewConverter(repo, appointments, clientSvc, numbers, eventBus, log)
	h := handler.New(svc, converter, val)

	return &Module{
		handler:    h,
		Service:    svc,
		Converter:  converter,
		Repository: repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes registers the module's routes under /api/v1/ordens-servico.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ordensServico := ctx.Protected.Group("/ordens-servico")
	m.handler.RegisterRoutes(ordensServico)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
