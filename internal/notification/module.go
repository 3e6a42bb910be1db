package notification

import (
	"assistec_backend/internal/events"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/internal/notification/repository"
	"assistec_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the notification domain module.
type Module struct {
	handler *Handler
	Service *Service
}

// NewModule creates a new notification module and subscribes it to the
// event bus.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	outbox := repository.NewOutboxRepository(pool)
	svc := NewService(repo, outbox, LogSender{Log: log}, log)
	if eventBus != nil {
		svc.RegisterEventHandlers(eventBus)
	}

	return &Module{
		handler: NewHandler(svc),
		Service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes registers the module's routes under /api/v1/notificacoes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notificacoes := ctx.Protected.Group("/notificacoes")
	m.handler.RegisterRoutes(notificacoes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
