package handler

import (
	"net/http"

	"assistec_backend/internal/routing/repository"
	"assistec_backend/internal/routing/service"
	"assistec_backend/internal/routing/transport"
	"assistec_backend/platform/httpkit"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for route application.
type Handler struct {
	svc         *service.Service
	technicians *repository.TechnicianRepository
	val         *validator.Validator
	log         *logger.Logger
}

// New creates a new routing handler.
func New(svc *service.Service, technicians *repository.TechnicianRepository, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, technicians: technicians, val: val, log: log}
}

// RegisterRoutes registers the routing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/aplicar", h.Apply)
	rg.POST("/cancelar", h.Cancel)
	rg.GET("/tecnicos", h.ListTechnicians)
}

// Apply handles POST /api/v1/rotas/aplicar
func (h *Handler) Apply(c *gin.Context) {
	var req transport.ApplyRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Apply(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	operator := httpkit.GetIdentity(c)
	h.log.Info("route applied",
		"operator", operator.UserID(),
		"technician", req.TechnicianID,
		"date", req.Date,
		"confirmed", result.ConfirmedCount,
		"failed", result.FailedCount,
	)

	// partial failure is still a 200: callers inspect the counts
	httpkit.OK(c, result)
}

// Cancel handles POST /api/v1/rotas/cancelar
func (h *Handler) Cancel(c *gin.Context) {
	var req transport.CancelRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	operator := httpkit.GetIdentity(c)
	h.log.Info("route cancelled", "operator", operator.UserID(), "count", len(req.AppointmentIDs))

	httpkit.OK(c, result)
}

// ListTechnicians handles GET /api/v1/rotas/tecnicos
func (h *Handler) ListTechnicians(c *gin.Context) {
	technicians, err := h.technicians.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"technicians": technicians})
}
