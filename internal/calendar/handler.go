package calendar

import (
	"net/http"
	"strconv"
	"time"

	"assistec_backend/platform/httpkit"
	"assistec_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the calendar views.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new calendar handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the calendar routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/slots", h.DaySlots)
	rg.GET("/slots/next", h.NextAvailable)
	rg.GET("/events", h.Events)
	rg.POST("/availability", h.CheckAvailability)
}

type dayQuery struct {
	TechnicianID string `form:"technicianId" validate:"required,uuid"`
	Date         string `form:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) parseDayQuery(c *gin.Context) (uuid.UUID, time.Time, bool) {
	var q dayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return uuid.Nil, time.Time{}, false
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return uuid.Nil, time.Time{}, false
	}

	technicianID, err := uuid.Parse(q.TechnicianID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid technician id", nil)
		return uuid.Nil, time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "date must be in YYYY-MM-DD format", nil)
		return uuid.Nil, time.Time{}, false
	}

	return technicianID, day, true
}

// DaySlots handles GET /api/v1/calendario/slots
func (h *Handler) DaySlots(c *gin.Context) {
	technicianID, day, ok := h.parseDayQuery(c)
	if !ok {
		return
	}

	slots, err := h.svc.DaySlots(c.Request.Context(), technicianID, day)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"slots": slots})
}

// NextAvailable handles GET /api/v1/calendario/slots/next
func (h *Handler) NextAvailable(c *gin.Context) {
	technicianID, day, ok := h.parseDayQuery(c)
	if !ok {
		return
	}

	count := 3
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			httpkit.Error(c, http.StatusBadRequest, "count must be between 1 and 20", nil)
			return
		}
		count = parsed
	}

	slots, err := h.svc.NextAvailable(c.Request.Context(), technicianID, day, count)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"slots": slots})
}

// Events handles GET /api/v1/calendario/events
func (h *Handler) Events(c *gin.Context) {
	technicianID, day, ok := h.parseDayQuery(c)
	if !ok {
		return
	}

	events, err := h.svc.EventsForDay(c.Request.Context(), technicianID, day)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"events": events})
}

type availabilityRequest struct {
	TechnicianID uuid.UUID     `json:"technicianId" validate:"required"`
	Date         string        `json:"date" validate:"required,datetime=2006-01-02"`
	Requests     []HourRequest `json:"requests" validate:"required,min=1,dive"`
}

// CheckAvailability handles POST /api/v1/calendario/availability
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "date must be in YYYY-MM-DD format", nil)
		return
	}

	result, err := h.svc.CheckAvailability(c.Request.Context(), req.TechnicianID, day, req.Requests)
	if httpkit.HandleError(c, err) {
		return
	}

	// offer replacements when anything conflicted
	if !result.Available {
		alternatives, altErr := h.svc.Alternatives(c.Request.Context(), req.TechnicianID, day, result.ConflictingHours, 3)
		if altErr == nil {
			httpkit.OK(c, gin.H{"result": result, "alternatives": alternatives})
			return
		}
	}

	httpkit.OK(c, gin.H{"result": result})
}
