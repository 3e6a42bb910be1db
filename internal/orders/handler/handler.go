package handler

import (
	"net/http"

	"assistec_backend/internal/orders/repository"
	"assistec_backend/internal/orders/service"
	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/httpkit"
	"assistec_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid service order id"
	msgInvalidApptID    = "invalid appointment id"
)

// Handler handles HTTP requests for service orders.
type Handler struct {
	svc       *service.Service
	converter *service.Converter
	val       *validator.Validator
}

// New creates a new service orders handler.
func New(svc *service.Service, converter *service.Converter, val *validator.Validator) *Handler {
	return &Handler{svc: svc, converter: converter, val: val}
}

// RegisterRoutes registers the service order routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.PATCH("/:id/final-cost", h.SetFinalCost)
	rg.POST("/convert/:agendamentoId", h.Convert)
	rg.POST("/convert-multiple/:agendamentoId", h.ConvertMultiple)
	rg.GET("/suggest-grouping/:agendamentoId", h.SuggestGrouping)
}

func parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/v1/ordens-servico
func (h *Handler) List(c *gin.Context) {
	var req transport.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	resp := transport.OrderListResponse{
		Items:    make([]transport.OrderResponse, 0, len(items)),
		Total:    total,
		Page:     req.Page,
		PageSize: pageSize,
	}
	if total > 0 {
		resp.TotalPages = (total + pageSize - 1) / pageSize
	}
	for i := range items {
		resp.Items = append(resp.Items, items[i].ToResponse())
	}

	httpkit.OK(c, resp)
}

// Create handles POST /api/v1/ordens-servico
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, order.ToResponse())
}

// GetByID handles GET /api/v1/ordens-servico/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}

	order, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, order.ToResponse())
}

// UpdateStatus handles PATCH /api/v1/ordens-servico/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, order.ToResponse())
}

// SetFinalCost handles PATCH /api/v1/ordens-servico/:id/final-cost
func (h *Handler) SetFinalCost(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}

	var req transport.UpdateFinalCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	order, err := h.svc.SetFinalCost(c.Request.Context(), id, req.FinalCost)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, order.ToResponse())
}

// Convert handles POST /api/v1/ordens-servico/convert/:agendamentoId
func (h *Handler) Convert(c *gin.Context) {
	agendamentoID, ok := parseID(c, "agendamentoId", msgInvalidApptID)
	if !ok {
		return
	}

	var req transport.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.converter.CreateFromAgendamento(c.Request.Context(), agendamentoID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, conversionResponse(agendamentoID, result.Orders))
}

// ConvertMultiple handles POST /api/v1/ordens-servico/convert-multiple/:agendamentoId
func (h *Handler) ConvertMultiple(c *gin.Context) {
	agendamentoID, ok := parseID(c, "agendamentoId", msgInvalidApptID)
	if !ok {
		return
	}

	var req transport.MultiConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.converter.CreateMultipleFromAgendamento(c.Request.Context(), agendamentoID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, conversionResponse(agendamentoID, result.Orders))
}

// SuggestGrouping handles GET /api/v1/ordens-servico/suggest-grouping/:agendamentoId
func (h *Handler) SuggestGrouping(c *gin.Context) {
	agendamentoID, ok := parseID(c, "agendamentoId", msgInvalidApptID)
	if !ok {
		return
	}

	groups, err := h.converter.SuggestGrouping(c.Request.Context(), agendamentoID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"groups": groups})
}

func conversionResponse(agendamentoID uuid.UUID, orders []*repository.ServiceOrder) transport.ConversionResponse {
	resp := transport.ConversionResponse{AppointmentID: agendamentoID}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, o.ToResponse())
	}
	return resp
}
