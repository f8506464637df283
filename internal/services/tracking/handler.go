package tracking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smart-menu/internal/logger"
	"smart-menu/internal/web"
)

const lookupTimeout = 10 * time.Second

// Handler handles HTTP requests for the tracking service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the lookup routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders", h.ListOrders)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /orders/token/{token}", h.GetOrderByToken)
	mux.HandleFunc("GET /orders/token/{token}/status", h.GetOrderStatus)
	mux.HandleFunc("GET /orders/token/{token}/history", h.GetOrderHistory)
	mux.HandleFunc("POST /functions/get-order", h.GetOrderFunction)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	orders, err := h.service.ListOrders(ctx, requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, orders, requestID)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	order, err := h.service.GetOrder(ctx, id, requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, order, requestID)
}

// GetOrderByToken handles GET /orders/token/{token}
func (h *Handler) GetOrderByToken(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	h.logger.Debug("request_received", "Get order by token request", requestID, map[string]interface{}{
		"token": r.PathValue("token"),
	})

	order, err := h.service.GetOrderByToken(ctx, r.PathValue("token"), requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, order, requestID)
}

// GetOrderStatus handles GET /orders/token/{token}/status
func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	status, err := h.service.GetOrderStatus(ctx, r.PathValue("token"), requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, status, requestID)
}

// GetOrderHistory handles GET /orders/token/{token}/history
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	history, err := h.service.GetOrderHistory(ctx, r.PathValue("token"), requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, history, requestID)
}

type getOrderRequest struct {
	Token string `json:"token"`
}

// GetOrderFunction handles POST /functions/get-order
func (h *Handler) GetOrderFunction(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	var req getOrderRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
	defer cancel()

	order, err := h.service.LookupToken(ctx, req.Token, requestID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	h.writeJSON(w, map[string]interface{}{"order": order}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, ErrNotFound):
		web.WriteErrorResponse(w, http.StatusNotFound, web.ErrorResponse{Error: "Order not found", Kind: "not_found"}, requestID)
	case errors.Is(err, ErrInvalidToken):
		web.WriteErrorResponse(w, http.StatusBadRequest, web.ErrorResponse{Error: err.Error(), Kind: "invalid_input"}, requestID)
	default:
		web.WriteError(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}, requestID string) {
	if err := web.WriteJSON(w, http.StatusOK, v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
