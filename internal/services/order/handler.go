package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smart-menu/internal/logger"
	"smart-menu/internal/models"
	"smart-menu/internal/services/order/validation"
	"smart-menu/internal/web"
)

const requestTimeout = 30 * time.Second

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the order routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("PUT /orders/{id}", h.UpdateOrder)
	mux.HandleFunc("PATCH /orders/{id}/status", h.UpdateStatus)
	mux.HandleFunc("DELETE /orders/{id}", h.DeleteOrder)
	mux.HandleFunc("POST /functions/create-payment", h.CreatePayment)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	placement, ok := h.place(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusCreated, placement.Order, web.RequestID(r.Context()))
}

// CreatePayment handles POST /functions/create-payment
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	placement, ok := h.place(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, models.CheckoutResponse{
		CheckoutURL: placement.CheckoutURL,
		Token:       placement.Order.Token,
		OrderID:     placement.Order.ID,
	}, web.RequestID(r.Context()))
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) (*Placement, bool) {
	requestID := web.RequestID(r.Context())

	var req models.OrderRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		web.WriteErrorResponse(w, http.StatusBadRequest, web.ErrorResponse{Error: err.Error(), Kind: string(validation.KindInvalidInput)}, requestID)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	placement, err := h.service.CreateOrder(ctx, &req, requestID)
	if err != nil {
		h.fail(w, "order_creation_failed", "Failed to create order", requestID, err, map[string]interface{}{
			"table_number": req.TableNumber,
			"items_count":  len(req.Items),
		})
		return nil, false
	}
	return placement, true
}

// UpdateOrder handles PUT /orders/{id}
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	var req models.OrderRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteErrorResponse(w, http.StatusBadRequest, web.ErrorResponse{Error: err.Error(), Kind: string(validation.KindInvalidInput)}, requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := h.service.UpdateOrder(ctx, id, &req, requestID)
	if err != nil {
		h.fail(w, "order_update_failed", "Failed to update order", requestID, err, map[string]interface{}{"order_id": id})
		return
	}
	h.writeJSON(w, http.StatusOK, order, requestID)
}

// UpdateStatus handles PATCH /orders/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	var req models.StatusUpdateRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	changedBy := r.Header.Get("X-Changed-By")
	if changedBy == "" {
		changedBy = "admin"
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := h.service.UpdateStatus(ctx, id, &req, changedBy, requestID)
	if err != nil {
		h.fail(w, "order_status_update_failed", "Failed to update order status", requestID, err, map[string]interface{}{
			"order_id": id,
			"status":   req.Status,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, order, requestID)
}

// DeleteOrder handles DELETE /orders/{id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.DeleteOrder(ctx, id, requestID); err != nil {
		h.fail(w, "order_delete_failed", "Failed to delete order", requestID, err, map[string]interface{}{"order_id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
		"healthy":   healthy,
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, statusCode, response, web.RequestID(r.Context()))
}

// ErrorResponse maps a service error to a status code and response body.
// Unclassified errors become a generic 500 so dependency details stay in the logs.
func ErrorResponse(err error) (int, web.ErrorResponse) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, web.ErrorResponse{Error: verr.Reason, Kind: string(verr.Kind), Details: verr.Issues}
	case errors.Is(err, ErrTokenConflict):
		return http.StatusConflict, web.ErrorResponse{Error: "Order token conflict, please retry", Kind: "token_conflict", Retryable: true}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, web.ErrorResponse{Error: "Order not found", Kind: "not_found"}
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, web.ErrorResponse{Error: err.Error(), Kind: "invalid_transition"}
	case errors.Is(err, ErrNotEditable):
		return http.StatusConflict, web.ErrorResponse{Error: err.Error(), Kind: "not_editable"}
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest, web.ErrorResponse{Error: err.Error(), Kind: string(validation.KindInvalidInput)}
	default:
		return http.StatusInternalServerError, web.ErrorResponse{Error: "Internal server error"}
	}
}

func (h *Handler) fail(w http.ResponseWriter, action, message, requestID string, err error, fields map[string]interface{}) {
	statusCode, resp := ErrorResponse(err)
	if statusCode >= http.StatusInternalServerError {
		h.logger.Error(action, message, requestID, err, fields)
	} else {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["reason"] = err.Error()
		h.logger.Warn(action, message, requestID, fields)
	}
	web.WriteErrorResponse(w, statusCode, resp, requestID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}, requestID string) {
	if err := web.WriteJSON(w, statusCode, v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
