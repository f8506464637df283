// Package cart serves the menu and a cookie-session cart that checks out through the order service.
package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"

	"smart-menu/internal/cart"
	"smart-menu/internal/catalog"
	"smart-menu/internal/logger"
	"smart-menu/internal/models"
	"smart-menu/internal/services/order"
	"smart-menu/internal/web"
)

const checkoutTimeout = 30 * time.Second

// Checkout places an order built from a cart
type Checkout interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest, requestID string) (*order.Placement, error)
}

// Handler handles the menu and cart routes
type Handler struct {
	store    sessions.Store
	menu     *catalog.Catalog
	policy   cart.DecrementPolicy
	checkout Checkout
	logger   *logger.Logger
}

// NewHandler creates a new cart handler
func NewHandler(store sessions.Store, menu *catalog.Catalog, policy cart.DecrementPolicy, checkout Checkout, log *logger.Logger) *Handler {
	return &Handler{
		store:    store,
		menu:     menu,
		policy:   policy,
		checkout: checkout,
		logger:   log,
	}
}

// RegisterRoutes mounts the menu and cart routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu", h.GetMenu)
	mux.HandleFunc("GET /cart", h.GetCart)
	mux.HandleFunc("POST /cart/items", h.AddItem)
	mux.HandleFunc("PATCH /cart/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", h.RemoveItem)
	mux.HandleFunc("DELETE /cart", h.ClearCart)
	mux.HandleFunc("POST /cart/checkout", h.Checkout)
}

// View is the JSON representation of a cart
type View struct {
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func newView(c *cart.Cart) View {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return View{Lines: lines, Total: c.Total(), Count: c.Count()}
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	CustomerName string `json:"customerName"`
	CustomerAge  int    `json:"customerAge"`
	TableNumber  int    `json:"tableNumber"`
}

// GetMenu handles GET /menu
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.menu.Items(), h.requestID(r))
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	_, c := h.load(r)
	h.writeJSON(w, http.StatusOK, newView(c), h.requestID(r))
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req addItemRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	item, ok := h.menu.Lookup(req.ItemID)
	if !ok {
		web.WriteErrorResponse(w, http.StatusNotFound, web.ErrorResponse{Error: "Menu item not found", Kind: "invalid_item"}, requestID)
		return
	}

	session, c := h.load(r)
	c.Add(item)
	h.respond(w, r, session, c)
}

// UpdateItem handles PATCH /cart/items/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req updateItemRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	session, c := h.load(r)
	if !c.UpdateQuantity(r.PathValue("id"), req.Quantity) {
		web.WriteError(w, http.StatusNotFound, "Item not in cart", requestID)
		return
	}
	h.respond(w, r, session, c)
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, c := h.load(r)
	if !c.Remove(r.PathValue("id")) {
		web.WriteError(w, http.StatusNotFound, "Item not in cart", h.requestID(r))
		return
	}
	h.respond(w, r, session, c)
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, c := h.load(r)
	c.Clear()
	h.respond(w, r, session, c)
}

// Checkout handles POST /cart/checkout. The cart is cleared only when the order is placed.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	requestID := h.requestID(r)

	var req checkoutRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	session, c := h.load(r)

	ctx, cancel := context.WithTimeout(r.Context(), checkoutTimeout)
	defer cancel()

	placement, err := h.checkout.CreateOrder(ctx, c.Request(req.CustomerName, req.CustomerAge, req.TableNumber), requestID)
	if err != nil {
		statusCode, resp := order.ErrorResponse(err)
		if statusCode >= http.StatusInternalServerError {
			h.logger.Error("cart_checkout_failed", "Failed to check out cart", requestID, err, map[string]interface{}{
				"lines": len(c.Lines),
			})
		}
		web.WriteErrorResponse(w, statusCode, resp, requestID)
		return
	}

	c.Clear()
	if err := h.save(w, r, session, c); err != nil {
		h.logger.Error("cart_session_save_failed", "Failed to clear cart after checkout", requestID, err, map[string]interface{}{
			"token": placement.Order.Token,
		})
	}

	h.writeJSON(w, http.StatusOK, models.CheckoutResponse{
		CheckoutURL: placement.CheckoutURL,
		Token:       placement.Order.Token,
		OrderID:     placement.Order.ID,
	}, requestID)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, session *sessions.Session, c *cart.Cart) {
	requestID := h.requestID(r)
	if err := h.save(w, r, session, c); err != nil {
		h.logger.Error("cart_session_save_failed", "Failed to save cart session", requestID, err, nil)
		web.WriteError(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}
	h.writeJSON(w, http.StatusOK, newView(c), requestID)
}

func (h *Handler) requestID(r *http.Request) string {
	return web.RequestID(r.Context())
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}, requestID string) {
	if err := web.WriteJSON(w, statusCode, v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}
