package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
}

func NewCheckoutHandler(checkout *services.CheckoutService, catalog *services.CatalogService, orders *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkout, Catalog: catalog, Orders: orders}
}

// Preview runs a non-binding allocation for a cart quantity change. A
// 422 here means the quantity does not fit right now; checkout repeats
// the computation authoritatively either way.
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	var req models.CartPreviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.Catalog.Preview(r.Context(), agencyID, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	if !result.CanAdd {
		utils.Error(w, http.StatusUnprocessableEntity, "requested quantity is not available")
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// Confirm turns the cart into an order
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	var req models.CheckoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.Checkout.Checkout(r.Context(), agencyID, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

// ListMyOrders returns the logged-in agency's orders
func (h *CheckoutHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())
	limit, offset := pagination(r)

	orders, err := h.Orders.ListByAgency(r.Context(), agencyID, limit, offset)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

// GetMyOrder returns one of the agency's orders with items
func (h *CheckoutHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())
	orderID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Orders.GetForAgency(r.Context(), agencyID, orderID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}
