package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/models"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

// OrderHandler is the back-office view of orders
type OrderHandler struct {
	Orders   *services.OrderService
	Checkout *services.CheckoutService
}

func NewOrderHandler(orders *services.OrderService, checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{Orders: orders, Checkout: checkout}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	orders, err := h.Orders.List(r.Context(), limit, offset)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// UpdateStatus moves an order through fulfillment (SHIPPED, DELIVERED)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

// Cancel voids an order and credits its points back
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.Checkout.Cancel(r.Context(), id); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": string(models.OrderStatusCancelled)})
}
