package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/cache"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/pkg/utils"
)

// ProductHandler is the back-office side of the catalog. Every write
// invalidates the cached storefront product lists.
type ProductHandler struct {
	Products *repositories.ProductRepository
}

func NewProductHandler(products *repositories.ProductRepository) *ProductHandler {
	return &ProductHandler{Products: products}
}

// Create adds a product with its initial price lots
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.Products.Create(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusCreated, product)
}

// Get returns a product with its active lots (admin view, unfiltered)
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.Products.GetWithLots(r.Context(), h.Products.DB, id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// Update edits product fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req models.UpdateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Products.Update(r.Context(), id, &req); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())

	product, err := h.Products.GetWithLots(r.Context(), h.Products.DB, id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// AddLot appends a price lot to a product
func (h *ProductHandler) AddLot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req models.CreateLotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lot, err := h.Products.AddLot(r.Context(), id, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusCreated, lot)
}

// DeactivateLot retires a lot; historical orders keep referencing it
func (h *ProductHandler) DeactivateLot(w http.ResponseWriter, r *http.Request) {
	lotID, err := strconv.ParseInt(mux.Vars(r)["lotId"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid lot id")
		return
	}

	if err := h.Products.DeactivateLot(r.Context(), lotID); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusOK, map[string]bool{"active": false})
}
