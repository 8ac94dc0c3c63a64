package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

// CatalogHandler serves the storefront read side. All routes run behind
// OptionalAgency: anonymous visitors browse with the no-history view,
// logged-in agencies see only what they can still buy.
type CatalogHandler struct {
	Service    *services.CatalogService
	Categories *repositories.CategoryRepository
}

func NewCatalogHandler(s *services.CatalogService, categories *repositories.CategoryRepository) *CatalogHandler {
	return &CatalogHandler{Service: s, Categories: categories}
}

// ListProducts returns eligible products, optionally by ?category=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category"), 10, 64)

	products, err := h.Service.ListEligibleProducts(r.Context(), agencyID, categoryID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// GetProduct returns one product's storefront view
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())
	productID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.Service.GetProduct(r.Context(), agencyID, productID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// ListBanners returns hero banners whose product this agency can buy
func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	banners, err := h.Service.ListEligibleBanners(r.Context(), agencyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, banners)
}

// ListCategories returns active categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, categories)
}
