package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/cache"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/pkg/utils"
)

type CategoryHandler struct {
	Categories *repositories.CategoryRepository
}

func NewCategoryHandler(categories *repositories.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.Categories.Create(r.Context(), req.Name)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req setActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Categories.SetActive(r.Context(), id, req.Active); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}
