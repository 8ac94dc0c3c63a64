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

type BannerHandler struct {
	Banners *repositories.BannerRepository
}

func NewBannerHandler(banners *repositories.BannerRepository) *BannerHandler {
	return &BannerHandler{Banners: banners}
}

func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBannerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	banner, err := h.Banners.Create(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusCreated, banner)
}

func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) {
	banners, err := h.Banners.ListActive(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, banners)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *BannerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	var req setActiveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Banners.SetActive(r.Context(), id, req.Active); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	utils.JSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	if err := h.Banners.Delete(r.Context(), id); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateCatalog(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
