package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loyalty-backend/internal/auth"
	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/models"
	"loyalty-backend/internal/services"
	"loyalty-backend/pkg/utils"
)

// AgencyAuthResponse is returned on a successful storefront login
type AgencyAuthResponse struct {
	Token  string         `json:"token"`
	Agency *models.Agency `json:"agency"`
}

type AgencyHandler struct {
	Service *services.AgencyService
	JWT     *auth.JWTManager
}

func NewAgencyHandler(s *services.AgencyService, jwt *auth.JWTManager) *AgencyHandler {
	return &AgencyHandler{Service: s, JWT: jwt}
}

// Register creates an inactive agency. No token is issued: the agency
// cannot log in until an admin activates it, which in turn requires a
// positive points balance.
func (h *AgencyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAgencyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	agency, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, agency)
}

// Login authenticates an agency by CNPJ and password
func (h *AgencyHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AgencyLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	agency, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	if !agency.Active {
		utils.Error(w, http.StatusForbidden, "agency is not active yet")
		return
	}

	token, err := h.JWT.GenerateAgencyToken(agency)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, AgencyAuthResponse{Token: token, Agency: agency})
}

// Profile returns the logged-in agency with its current balance
func (h *AgencyHandler) Profile(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	agency, err := h.Service.Get(r.Context(), agencyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, agency)
}

// UpdateProfile edits the logged-in agency's contact fields
func (h *AgencyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	agencyID, _ := middleware.GetAgencyIDFromContext(r.Context())

	var req models.UpdateAgencyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Service.Update(r.Context(), agencyID, &req); err != nil {
		utils.ServiceError(w, err)
		return
	}

	agency, err := h.Service.Get(r.Context(), agencyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, agency)
}

// List returns agencies with balances (back office)
func (h *AgencyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	agencies, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, agencies)
}

// Get returns one agency with its balance (back office)
func (h *AgencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid agency id")
		return
	}

	agency, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, agency)
}

// Activate turns an agency on; rejected while its balance is zero
func (h *AgencyHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate turns an agency off
func (h *AgencyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AgencyHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid agency id")
		return
	}

	if err := h.Service.SetActive(r.Context(), id, active); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"active": active})
}

// pagination reads limit/offset query params with repo-side defaults
func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
