package handler

import (
	"encoding/json"
	"net/http"

	"enrollment-api/internal/middleware"
	"enrollment-api/internal/model"
	"enrollment-api/internal/service"
	"enrollment-api/pkg/apierror"
)

// AdminHandler covers account administration: role changes, activation
// toggles, and fixture seeding.
type AdminHandler struct {
	auth       *service.AuthService
	seed       func() error
	production bool
}

func NewAdminHandler(auth *service.AuthService, seed func() error, production bool) *AdminHandler {
	return &AdminHandler{auth: auth, seed: seed, production: production}
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	profile, err := h.auth.UpdateRole(r.Context(), info.UID, userID, payload.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, nil)
}

func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.SetActive(r.Context(), info.UID, userID, active); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"is_active": active}, nil)
}

// Seed loads the development fixture data set. Seed accounts carry a local
// password bypass, so this is refused outright in production.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.production {
		writeError(w, apierror.Forbidden("seeding is disabled in production"))
		return
	}

	if err := h.seed(); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"seeded": true}, nil)
}
