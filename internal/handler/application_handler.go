package handler

import (
	"encoding/json"
	"net/http"

	"enrollment-api/internal/middleware"
	"enrollment-api/internal/model"
	"enrollment-api/internal/service"
	"enrollment-api/pkg/apierror"
)

var listableStatuses = map[model.ApplicationStatus]bool{
	model.ApplicationPaymentPending:   true,
	model.ApplicationPaymentCompleted: true,
	model.ApplicationApproved:         true,
	model.ApplicationRejected:         true,
	model.ApplicationCancelled:        true,
}

type ApplicationHandler struct {
	service *service.ApplicationService
}

func NewApplicationHandler(service *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	defer r.Body.Close()

	var payload model.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	application, err := h.service.Submit(r.Context(), info.UID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, application, nil)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	applications, err := h.service.ListMine(r.Context(), info.UID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, applications, nil)
}

// List is the staff view across all submitters, optionally filtered by the
// "status" query parameter.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	var status model.ApplicationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = model.ApplicationStatus(raw)
		if !listableStatuses[status] {
			writeError(w, apierror.Validation("unknown application status", "status"))
			return
		}
	}

	applications, total, err := h.service.List(r.Context(), page, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, applications, pageMeta(page, total))
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	application, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, application, nil)
}

// GetMine resolves one of the caller's own applications.
func (h *ApplicationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	application, err := h.service.GetOwned(r.Context(), info.UID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, application, nil)
}

func (h *ApplicationHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), info.UID, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, payment, nil)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	application, err := h.service.Approve(r.Context(), info.UID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, application, nil)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.RejectApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	application, err := h.service.Reject(r.Context(), info.UID, id, payload.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, application, nil)
}

func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "applicationID")
	if err != nil {
		writeError(w, err)
		return
	}

	application, err := h.service.Cancel(r.Context(), info.UID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, application, nil)
}
