package handler

import (
	"encoding/json"
	"net/http"

	"enrollment-api/internal/middleware"
	"enrollment-api/internal/model"
	"enrollment-api/internal/service"
	"enrollment-api/pkg/apierror"
)

type ParentHandler struct {
	service       *service.ParentService
	maxUploadSize int64
}

func NewParentHandler(service *service.ParentService, maxUploadSize int64) *ParentHandler {
	return &ParentHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *ParentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.GetMe(r.Context(), info.UID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *ParentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	defer r.Body.Close()

	var payload model.UpdateParentProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), info.UID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, nil)
}

func (h *ParentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	children, err := h.service.ListChildren(r.Context(), info.UID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, children, nil)
}

func (h *ParentHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	defer r.Body.Close()

	var payload model.CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	child, err := h.service.CreateChild(r.Context(), info.UID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, child, nil)
}

func (h *ParentHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	childID, err := pathID(r, "childID")
	if err != nil {
		writeError(w, err)
		return
	}

	child, err := h.service.GetChild(r.Context(), info.UID, childID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, child, nil)
}

func (h *ParentHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	childID, err := pathID(r, "childID")
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.UpdateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	child, err := h.service.UpdateChild(r.Context(), info.UID, childID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, child, nil)
}

func (h *ParentHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	childID, err := pathID(r, "childID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteChild(r.Context(), info.UID, childID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

// UploadChildDocument accepts a multipart form with a single "file" part.
// The document kind comes from the URL.
func (h *ParentHandler) UploadChildDocument(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	childID, err := pathID(r, "childID")
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, apierror.Validation("file exceeds the upload size limit", "file"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.Validation("multipart field 'file' is required", "file"))
		return
	}
	defer file.Close()

	kind := r.URL.Query().Get("kind")
	child, err := h.service.UploadChildDocument(
		r.Context(), info.UID, childID, kind,
		file, header.Size, header.Header.Get("Content-Type"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, child, nil)
}

func (h *ParentHandler) ChildDocumentURL(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	childID, err := pathID(r, "childID")
	if err != nil {
		writeError(w, err)
		return
	}

	url, err := h.service.ChildDocumentURL(r.Context(), info.UID, childID, r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"url": url}, nil)
}
