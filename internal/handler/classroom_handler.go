package handler

import (
	"encoding/json"
	"net/http"

	"enrollment-api/internal/middleware"
	"enrollment-api/internal/model"
	"enrollment-api/internal/service"
	"enrollment-api/pkg/apierror"
)

type ClassroomHandler struct {
	service *service.ClassroomService
}

func NewClassroomHandler(service *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{service: service}
}

func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	defer r.Body.Close()

	var payload model.CreateClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	room, err := h.service.Create(r.Context(), info.UID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, room, nil)
}

func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	rooms, total, err := h.service.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rooms, pageMeta(page, total))
}

func (h *ClassroomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "classroomID")
	if err != nil {
		writeError(w, err)
		return
	}

	room, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, room, nil)
}

func (h *ClassroomHandler) Update(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "classroomID")
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.UpdateClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, errInvalidBody())
		return
	}

	room, err := h.service.Update(r.Context(), info.UID, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, room, nil)
}

func (h *ClassroomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(r, "classroomID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), info.UID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
