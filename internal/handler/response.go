package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"enrollment-api/internal/identity"
	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    apierror.CodeInternal,
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "Resource not found"
	} else if errors.Is(err, identity.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = apierror.CodeUnauthorized
		body.Message = "Invalid credentials"
	} else if errors.Is(err, identity.ErrInvalidToken) {
		status = http.StatusUnauthorized
		body.Code = apierror.CodeUnauthorized
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, identity.ErrEmailExists) {
		status = http.StatusConflict
		body.Code = apierror.CodeAlreadyExists
		body.Message = "Email already registered"
	} else if errors.Is(err, identity.ErrWeakPassword) {
		status = http.StatusBadRequest
		body.Code = apierror.CodeValidation
		body.Message = "Password does not meet requirements"
	} else if errors.Is(err, identity.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = apierror.CodeValidation
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func errInvalidBody() *apierror.APIError {
	return apierror.Validation("invalid JSON body", "")
}

// pathID parses the named chi URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Validation("invalid identifier in path", name)
	}
	return id, nil
}

// pageFromQuery reads pagination hints from the query string. Bounds are
// enforced again at the repository layer.
func pageFromQuery(r *http.Request) model.PageRequest {
	page := model.PageRequest{Page: 1, PageSize: 20}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Page = v
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.PageSize = v
		}
	}
	if raw := r.URL.Query().Get("order_by"); raw != "" {
		page.OrderBy = raw
	}
	page.Ascending = r.URL.Query().Get("order") == "asc"

	return page
}

func pageMeta(page model.PageRequest, total int64) *model.Meta {
	totalPages := 0
	if page.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(page.PageSize)))
	}
	return &model.Meta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
