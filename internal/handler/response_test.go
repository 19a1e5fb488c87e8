package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollment-api/internal/identity"
	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteErrorPassesThroughAPIErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apierror.Validation("grade is required", "grade"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apierror.CodeValidation, resp.Error.Code)
	assert.Equal(t, "grade is required", resp.Error.Message)
	assert.Equal(t, "grade", resp.Error.Details)
}

func TestWriteErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"user not found", model.ErrUserNotFound, http.StatusNotFound, apierror.CodeNotFound},
		{"entity not found", model.ErrNotFound, http.StatusNotFound, apierror.CodeNotFound},
		{"bad credentials", identity.ErrInvalidCredentials, http.StatusUnauthorized, apierror.CodeUnauthorized},
		{"expired token", identity.ErrInvalidToken, http.StatusUnauthorized, apierror.CodeUnauthorized},
		{"email exists", identity.ErrEmailExists, http.StatusConflict, apierror.CodeAlreadyExists},
		{"weak password", identity.ErrWeakPassword, http.StatusBadRequest, apierror.CodeValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestWriteErrorHidesUnclassifiedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apierror.CodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "pq:")
	assert.Empty(t, resp.Error.Details)
}

func TestWriteSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, []string{"a"}, &model.Meta{Page: 2, PageSize: 10, Total: 31, TotalPages: 4})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, int64(31), resp.Meta.Total)
}

func TestPageFromQueryDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	page := pageFromQuery(req)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Empty(t, page.OrderBy)
	assert.False(t, page.Ascending)
}

func TestPageFromQueryParsesValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?page=3&page_size=50&order_by=full_name&order=asc", nil)
	page := pageFromQuery(req)

	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, "full_name", page.OrderBy)
	assert.True(t, page.Ascending)
}

func TestPageMetaRoundsUp(t *testing.T) {
	meta := pageMeta(model.PageRequest{Page: 1, PageSize: 10}, 31)
	assert.Equal(t, 4, meta.TotalPages)

	meta = pageMeta(model.PageRequest{Page: 1, PageSize: 10}, 30)
	assert.Equal(t, 3, meta.TotalPages)

	meta = pageMeta(model.PageRequest{Page: 1, PageSize: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
