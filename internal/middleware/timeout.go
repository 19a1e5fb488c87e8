package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

// Timeout caps request handling time. The cutoff response uses the same
// envelope as every other error so clients never special-case it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apierror.CodeTimeout,
			Message: "the request took too long to complete",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
