// Package httputil provides the uniform response envelope, request parsing
// helpers and the shared HTTP middleware chain.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/vidora/vidora/pkg/apperror"
)

// Response is the uniform success envelope. Success is always
// statusCode < 400.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

// WriteEnvelope writes a success envelope with the given status code.
func WriteEnvelope(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < http.StatusBadRequest,
	})
}

// WriteError normalizes err to an *apperror.Error and writes the error
// envelope. Unknown errors surface as 500 with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)

	errs := appErr.Errors
	if errs == nil {
		errs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		StatusCode: appErr.StatusCode,
		Data:       nil,
		Message:    appErr.Message,
		Success:    false,
		Errors:     errs,
	})
}

// WriteUnauthorized writes a 401 error envelope with the given message.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, apperror.Unauthorized(message))
}
