// Package api provides standardized helper functions and payload types for the HTTP API.
package api

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// ErrorFrom maps an application error to its status code and public message.
func ErrorFrom(w http.ResponseWriter, err error) {
	Error(w, appErrors.HTTPStatus(err), appErrors.PublicMessage(err))
}
