// Package handlers provides the HTTP handlers of the QuickThoughts API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	sharedContext "github.com/Tzuyuchae/QuickThoughts/internal/context"
	appErrors "github.com/Tzuyuchae/QuickThoughts/internal/errors"
	"github.com/Tzuyuchae/QuickThoughts/internal/observability"
	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

const maxJSONBody = 1 << 20

var validate = validator.New()

// getUserID safely extracts userID from context
func getUserID(r *http.Request) (string, bool) {
	return sharedContext.GetUserIDFromContext(r.Context())
}

// decodeJSON reads and validates a JSON request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return appErrors.NewValidation("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return appErrors.NewValidation("Invalid request: " + strings.Join(fields, ", "))
		}
		return appErrors.NewValidation("Invalid request")
	}
	return nil
}

// handleServiceError logs the error and converts it to an HTTP response.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	log := observability.LoggerFromContext(r.Context(), logger)
	status := appErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	api.ErrorFrom(w, err)
}
