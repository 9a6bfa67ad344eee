package handlers

import (
	"net/http"

	"github.com/Tzuyuchae/QuickThoughts/pkg/api"
)

// Health reports liveness and whether the model provider can take requests.
func Health(environment string, aiAvailable func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ai := "unavailable"
		if aiAvailable != nil && aiAvailable() {
			ai = "available"
		}
		api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok", Environment: environment, AI: ai})
	}
}
