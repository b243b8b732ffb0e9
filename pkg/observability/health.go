package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

// Health probe states.
const (
	HealthOK          = "ok"
	HealthUnavailable = "unavailable"
)

// ReadyCheck reports whether a subsystem can serve; nil means ready.
type ReadyCheck func(ctx context.Context) error

// HealthStatus is the JSON body of /healthz and /readyz.
type HealthStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HealthHandler answers liveness probes with {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		writeHealth(responseWriter, http.StatusOK, HealthStatus{Status: HealthOK})
	})
}

// ReadyHandler runs checks in order and answers 503 with the first failure.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		for _, check := range checks {
			checkErr := check(request.Context())
			if checkErr != nil {
				writeHealth(responseWriter, http.StatusServiceUnavailable, HealthStatus{
					Status: HealthUnavailable,
					Reason: checkErr.Error(),
				})

				return
			}
		}

		writeHealth(responseWriter, http.StatusOK, HealthStatus{Status: HealthOK})
	})
}

func writeHealth(responseWriter http.ResponseWriter, code int, status HealthStatus) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(code)

	// The status line is already sent; a failed body write has no recovery.
	_ = json.NewEncoder(responseWriter).Encode(status)
}
