package observability

import (
	"encoding/json"
	"net/http"
)

// HealthHandler returns the liveness handler for /healthz. It always answers
// 200 with {"status":"ok"} and the service version.
func HealthHandler(version string) http.Handler {
	body, err := json.Marshal(map[string]string{"status": "ok", "version": version})
	if err != nil {
		body = []byte(`{"status":"ok"}`)
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)

		_, writeErr := rw.Write(body)
		if writeErr != nil {
			return
		}
	})
}
