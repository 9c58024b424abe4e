package handlers

import "net/http"

// Health reports liveness and the engine currently serving translations.
func Health(engine func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, map[string]string{
			"status": "ok",
			"engine": engine(),
		}, http.StatusOK)
	}
}
