package middleware

import (
	"net/http"
	"strings"

	"github.com/commutewise/commutewise/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that write another type (problem+json) set it before writing.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects bodied requests whose Content-Type is not JSON with
// a 415 problem response. Requests without a declared type pass through;
// the decoder rejects anything unparseable anyway.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				problem := models.NewUnsupportedMediaType(
					GetRequestID(r.Context()),
					"request bodies must be application/json",
				)
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
