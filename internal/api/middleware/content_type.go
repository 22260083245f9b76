package middleware

import (
	"mime"
	"net/http"

	"github.com/carejournal/carejournal/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that write problems or other media types set their own header first.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects write requests whose body is declared as something
// other than JSON. A missing Content-Type is let through so the handler's
// decoder can report a malformed body as a validation problem.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !carriesBody(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		declared := r.Header.Get("Content-Type")
		if declared == "" || isJSONMediaType(declared) {
			next.ServeHTTP(w, r)
			return
		}
		problem := models.NewUnsupportedMediaType(GetRequestID(r.Context()),
			"request body must be application/json, got "+declared)
		problem.Instance = r.URL.Path
		problem.Write(w)
	})
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func isJSONMediaType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	return err == nil && mediaType == "application/json"
}
