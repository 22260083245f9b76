package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/auth"
)

// roleContext returns the caller's RoleContext. When the route is not behind
// RequireAuthenticated it writes the 401 itself and reports false.
func roleContext(w http.ResponseWriter, r *http.Request) (*auth.RoleContext, bool) {
	rc, ok := auth.RoleContextFrom(r.Context())
	if !ok {
		problem := models.NewProblem(models.ProblemTypeUnauthorized, middleware.NoIdentityTitle,
			http.StatusUnauthorized, middleware.GetRequestID(r.Context()))
		problem.Detail = middleware.NoIdentityDetail
		response.Error(w, r, problem)
		return nil, false
	}
	return rc, true
}

// forbidden writes the bare 403 used by ownership checks. It carries no
// detail so the caller cannot tell which check failed.
func forbidden(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, models.NewForbidden(middleware.GetRequestID(r.Context()), "", ""))
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// decode reads a JSON request body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}

// selfOrAdmin lets the request through when the caller is an admin or owns
// the resource id. Otherwise it writes the bare 403.
func selfOrAdmin(w http.ResponseWriter, r *http.Request, log zerolog.Logger, id int64) bool {
	rc, ok := roleContext(w, r)
	if !ok {
		return false
	}
	allowed, err := rc.IsSelfOrAdmin(id)
	if err != nil {
		log.Error().Err(err).
			Int64("user_id", rc.UserID()).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("role evaluation failed")
	}
	if !allowed {
		forbidden(w, r)
		return false
	}
	return true
}
