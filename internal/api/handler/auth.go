package handler

import (
	"errors"
	"net/http"

	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/auth"
)

// Login and sign-out response texts.
const (
	LoginFailedTitle   = "Error trying to login"
	LoginFailedDetail  = "Check that you have entered the correct email and password"
	SignOutFailedTitle = "Error trying to sign out"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
	errs        *Errors
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, errs *Errors) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		errs:        errs,
	}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			problem := models.NewProblem(models.ProblemTypeUnauthorized, LoginFailedTitle,
				http.StatusUnauthorized, middleware.GetRequestID(r.Context()))
			problem.Detail = LoginFailedDetail
			response.Error(w, r, problem)
		case errors.Is(err, auth.ErrTooManyAttempts):
			response.TooManyRequests(w, r, "too many failed login attempts, try again later")
		default:
			h.errs.Write(w, r, err)
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// SignOut handles POST /api/signOut. Callers may only sign out themselves.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	rc, ok := roleContext(w, r)
	if !ok {
		return
	}

	var req models.SignOutRequest
	if !decode(w, r, &req) {
		return
	}

	if !rc.IsSelf(req.UserID) {
		forbidden(w, r)
		return
	}

	if err := h.authService.SignOut(r.Context(), &req); err != nil {
		if errors.Is(err, auth.ErrDeviceNotBound) {
			problem := models.NewProblem(models.ProblemTypeBadRequest, SignOutFailedTitle,
				http.StatusBadRequest, middleware.GetRequestID(r.Context()))
			problem.Detail = err.Error()
			response.Error(w, r, problem)
			return
		}
		h.errs.Write(w, r, err)
		return
	}

	response.NoContent(w, r)
}
