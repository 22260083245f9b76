package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/user"
)

// UserHandler handles staff account endpoints.
type UserHandler struct {
	users          *user.Service
	devices        *device.Service
	firstUserToken string
	errs           *Errors
}

// UserHandlerConfig holds configuration for the user handler.
type UserHandlerConfig struct {
	Users   *user.Service
	Devices *device.Service

	// FirstUserToken guards the bootstrap endpoint. Empty disables it.
	FirstUserToken string

	Errors *Errors
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cfg UserHandlerConfig) *UserHandler {
	return &UserHandler{
		users:          cfg.Users,
		devices:        cfg.Devices,
		firstUserToken: cfg.FirstUserToken,
		errs:           cfg.Errors,
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.errs.filters(w, r)
	if !ok {
		return
	}
	users, err := h.users.List(r.Context(), filters)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if users == nil {
		users = []*user.User{}
	}
	response.JSON(w, r, http.StatusOK, users)
}

// Current handles GET /api/users/current.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	rc, ok := roleContext(w, r)
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), rc.UserID())
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !selfOrAdmin(w, r, h.errs.logger, id) {
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.UserCreateRequest
	if !decode(w, r, &input) {
		return
	}
	u, err := h.users.Create(r.Context(), &input)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.Created(w, r, fmt.Sprintf("/api/users/%d", u.ID), u)
}

// Update handles PUT /api/users/{id}. Only admins may change a role.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !selfOrAdmin(w, r, h.errs.logger, id) {
		return
	}

	var input models.UserUpdateRequest
	if !decode(w, r, &input) {
		return
	}

	if input.Role != nil {
		rc, _ := roleContext(w, r)
		if admin, _ := rc.IsAdmin(); !admin {
			forbidden(w, r)
			return
		}
	}

	u, err := h.users.Update(r.Context(), id, &input)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

// Delete handles DELETE /api/users/{id}. The user's device bindings go with
// the account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !selfOrAdmin(w, r, h.errs.logger, id) {
		return
	}

	u, err := h.users.Delete(r.Context(), id)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if err := h.devices.RemoveUser(r.Context(), id); err != nil {
		h.errs.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to remove device bindings")
	}
	response.JSON(w, r, http.StatusOK, u)
}

// CreateFirst handles POST /api/first-user/{token}. It creates the bootstrap
// administrator while no user exists yet.
func (h *UserHandler) CreateFirst(w http.ResponseWriter, r *http.Request) {
	if h.firstUserToken == "" {
		response.NotFound(w, r, "first user bootstrap is disabled")
		return
	}
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.firstUserToken)) != 1 {
		forbidden(w, r)
		return
	}

	var input models.UserCreateRequest
	if !decode(w, r, &input) {
		return
	}
	u, err := h.users.CreateFirst(r.Context(), &input)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}

	h.errs.logger.Info().Int64("user_id", u.ID).Msg("first user created")
	response.Created(w, r, fmt.Sprintf("/api/users/%d", u.ID), u)
}
