// Package handler exposes user CRUD over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"usertrail/internal/user"
	dErrors "usertrail/pkg/domain-errors"
	"usertrail/pkg/platform/httputil"
)

// Service defines the user operations the handler depends on.
type Service interface {
	CreateUser(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	UpdateUser(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error)
	DeleteUser(ctx context.Context, id int64) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// Handler wires the user endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a users handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.HandleListUsers)
		r.Post("/", h.HandleCreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetUser)
			r.Put("/", h.HandleUpdateUser)
			r.Delete("/", h.HandleDeleteUser)
		})
	})
}

// HandleListUsers handles GET /api/users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", "error", err)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]user.Response, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}

// HandleGetUser handles GET /api/users/{id}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.service.GetUser(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.ToResponse(u))
}

// HandleCreateUser handles POST /api/users.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[user.CreateUserRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.CreateUser(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create user", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user.ToResponse(created))
}

// HandleUpdateUser handles PUT /api/users/{id}.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := httputil.Decode[user.UpdateUserRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.UpdateUser(ctx, id, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update user", "user_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.ToResponse(updated))
}

// HandleDeleteUser handles DELETE /api/users/{id}. The response body is the
// deleted user's last state.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deleted, err := h.service.DeleteUser(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user", "user_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.ToResponse(deleted))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be an integer")
	}
	return id, nil
}
