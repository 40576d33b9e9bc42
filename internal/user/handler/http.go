// Package handler exposes account maintenance over HTTP. All routes are
// bearer-protected.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
	"github.com/youzhaozhao/ContractClarity/internal/server/middleware"
	"github.com/youzhaozhao/ContractClarity/internal/user/domain"
	"github.com/youzhaozhao/ContractClarity/internal/user/service"
)

// UserHandler maps the user service onto the /auth account routes.
type UserHandler struct {
	svc    *service.UserService
	tokens *security.TokenProvider
}

// NewUserHandler returns a UserHandler for svc. The token provider revokes the
// presented credential on account deletion.
func NewUserHandler(svc *service.UserService, tokens *security.TokenProvider) *UserHandler {
	return &UserHandler{svc: svc, tokens: tokens}
}

// Mount registers the account routes on r under RequireAuth.
func (h *UserHandler) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens))
		r.Put("/auth/profile", h.updateProfile)
		r.Put("/auth/change-password", h.changePassword)
		r.Put("/auth/notifications", h.updateNotifications)
		r.Delete("/auth/account", h.deleteAccount)
	})
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname *string `json:"nickname"`
		Email    *string `json:"email"`
		Bio      *string `json:"bio"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	user, err := h.svc.UpdateProfile(r.Context(), userID, req.Nickname, req.Email, req.Bio)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			httpx.Error(w, http.StatusBadRequest, "weak_password", "password must be at least 6 characters")
		case errors.Is(err, service.ErrWrongPassword):
			httpx.Error(w, http.StatusUnauthorized, "wrong_password", "current password is incorrect")
		default:
			h.writeServiceError(w, err)
		}
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "password updated"})
}

func (h *UserHandler) updateNotifications(w http.ResponseWriter, r *http.Request) {
	var req domain.Notifications
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.UpdateNotifications(r.Context(), userID, req); err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"notifications": req})
}

func (h *UserHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.DeleteAccount(r.Context(), userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if access, ok := middleware.BearerToken(r.Context()); ok {
		h.tokens.Revoke(access)
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "account deleted"})
}

func (h *UserHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, "not_found", "account not found")
		return
	}
	httpx.Error(w, http.StatusInternalServerError, "internal", "operation failed")
}
