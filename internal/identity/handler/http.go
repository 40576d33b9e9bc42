// Package handler exposes the authentication flows over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youzhaozhao/ContractClarity/internal/identity/service"
	"github.com/youzhaozhao/ContractClarity/internal/otp"
	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
	"github.com/youzhaozhao/ContractClarity/internal/server/middleware"
	userdomain "github.com/youzhaozhao/ContractClarity/internal/user/domain"
)

// AuthHandler translates HTTP requests into auth service calls and maps the
// service's sentinel errors to status codes and stable error codes.
type AuthHandler struct {
	svc    *service.AuthService
	tokens *security.TokenProvider
}

// NewAuthHandler returns an AuthHandler for svc.
func NewAuthHandler(svc *service.AuthService, tokens *security.TokenProvider) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Mount registers the public auth routes on r and the bearer-protected routes
// under RequireAuth.
func (h *AuthHandler) Mount(r chi.Router) {
	r.Post("/auth/send-otp", h.sendOTP)
	r.Post("/auth/login-sms", h.loginSMS)
	r.Post("/auth/login-pwd", h.loginPassword)
	r.Post("/auth/register", h.register)
	r.Post("/auth/refresh", h.refresh)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens))
		r.Get("/auth/me", h.me)
		r.Post("/auth/logout", h.logout)
	})
}

type tokenEnvelope struct {
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	TokenType    string                 `json:"token_type"`
	ExpiresIn    int64                  `json:"expires_in"`
	User         *userdomain.PublicUser `json:"user"`
}

func envelope(res *service.AuthResult) tokenEnvelope {
	return tokenEnvelope{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    res.ExpiresIn,
		User:         res.User,
	}
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	devCode, err := h.svc.SendCode(r.Context(), req.Phone)
	if err != nil {
		var rl *otp.RateLimitedError
		switch {
		case errors.As(err, &rl):
			httpx.Respond(w, http.StatusTooManyRequests, map[string]any{
				"error":            "rate_limited",
				"message":          err.Error(),
				"secondsRemaining": rl.SecondsRemaining,
			})
		case errors.Is(err, service.ErrInvalidPhone):
			httpx.Error(w, http.StatusBadRequest, "invalid_phone", "invalid phone number")
		default:
			httpx.Error(w, http.StatusInternalServerError, "internal", "failed to send code")
		}
		return
	}
	body := map[string]any{"message": "verification code sent"}
	if devCode != "" {
		body["dev_code"] = devCode
	}
	httpx.Respond(w, http.StatusOK, body)
}

func (h *AuthHandler) loginSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	res, err := h.svc.LoginSMS(r.Context(), req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPhone) {
			httpx.Error(w, http.StatusBadRequest, "invalid_phone", "invalid phone number")
			return
		}
		if msg, ok := otpErrorMessage(err); ok {
			httpx.Error(w, http.StatusUnauthorized, "otp_error", msg)
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}
	httpx.Respond(w, http.StatusOK, envelope(res))
}

func (h *AuthHandler) loginPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	res, err := h.svc.LoginPassword(r.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.Error(w, http.StatusNotFound, "not_found", "account not found")
		case errors.Is(err, service.ErrNoPassword):
			httpx.Error(w, http.StatusBadRequest, "no_password", "account has no password; use code login")
		case errors.Is(err, service.ErrWrongPassword):
			httpx.Error(w, http.StatusUnauthorized, "wrong_password", "wrong phone or password")
		default:
			httpx.Error(w, http.StatusInternalServerError, "internal", "login failed")
		}
		return
	}
	httpx.Respond(w, http.StatusOK, envelope(res))
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone    string `json:"phone"`
		Code     string `json:"code"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	res, err := h.svc.Register(r.Context(), req.Phone, req.Code, req.Password, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			httpx.Error(w, http.StatusBadRequest, "invalid_phone", "invalid phone number")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.Error(w, http.StatusBadRequest, "weak_password", "password must be at least 6 characters")
		case errors.Is(err, service.ErrAlreadyExists):
			httpx.Error(w, http.StatusConflict, "already_exists", "phone already registered")
		default:
			if msg, ok := otpErrorMessage(err); ok {
				httpx.Error(w, http.StatusUnauthorized, "otp_error", msg)
				return
			}
			httpx.Error(w, http.StatusInternalServerError, "internal", "registration failed")
		}
		return
	}
	httpx.Respond(w, http.StatusCreated, envelope(res))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			httpx.Error(w, http.StatusUnauthorized, "refresh_expired", "refresh token expired, log in again")
			return
		}
		httpx.Error(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token")
		return
	}
	httpx.Respond(w, http.StatusOK, envelope(res))
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.Error(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to load account")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = httpx.Decode(r, &req) // body is optional
	access, _ := middleware.BearerToken(r.Context())
	h.svc.Logout(r.Context(), access, req.RefreshToken)
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// otpErrorMessage reports whether err came from the OTP store, with a
// client-safe message.
func otpErrorMessage(err error) (string, bool) {
	var mismatch *otp.MismatchError
	switch {
	case errors.Is(err, otp.ErrNotFound):
		return "code not found or already used", true
	case errors.Is(err, otp.ErrExpired):
		return "code expired, request a new one", true
	case errors.Is(err, otp.ErrTooManyAttempts):
		return "too many incorrect attempts, request a new code", true
	case errors.As(err, &mismatch):
		return err.Error(), true
	}
	return "", false
}
