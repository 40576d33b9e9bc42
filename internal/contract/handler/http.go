// Package handler exposes saved contracts and favorites over HTTP. All routes
// are bearer-protected.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youzhaozhao/ContractClarity/internal/contract/domain"
	"github.com/youzhaozhao/ContractClarity/internal/contract/service"
	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/server/httpx"
	"github.com/youzhaozhao/ContractClarity/internal/server/middleware"
)

// ContractHandler maps the contract service onto the /auth record routes.
type ContractHandler struct {
	svc    *service.ContractService
	tokens *security.TokenProvider
}

// NewContractHandler returns a ContractHandler for svc.
func NewContractHandler(svc *service.ContractService, tokens *security.TokenProvider) *ContractHandler {
	return &ContractHandler{svc: svc, tokens: tokens}
}

// Mount registers the contract and favorite routes on r under RequireAuth.
func (h *ContractHandler) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens))
		r.Get("/auth/contracts", h.list)
		r.Post("/auth/contracts", h.create)
		r.Delete("/auth/contracts/{id}", h.delete)
		r.Get("/auth/favorites", h.favorites)
		r.Post("/auth/favorites/{id}", h.addFavorite)
		r.Delete("/auth/favorites/{id}", h.removeFavorite)
	})
}

func (h *ContractHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	contracts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to list contracts")
		return
	}
	if contracts == nil {
		contracts = []*domain.Contract{}
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"contracts": contracts})
}

func (h *ContractHandler) create(w http.ResponseWriter, r *http.Request) {
	var c domain.Contract
	if err := httpx.Decode(r, &c); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	saved, err := h.svc.Create(r.Context(), userID, &c)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to save contract")
		return
	}
	httpx.Respond(w, http.StatusCreated, map[string]any{"contract": saved})
}

func (h *ContractHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "not_found", "contract not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to delete contract")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "contract deleted"})
}

func (h *ContractHandler) favorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	ids, err := h.svc.Favorites(r.Context(), userID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to list favorites")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"favorites": ids})
}

func (h *ContractHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.AddFavorite(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to add favorite")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "favorite added"})
}

func (h *ContractHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.RemoveFavorite(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "failed to remove favorite")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]any{"message": "favorite removed"})
}
