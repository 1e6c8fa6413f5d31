package handler

import (
	"net/http"

	"lexora/internal/api/middleware"
	"lexora/internal/app/service"
	"lexora/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	authn       func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, authn func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, authn: authn}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(h.authn).Post("/logout", h.logout)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	tokenID, expiresAt, _ := middleware.TokenFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), tokenID, expiresAt); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Msg: "Logged out"})
}
