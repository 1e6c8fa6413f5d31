package handler

import (
	"net/http"

	"lexora/internal/api/middleware"
	"lexora/internal/app/service"
	"lexora/internal/common"
	"lexora/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
	authn        func(http.Handler) http.Handler
}

func NewAdminHandler(as *service.AdminService, authn func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{adminService: as, authn: authn}
}

// RegisterRoutes mounts the admin endpoints; every one requires an admin
// token.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.authn)
	r.Use(middleware.RequirePolicy(security.AdminOnly))

	r.Get("/users", h.listUsers)
	r.Put("/users/{id}/toggle", h.toggleUser)
	r.Get("/blogs", h.listBlogs)
	r.Delete("/blogs/{id}", h.deleteBlog)
	r.Get("/activities", h.listActivities)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) toggleUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.ToggleUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) listBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.adminService.ListBlogs(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blogs)
}

func (h *AdminHandler) deleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteBlog(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Msg: "Blog deleted"})
}

func (h *AdminHandler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.adminService.ListActivities(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, activities)
}
