package handler

import (
	"net/http"

	"lexora/internal/app/service"
	"lexora/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	authn       func(http.Handler) http.Handler
	maxUpload   int64
}

func NewUserHandler(us *service.UserService, authn func(http.Handler) http.Handler, maxUpload int64) *UserHandler {
	return &UserHandler{userService: us, authn: authn, maxUpload: maxUpload}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.With(h.authn).Patch("/avatar/{id}", h.updateAvatar)
}

// updateAvatar expects a multipart form with the image in the "avatar" field.
func (h *UserHandler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var upload *service.Upload
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxUpload); err != nil {
			common.RespondWithErr(w, err)
			return
		}
		var err error
		if upload, err = formFile(r, "avatar", h.maxUpload); err != nil {
			common.RespondWithErr(w, err)
			return
		}
	}

	resp, err := h.userService.UpdateAvatar(r.Context(), id, chi.URLParam(r, "id"), upload)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
