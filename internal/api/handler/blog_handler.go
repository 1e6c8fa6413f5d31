package handler

import (
	"net/http"

	"lexora/internal/app/service"
	"lexora/internal/common"

	"github.com/go-chi/chi/v5"
)

type BlogHandler struct {
	blogService *service.BlogService
	authn       func(http.Handler) http.Handler
	maxUpload   int64
}

func NewBlogHandler(bs *service.BlogService, authn func(http.Handler) http.Handler, maxUpload int64) *BlogHandler {
	return &BlogHandler{blogService: bs, authn: authn, maxUpload: maxUpload}
}

func (h *BlogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listBlogs)
	r.Get("/trending", h.trending)
	r.Get("/authors", h.authors)
	r.Get("/author/{username}", h.authorProfile)
	r.Get("/{id}", h.getBlog)

	r.Group(func(authed chi.Router) {
		authed.Use(h.authn)
		authed.Get("/my-blogs", h.myBlogs)
		authed.Post("/", h.createBlog)
		authed.Put("/{id}", h.updateBlog)
		authed.Delete("/{id}", h.deleteBlog)
		authed.Post("/{id}/like", h.toggleLike)
		authed.Post("/{id}/comments", h.addComment)
	})
}

func (h *BlogHandler) listBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) trending(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.Trending(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.blogService.Authors(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, authors)
}

func (h *BlogHandler) authorProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.blogService.AuthorProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *BlogHandler) getBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) myBlogs(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	resp, err := h.blogService.MyBlogs(r.Context(), id, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// blogInput reads a blog from a multipart form (with optional "image" file)
// or from a JSON body.
func (h *BlogHandler) blogInput(w http.ResponseWriter, r *http.Request) (service.BlogInput, bool) {
	var in service.BlogInput
	if !isMultipart(r) {
		return in, decodeJSON(w, r, &in)
	}

	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		common.RespondWithErr(w, err)
		return in, false
	}
	in.Title = r.FormValue("title")
	in.Content = r.FormValue("content")
	in.Tags = service.ParseTags(r.MultipartForm.Value["tags"])
	image, err := formFile(r, "image", h.maxUpload)
	if err != nil {
		common.RespondWithErr(w, err)
		return in, false
	}
	in.Image = image
	return in, true
}

func (h *BlogHandler) createBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	in, ok := h.blogInput(w, r)
	if !ok {
		return
	}
	blog, err := h.blogService.Create(r.Context(), id, in)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, blog)
}

func (h *BlogHandler) updateBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	in, ok := h.blogInput(w, r)
	if !ok {
		return
	}
	blog, err := h.blogService.Update(r.Context(), id, chi.URLParam(r, "id"), in)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) deleteBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.blogService.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Msg: "Blog deleted"})
}

type likeResponse struct {
	Likes int `json:"likes"`
}

func (h *BlogHandler) toggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	n, err := h.blogService.ToggleLike(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, likeResponse{Likes: n})
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *BlogHandler) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.blogService.AddComment(r.Context(), id, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}
