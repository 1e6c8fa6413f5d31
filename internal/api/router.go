package api

import (
	"net/http"
	"time"

	"lexora/internal/api/handler"
	"lexora/internal/api/middleware"
	"lexora/internal/app/service"
	"lexora/internal/common"
	"lexora/internal/common/security"
	"lexora/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

// Services groups what the router dispatches to.
type Services struct {
	Auth  *service.AuthService
	Blogs *service.BlogService
	Users *service.UserService
	Admin *service.AdminService
}

// NewRouter builds the HTTP API. uploads serves stored images under
// config.AppConfig.UploadPublicPath and may be nil when images live in
// object storage.
func NewRouter(svc Services, denylist security.Denylist, uploads http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.AppConfig.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Bearer tokens are verified for every request; routes that need one
	// add middleware.Authenticator. Cookies are not consulted.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader))
	authn := middleware.Authenticator(denylist)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if uploads != nil {
		r.Handle(config.AppConfig.UploadPublicPath+"/*", uploads)
	}

	maxUpload := config.AppConfig.MaxUploadBytes
	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", handler.NewAuthHandler(svc.Auth, authn).RegisterRoutes)
		api.Route("/blogs", handler.NewBlogHandler(svc.Blogs, authn, maxUpload).RegisterRoutes)
		api.Route("/users", handler.NewUserHandler(svc.Users, authn, maxUpload).RegisterRoutes)
		api.Route("/admin", handler.NewAdminHandler(svc.Admin, authn).RegisterRoutes)
	})

	return r
}
