package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sarthakdev/medium-be/internal/api/handlers"
	"github.com/sarthakdev/medium-be/internal/auth"
	"github.com/sarthakdev/medium-be/internal/services"
)

// NewRouter creates and configures the Chi router: the /api/v1 dispatch
// table plus cross-cutting middleware (CORS, auth).
func NewRouter(
	tokens *auth.Service,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	mediaService services.MediaServiceProvider,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	blogHandler := handlers.NewBlogHandler(postService)
	mediaHandler := handlers.NewMediaHandler(mediaService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", userHandler.Signup)
			r.Post("/signin", userHandler.Signin)
			r.With(tokens.Middleware()).Get("/auth", userHandler.Me)
		})

		r.Route("/blog", func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Post("/", blogHandler.Create)
			r.Get("/bulk", blogHandler.List)
			r.Post("/upload", mediaHandler.Upload)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", blogHandler.Get)
				r.Put("/", blogHandler.Update)
				r.Delete("/", blogHandler.Delete)
			})
		})
	})

	return r
}
