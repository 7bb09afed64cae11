package rest

import (
	"net/http"

	"pm-backend/application/services"
	"pm-backend/interfaces/http/rest/handlers"
	"pm-backend/interfaces/http/rest/middleware"
	"pm-backend/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	accounts *services.AccountService
	projects *services.ProjectService
	tasks    *services.TaskService
	jwt      *auth.JWTService
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	accounts *services.AccountService,
	projects *services.ProjectService,
	tasks *services.TaskService,
	jwt *auth.JWTService,
	logger *zap.Logger,
) *Router {
	return &Router{
		accounts: accounts,
		projects: projects,
		tasks:    tasks,
		jwt:      jwt,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)

	router.Route("/api", func(r chi.Router) {
		// Login is the only route reachable without a credential
		authHandler := handlers.NewAuthHandler(rt.accounts, rt.logger)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.jwt))

			r.Route("/accounts", func(r chi.Router) {
				accountHandler := handlers.NewAccountHandler(rt.accounts, rt.logger)
				r.Post("/", accountHandler.Create)
				r.Get("/", accountHandler.List)
				r.Get("/{accountID}", accountHandler.Get)
				r.Put("/{accountID}", accountHandler.Update)
				r.Delete("/{accountID}", accountHandler.Delete)
			})

			r.Route("/projects", func(r chi.Router) {
				projectHandler := handlers.NewProjectHandler(rt.projects, rt.logger)
				r.Post("/", projectHandler.Create)
				r.Get("/", projectHandler.List)
				r.Get("/{projectID}", projectHandler.Get)
				r.Put("/{projectID}", projectHandler.Update)
				r.Delete("/{projectID}", projectHandler.Delete)
				r.Post("/{projectID}/members", projectHandler.AddMember)
				r.Delete("/{projectID}/members/{email}", projectHandler.RemoveMember)
			})

			r.Route("/tasks", func(r chi.Router) {
				taskHandler := handlers.NewTaskHandler(rt.tasks, rt.logger)
				r.Post("/", taskHandler.Create)
				r.Get("/", taskHandler.List)
				r.Get("/{taskID}", taskHandler.Get)
				r.Put("/{taskID}", taskHandler.Update)
				r.Post("/{taskID}/approve", taskHandler.Approve)
				r.Delete("/{taskID}", taskHandler.Delete)
			})
		})
	})

	return router
}

// healthCheck handles GET /health
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
