package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/handlers"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/middleware"
	"github.com/nikhil/teamtasks/internal/policy"
	"github.com/nikhil/teamtasks/internal/realtime"
	"github.com/nikhil/teamtasks/internal/repository"
	authService "github.com/nikhil/teamtasks/internal/service/auth"
	taskService "github.com/nikhil/teamtasks/internal/service/task"
	teamService "github.com/nikhil/teamtasks/internal/service/team"
	profileService "github.com/nikhil/teamtasks/internal/service/users"
)

// Deps is everything the route modules need.
type Deps struct {
	Store  *repository.Store
	Tokens *auth.TokenManager
	Policy policy.Table
	Log    *logger.Logger

	Auth     *authService.AuthService
	Profiles *profileService.ProfileService
	Teams    *teamService.TeamService
	Tasks    *taskService.TaskService

	// Hub is nil when realtime is disabled.
	Hub           *realtime.Hub
	AllowedOrigin string
}

// protected is the middleware stack of every authenticated route.
func (d *Deps) protected() []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.AuthMiddleware(d.Tokens, d.Log),
		middleware.Authorize(d.Policy, d.Log),
		middleware.ResponseWrapperMiddleware,
	}
}

// List of all route registration functions. Order matters: public routes
// on a path are registered before protected ones sharing its prefix.
var routeModules = []func(*mux.Router, *Deps){
	healthRoutes,
	authRoutes,
	userRoutes,
	teamRoutes,
	taskRoutes,
	websocketRoutes,
}

// RegisterAllRoutes builds the router and wraps it in the process-wide
// middleware.
func RegisterAllRoutes(d *Deps) http.Handler {
	router := mux.NewRouter()

	for _, register := range routeModules {
		register(router, d)
	}

	var h http.Handler = router
	h = middleware.CORS(d.AllowedOrigin)(h)
	h = middleware.RequestLogger(d.Log)(h)
	h = middleware.RequestID(h)
	h = middleware.Recover(d.Log)(h)
	return h
}

func healthRoutes(router *mux.Router, d *Deps) {
	healthHandler := handlers.NewHealthHandler(d.Store, d.Log)
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
}

func authRoutes(router *mux.Router, d *Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)

	// Public routes without auth middleware
	publicRouter := router.NewRoute().Subrouter()
	publicRouter.Use(middleware.ResponseWrapperMiddleware)
	publicRouter.HandleFunc("/users", authHandler.Signup).Methods(http.MethodPost)
	publicRouter.HandleFunc("/sessions", authHandler.Login).Methods(http.MethodPost)
}

func userRoutes(router *mux.Router, d *Deps) {
	profileHandler := handlers.NewProfileHandler(d.Profiles, d.Log)

	protectedRouter := router.PathPrefix("/users").Subrouter()
	protectedRouter.Use(d.protected()...)
	protectedRouter.HandleFunc("/me", profileHandler.GetUserProfile).Methods(http.MethodGet).Name(policy.UsersMe)
	protectedRouter.HandleFunc("/me", profileHandler.UpdateUserProfile).Methods(http.MethodPut).Name(policy.UsersMe)
}
