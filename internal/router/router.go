package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/workdesk/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Profile   *apiHandler.ProfileHandler
	Task      *apiHandler.TaskHandler
	Dashboard *apiHandler.DashboardHandler
	Leave     *apiHandler.LeaveHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Protected routes
	api := r.Group("/api/v1")

	api.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	api.GET("/profile", authMiddleware(handlers.Profile.GetProfile))
	api.PUT("/profile", authMiddleware(handlers.Profile.UpdateProfile))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/transition", authMiddleware(handlers.Task.TransitionTask))
	api.GET("/tasks/{id}/actions", authMiddleware(handlers.Task.GetActions))

	api.GET("/dashboard/stats", authMiddleware(handlers.Dashboard.Stats))
	api.GET("/dashboard/users", authMiddleware(handlers.Dashboard.Users))
	api.GET("/dashboard/categories", authMiddleware(handlers.Dashboard.Categories))

	// Static segments take priority over {id} in fasthttp/router.
	api.GET("/leaves", authMiddleware(handlers.Leave.List))
	api.POST("/leaves", authMiddleware(handlers.Leave.Apply))
	api.POST("/leaves/preview", authMiddleware(handlers.Leave.Preview))
	api.GET("/leaves/balances", authMiddleware(handlers.Leave.Balances))
	api.GET("/leaves/types", authMiddleware(handlers.Leave.Types))
	api.POST("/leaves/{id}/decision", authMiddleware(handlers.Leave.Decide))
	api.DELETE("/leaves/{id}", authMiddleware(handlers.Leave.Delete))

	return r
}
