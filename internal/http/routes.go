package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/", h.Index)
	r.GET("/login", h.LoginPage)

	rl := NewRateLimiter(h.RateLimitPerMin, time.Minute)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", RateLimitAuth(h, rl), h.Register)
		auth.POST("/login", RateLimitAuth(h, rl), h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", AuthSession(h), h.Me)
		auth.GET("/google/login", h.GoogleLogin)
		auth.GET("/google/callback", h.GoogleCallback)
	}

	tasks := r.Group("/api/tasks", AuthSession(h))
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.PATCH("/:id/toggle", h.ToggleTask)
		tasks.PATCH("/:id", h.ToggleTask) // alias kept for older clients, same semantics
		tasks.DELETE("/:id", h.DeleteTask)
	}

	return r
}
