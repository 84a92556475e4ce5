package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Trace())
	r.Use(Metrics())
	r.Use(AccessLog(h.log()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", h.Healthz)
	r.GET("/api/health", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/.well-known/jwks.json", h.JWKS)

	a := r.Group("/api/auth")
	{
		a.POST("/register", RateLimit(h.Limiter, "register"), h.Register)
		a.POST("/login", RateLimit(h.Limiter, "login"), h.Login)
		a.GET("/me", AuthJWT(h.Tokens), h.Me)
		a.GET("/google", h.GoogleStart)
		a.GET("/google/callback", h.GoogleCallback)
	}

	t := r.Group("/api/tasks", AuthJWT(h.Tokens))
	{
		t.GET("", h.ListTasks)
		t.POST("", h.CreateTask)
		t.GET("/:id", h.GetTask)
		t.PUT("/:id", h.UpdateTask)
		t.DELETE("/:id", h.DeleteTask)
	}
	return r
}
