package routes

import (
	"github.com/bitrader/auth/internal/container"
	"github.com/bitrader/auth/internal/handlers"
	"github.com/bitrader/auth/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	// All event routes live under /auth, the scope the clients were
	// built against.
	auth := r.Group("/auth")
	{
		auth.GET("/healthz", func(ctx *gin.Context) {
			ctx.JSON(200, gin.H{
				"status":  "OK",
				"service": "bitrader-auth",
			})
		})

		auth.POST("/add", handlers.AddEvent(c.EventService))
		auth.GET("/get/availables", handlers.GetAvailableEvents(c.EventService))
		auth.POST("/cast-vote", handlers.CastVote(c.EventService))
		auth.POST("/set-expire", handlers.SetExpire(c.EventService))
		auth.POST("/delete/:id/:api_key", handlers.DeleteEvent(c.EventService))
	}

	return r
}
