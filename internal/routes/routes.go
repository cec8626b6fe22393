package routes

import (
	"kv-cache-api/internal/handlers"
	"kv-cache-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "KV Cache API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Keyspace endpoints
		protectedRoutes.POST("/keyspaces", handlers.CreateKeyspace)
		protectedRoutes.GET("/keyspaces", handlers.ListKeyspaces)
		protectedRoutes.DELETE("/keyspaces/:name", handlers.DeleteKeyspace)
		protectedRoutes.PATCH("/keyspaces/:name", handlers.ConfigureKeyspace)
		protectedRoutes.GET("/keyspaces/:name/stats", handlers.KeyspaceStats)
		protectedRoutes.POST("/keyspaces/:name/flush", handlers.FlushKeyspace)
		// Key endpoints
		protectedRoutes.GET("/keyspaces/:name/keys", handlers.ListKeys)
		protectedRoutes.PUT("/keyspaces/:name/keys/:key", handlers.PutKey)
		protectedRoutes.GET("/keyspaces/:name/keys/:key", handlers.GetKey)
		protectedRoutes.DELETE("/keyspaces/:name/keys/:key", handlers.DeleteKey)
		// Event stream
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
