package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/rate"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

// SetupRouter builds the gin router with the auth routes mounted.
func SetupRouter(userService *users.Service, throttle *rate.Limiter, log logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := NewAuthHandlers(userService, throttle, log)

	api := router.Group("/api")
	{
		api.GET("/ping", handlers.Ping)

		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.Login)
			auth.POST("/refresh", handlers.Refresh)
			auth.POST("/logout", handlers.Logout)
		}
	}

	return router
}
