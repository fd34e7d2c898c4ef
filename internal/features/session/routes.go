package session

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches session endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireSession gin.HandlerFunc) {
	sessions := router.Group("/session")
	{
		sessions.POST("", handler.Create)
		sessions.GET("", requireSession, handler.Current)
		sessions.DELETE("", handler.Delete)
	}
}
