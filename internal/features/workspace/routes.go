package workspace

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches product workspace endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireSession gin.HandlerFunc) {
	products := router.Group("/products", requireSession)
	products.GET("", handler.ListProducts)
	products.GET("/:productId", handler.GetProduct)

	product := products.Group("/:productId")
	product.GET("/workspace", handler.Get)
	product.PUT("/selection", handler.Select)

	modules := product.Group("/modules")
	modules.POST("", handler.CreateModule)
	modules.GET("/:moduleId", handler.GetModule)
	modules.PUT("/:moduleId", handler.UpdateModule)
	modules.DELETE("/:moduleId", handler.DeleteModule)

	lessons := modules.Group("/:moduleId/lessons")
	lessons.POST("", handler.CreateLesson)
	lessons.PUT("/:lessonId", handler.UpdateLesson)
	lessons.DELETE("/:lessonId", handler.DeleteLesson)
	lessons.POST("/:lessonId/progress", handler.UpdateProgress)
	lessons.POST("/:lessonId/complete", handler.CompleteLesson)

	posts := product.Group("/posts")
	posts.POST("", handler.CreatePost)
	posts.DELETE("/:postId", handler.DeletePost)

	groups := product.Group("/groups")
	groups.POST("", handler.CreateGroup)
	groups.DELETE("/:groupId", handler.DeleteGroup)
}
