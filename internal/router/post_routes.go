package router

import (
	"campus_lostfound/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterPostRoutes 注册帖子相关路由
// 浏览接口公开，发帖与修改需要认证
func (rt *Router) RegisterPostRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Post
	postGroup := rg.Group("/posts")
	{
		postGroup.GET("/all", h.All)
		postGroup.GET("/user/:username", h.ByUser)
		postGroup.GET("/type/:itemType", h.ByType)
		postGroup.GET("/:id/image", h.Image)
	}

	authed := postGroup.Group("", middleware.CookieAuth())
	{
		authed.GET("/my", h.My)
		authed.POST("", h.Create)
		authed.PUT("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
	}
}
