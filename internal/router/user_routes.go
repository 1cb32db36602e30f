package router

import (
	"campus_lostfound/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/users")
	{
		userGroup.GET("/me", middleware.CookieAuth(), rt.handlers.Auth.Me)          // 当前会话用户
		userGroup.DELETE("/me", middleware.CookieAuth(), rt.handlers.User.DeleteMe) // 删除账号
		userGroup.GET("/:username", rt.handlers.User.GetByUsername)                 // 公开资料
	}
}
