package router

import (
	"campus_lostfound/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
// 登录、注册、验证与重发按 IP 限流
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Auth
	limited := rg.Group("", rt.authLimiter())
	{
		limited.POST("/signup", h.Signup)
		limited.POST("/login", h.Login)
		limited.POST("/verify", h.Verify)
		limited.POST("/resend", h.Resend)
	}
	rg.POST("/logout", h.Logout)
	rg.GET("/me", middleware.CookieAuth(), h.Me)
}
