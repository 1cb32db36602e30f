// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"time"

	"campus_lostfound/internal/handler"
	"campus_lostfound/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，按模块注册路由
type Router struct {
	handlers      *handler.Handlers
	authRateBurst int
}

// NewRouter 创建路由管理器
// authRateBurst 为认证接口每个 IP 每分钟允许的请求数，<=0 不限流
func NewRouter(handlers *handler.Handlers, authRateBurst int) *Router {
	return &Router{handlers: handlers, authRateBurst: authRateBurst}
}

// RegisterRoutes 注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r.Group("/auth"))

	api := r.Group("/api/v1")
	rt.RegisterUserRoutes(api)
	rt.RegisterPostRoutes(api)

	// 私信接口全部需要认证
	messages := api.Group("/supabase")
	messages.Use(middleware.CookieAuth())
	rt.RegisterMessageRoutes(messages)
}

// authLimiter 认证接口的按 IP 限流
func (rt *Router) authLimiter() gin.HandlerFunc {
	if rt.authRateBurst <= 0 {
		return middleware.RateLimit(0, 0)
	}
	return middleware.RateLimit(time.Minute/time.Duration(rt.authRateBurst), rt.authRateBurst)
}
