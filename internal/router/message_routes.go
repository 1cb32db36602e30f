// Package router 提供 HTTP 路由注册
// 本文件定义私信相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册私信相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Message
	rg.GET("/conversations", h.Conversations) // 会话摘要列表
	rg.GET("/messages", h.Messages)           // 与某用户的全部消息
	rg.POST("/messages", h.Send)              // 发送私信
	rg.PUT("/messages/:id/read", h.MarkRead)  // 标记已读
}
