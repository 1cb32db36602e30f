// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"campus_lostfound/internal/service"
)

// Options 处理器需要的服务端配置
type Options struct {
	SecureCookie bool  // 会话 Cookie 只在 HTTPS 下发送
	MaxImageSize int64 // 上传图片大小上限（字节）
}

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Post    *PostHandler
	Message *MessageHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, opts Options) *Handlers {
	cookies := sessionCookies{secure: opts.SecureCookie}
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth, svc.User, cookies),
		User:    NewUserHandler(svc.User, cookies),
		Post:    NewPostHandler(svc.Post, opts.MaxImageSize),
		Message: NewMessageHandler(svc.Message),
	}
}
