// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"campus_lostfound/internal/dao/gormdb"
	myredis "campus_lostfound/internal/dao/redis"
	"campus_lostfound/internal/infrastructure/mail"
	"campus_lostfound/internal/service/auth"
	"campus_lostfound/internal/service/message"
	"campus_lostfound/internal/service/post"
	"campus_lostfound/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Auth    AuthService
	User    UserService
	Post    PostService
	Message MessageService
}

// NewServices 创建并注入所有 Service 实例
//  1. 接收 Repository 聚合、缓存与邮件发送实例
//  2. 创建各个 Service 实例
//  3. 返回 Services 聚合
func NewServices(repos *gormdb.Repositories, cache myredis.AsyncCacheService, mailer mail.CodeSender) *Services {
	return &Services{
		Auth:    auth.NewAuthService(repos, cache, mailer),
		User:    user.NewUserService(repos, cache),
		Post:    post.NewPostService(repos),
		Message: message.NewMessageService(repos, cache),
	}
}
