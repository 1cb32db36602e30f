// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/service/post"
)

// AuthService 注册、邮箱验证与登录
type AuthService interface {
	// Signup 创建未验证的用户并发送验证码
	Signup(ctx context.Context, req request.SignupRequest) (*model.User, error)
	// Verify 校验验证码并激活用户
	Verify(ctx context.Context, req request.VerifyRequest) (*model.User, error)
	// Resend 为未验证的用户重新生成并发送验证码
	Resend(ctx context.Context, email string) error
	// Login 用户名密码登录，要求邮箱已验证
	Login(ctx context.Context, req request.LoginRequest) (*model.User, error)
}

// UserService 用户资料与账号删除
type UserService interface {
	GetByID(id int64) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	// DeleteAccount 删除用户及其帖子与私信
	DeleteAccount(ctx context.Context, id int64) error
}

// PostService 帖子的增删改查
type PostService interface {
	ListAll() ([]model.Post, error)
	ListByUsername(username string) ([]model.Post, error)
	ListByUser(userID int64) ([]model.Post, error)
	ListByItemType(itemType string) ([]model.Post, error)
	Create(userID int64, form request.CreatePostForm, image *post.Image) (*model.Post, error)
	// Update 非作者返回 CodeForbidden
	Update(userID, postID int64, req request.UpdatePostRequest) (*model.Post, error)
	// Delete 非作者返回 CodeForbidden
	Delete(userID, postID int64) error
	GetImage(postID int64) (*post.Image, error)
}

// MessageService 私信与会话摘要
type MessageService interface {
	Conversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	Messages(userID, otherUserID int64) ([]model.Message, error)
	Send(ctx context.Context, senderID int64, req request.SendMessageRequest) (*model.Message, error)
	// MarkRead 只有接收者可以标记已读
	MarkRead(ctx context.Context, userID, messageID int64) error
}
