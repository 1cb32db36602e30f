// Package profile 用户主页：用户信息与其发布的帖子
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus_lostfound/internal/feed"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// 展示给用户的提示
const (
	MsgUserNotFound = "User not found"
	MsgLoadFailed   = "Failed to load profile"
)

// API 主页相关的后端接口，由 client.Client 实现
type API interface {
	GetUser(ctx context.Context, username string) (*model.User, error)
	UserPosts(ctx context.Context, username string) ([]model.Post, error)
	MyPosts(ctx context.Context) ([]model.Post, error)
}

// SessionReader 只读会话来源
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Profile 一个用户主页的状态
type Profile struct {
	Username      string
	User          *model.User
	IsCurrentUser bool
	// Err 用户信息加载失败的提示；帖子加载失败的提示在 Posts.Error()
	Err   string
	Posts *feed.State
}

// Loader 加载用户主页
type Loader struct {
	api      API
	sessions SessionReader
	timeout  time.Duration
}

// NewLoader 创建 Loader，timeout 同时用于用户信息与帖子请求
func NewLoader(api API, sessions SessionReader, timeout time.Duration) *Loader {
	return &Loader{api: api, sessions: sessions, timeout: timeout}
}

// Load 加载指定用户的主页；username 为空表示当前登录用户
// 用户不存在时 Err 为 "User not found" 且不再拉取帖子
func (l *Loader) Load(ctx context.Context, username string) (*Profile, error) {
	snap := l.sessions.Snapshot()
	username = strings.TrimSpace(username)
	if username == "" {
		if !snap.Authenticated() {
			return nil, errorx.ErrNotAuthenticated
		}
		username = snap.User.Username
	}

	p := &Profile{
		Username:      username,
		IsCurrentUser: snap.Authenticated() && strings.EqualFold(snap.User.Username, username),
		Posts:         feed.New(l.timeout),
	}

	if p.IsCurrentUser {
		// 当前用户直接使用会话中的信息
		u := *snap.User
		p.User = &u
		_ = p.Posts.Load(ctx, l.api.MyPosts)
		return p, nil
	}

	uctx, cancel := context.WithTimeout(ctx, l.timeout)
	user, err := l.api.GetUser(uctx, username)
	cancel()
	if err != nil {
		if errorx.IsNotFound(err) {
			p.Err = MsgUserNotFound
			return p, nil
		}
		zap.L().Warn("load profile failed", zap.String("username", username), zap.Error(err))
		p.Err = MsgLoadFailed
	} else {
		p.User = user
	}

	_ = p.Posts.Load(ctx, func(ctx context.Context) ([]model.Post, error) {
		return l.api.UserPosts(ctx, username)
	})
	return p, nil
}

// Title 帖子区标题
func (p *Profile) Title() string {
	if p.IsCurrentUser {
		return "My Posts"
	}
	return fmt.Sprintf("%s's Posts", p.Username)
}

// EmptyMessage 没有帖子时的提示
func (p *Profile) EmptyMessage() string {
	if p.Posts == nil || p.Posts.EmptyMessage() == "" {
		return ""
	}
	if p.IsCurrentUser {
		return "You haven't created any posts yet. Create your first post!"
	}
	return fmt.Sprintf("%s hasn't posted anything yet.", p.Username)
}

// Initial 头像上显示的首字母
func (p *Profile) Initial() string {
	name := p.Username
	if p.User != nil && p.User.Username != "" {
		name = p.User.Username
	}
	if name == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}
