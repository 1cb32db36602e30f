// Package tui 终端界面：各个视图、受守卫保护的导航，以及由终端焦点驱动的可见性信号
package tui

import (
	"context"
	"time"

	"campus_lostfound/internal/chat"
	"campus_lostfound/internal/config"
	"campus_lostfound/internal/infrastructure/validation"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/posts"
	"campus_lostfound/internal/profile"
	"campus_lostfound/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// API 界面用到的全部后端接口，由 client.Client 实现
type API interface {
	AllPosts(ctx context.Context) ([]model.Post, error)
	PostImage(ctx context.Context, id int64) ([]byte, string, error)
	posts.API
	chat.API
	profile.API
}

// Sessions 会话操作，由 session.Store 实现
type Sessions interface {
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
	Bootstrap(ctx context.Context) session.Snapshot
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, email, username, password string) (session.RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerificationCode(ctx context.Context, email string) error
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context, confirm func(prompt string) bool) error
}

// Options 构造 App 的参数
type Options struct {
	API        API
	Sessions   Sessions
	Validator  *validation.Validator
	Visibility *poller.Tracker // 为 nil 时创建一个初始可见的 Tracker
	Client     config.ClientConfig
	// DownloadDir 保存帖子图片的目录，为空时使用系统临时目录
	DownloadDir string
}

// env 所有视图共享的依赖
type env struct {
	ctx         context.Context
	api         API
	sessions    Sessions
	validator   *validation.Validator
	visibility  *poller.Tracker
	conf        config.ClientConfig
	downloadDir string
	send        func(tea.Msg)
}

// notify 从轮询回调向界面投递消息；未接入程序时丢弃
// Program.Send 要等事件循环取走消息，而事件循环可能正在 Stop 这个轮询器，所以不能在回调里同步等待
func (e *env) notify(msg tea.Msg) {
	if e.send != nil {
		go e.send(msg)
	}
}

func (e *env) pollOptions(name string, interval time.Duration) poller.Options {
	return poller.Options{Name: name, Interval: interval, Visibility: e.visibility}
}

func (e *env) imageOptions() posts.ImageOptions {
	return posts.ImageOptions{MaxDimension: e.conf.ImageMaxDimension, MaxBytes: e.conf.ImageMaxBytes}
}

func (e *env) authenticated() bool {
	return e.sessions.Snapshot().Authenticated()
}
