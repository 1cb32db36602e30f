package chat

import (
	"context"
	"sync"

	"campus_lostfound/internal/model"
	"campus_lostfound/internal/poller"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// List 当前用户的会话摘要列表，每次刷新整体替换
type List struct {
	api      API
	sessions SessionReader
	poll     *poller.Poller[[]model.Conversation]

	mu       sync.RWMutex
	convs    []model.Conversation
	loading  bool
	errMsg   string
	onChange func()
}

// NewList 创建会话列表
func NewList(api API, sessions SessionReader, opts poller.Options) *List {
	l := &List{api: api, sessions: sessions, convs: []model.Conversation{}, loading: true}
	if opts.Name == "" {
		opts.Name = "conversations"
	}
	l.poll = poller.New[[]model.Conversation](api.Conversations, opts)
	l.poll.OnUpdate(l.setConversations)
	l.poll.OnError(l.setError)
	return l
}

// OnChange 状态变化回调，在拉取协程中调用
func (l *List) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Start 立即加载并开始轮询；未登录时不启动
func (l *List) Start(ctx context.Context) error {
	if !l.sessions.Snapshot().Authenticated() {
		return errorx.ErrNotAuthenticated
	}
	l.poll.Start(ctx)
	return nil
}

// Stop 停止轮询
func (l *List) Stop() {
	l.poll.Stop()
}

// Refresh 立即刷新一次
func (l *List) Refresh(ctx context.Context) error {
	return l.poll.Refresh(ctx)
}

func (l *List) setConversations(convs []model.Conversation) {
	if convs == nil {
		convs = []model.Conversation{}
	}
	l.mu.Lock()
	l.convs = convs
	l.loading = false
	l.errMsg = ""
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// setError 保留上一次成功的列表
func (l *List) setError(err error) {
	zap.L().Warn("load conversations failed", zap.Error(err))
	l.mu.Lock()
	l.loading = false
	l.errMsg = MsgLoadConversationsFailed
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Conversations 当前会话摘要副本
func (l *List) Conversations() []model.Conversation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Conversation(nil), l.convs...)
}

// Loading 首次加载是否未完成
func (l *List) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Error 最近一次失败的提示
func (l *List) Error() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errMsg
}

// Unread 未读消息总数
func (l *List) Unread() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return UnreadTotal(l.convs)
}
