// Package chat 会话列表与单个聊天窗口
// 两者都通过 poller 周期刷新，只在已登录时启动
package chat

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// 展示给用户的提示
const (
	MsgLoadMessagesFailed      = "Failed to load messages"
	MsgSendFailed              = "Failed to send message"
	MsgLoadConversationsFailed = "Failed to load conversations"
)

// API 消息相关的后端接口，由 client.Client 实现
type API interface {
	Conversations(ctx context.Context) ([]model.Conversation, error)
	Messages(ctx context.Context, otherUserID int64) ([]model.Message, error)
	SendMessage(ctx context.Context, req request.SendMessageRequest) (*model.Message, error)
	MarkRead(ctx context.Context, messageID int64) error
}

// SessionReader 只读会话来源
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Window 与某个用户的聊天窗口
type Window struct {
	api      API
	sessions SessionReader
	other    int64
	postID   *int64
	poll     *poller.Poller[[]model.Message]

	mu       sync.RWMutex
	messages []model.Message
	loading  bool
	sending  bool
	errMsg   string
	onChange func()
}

// NewWindow 创建聊天窗口；postID 来自会话摘要，可以为空或非数字
func NewWindow(api API, sessions SessionReader, otherUserID int64, postID *string, opts poller.Options) *Window {
	w := &Window{
		api:      api,
		sessions: sessions,
		other:    otherUserID,
		postID:   parsePostID(postID),
		messages: []model.Message{},
		loading:  true,
	}
	if opts.Name == "" {
		opts.Name = "chat-window"
	}
	w.poll = poller.New[[]model.Message](w.fetch, opts)
	w.poll.OnUpdate(w.setMessages)
	w.poll.OnError(w.setError)
	return w
}

func parsePostID(s *string) *int64 {
	if s == nil {
		return nil
	}
	id, err := strconv.ParseInt(*s, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// OtherUserID 对方用户 id
func (w *Window) OtherUserID() int64 { return w.other }

// OnChange 状态变化回调，在拉取协程中调用
func (w *Window) OnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Start 立即加载消息并开始轮询；未登录时不启动
func (w *Window) Start(ctx context.Context) error {
	if !w.sessions.Snapshot().Authenticated() {
		return errorx.ErrNotAuthenticated
	}
	w.poll.Start(ctx)
	return nil
}

// Stop 停止轮询，可重复调用
func (w *Window) Stop() {
	w.poll.Stop()
}

func (w *Window) fetch(ctx context.Context) ([]model.Message, error) {
	return w.api.Messages(ctx, w.other)
}

func (w *Window) setMessages(msgs []model.Message) {
	if msgs == nil {
		msgs = []model.Message{}
	}
	w.mu.Lock()
	w.messages = msgs
	w.loading = false
	w.errMsg = ""
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (w *Window) setError(err error) {
	zap.L().Warn("load messages failed", zap.Int64("otherUserID", w.other), zap.Error(err))
	w.mu.Lock()
	w.loading = false
	w.errMsg = MsgLoadMessagesFailed
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Messages 当前消息列表副本
func (w *Window) Messages() []model.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]model.Message(nil), w.messages...)
}

// Loading 首次加载是否未完成
func (w *Window) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// Error 最近一次失败的提示
func (w *Window) Error() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.errMsg
}

// Send 发送消息后整体重新加载消息列表，不在本地追加
// 空白内容或发送中的重复提交被忽略
func (w *Window) Send(ctx context.Context, content string) error {
	if !w.sessions.Snapshot().Authenticated() {
		return errorx.ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	w.mu.Lock()
	if w.sending {
		w.mu.Unlock()
		return nil
	}
	w.sending = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.sending = false
		w.mu.Unlock()
	}()

	req := request.SendMessageRequest{ReceiverID: w.other, Content: content, PostID: w.postID}
	if _, err := w.api.SendMessage(ctx, req); err != nil {
		zap.L().Error("send message failed", zap.Int64("receiverID", w.other), zap.Error(err))
		w.mu.Lock()
		w.errMsg = MsgSendFailed
		w.mu.Unlock()
		return errorx.Wrap(err, errorx.GetCode(err), MsgSendFailed)
	}
	// 刷新失败由 OnError 记录
	_ = w.poll.Refresh(ctx)
	return nil
}

// MarkRead 把一条消息标记为已读；失败只记录日志
func (w *Window) MarkRead(ctx context.Context, messageID int64) {
	if err := w.api.MarkRead(ctx, messageID); err != nil {
		zap.L().Warn("mark message read failed", zap.Int64("messageID", messageID), zap.Error(err))
	}
}
