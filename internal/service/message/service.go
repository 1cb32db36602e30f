// Package message 私信与会话摘要
// 会话摘要由消息实时汇总，按用户缓存在 Redis 中，写入消息后同步递增缓存版本号
package message

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"campus_lostfound/internal/dao/gormdb"
	myredis "campus_lostfound/internal/dao/redis"
	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/constants"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos *gormdb.Repositories
	cache myredis.AsyncCacheService
}

// NewMessageService 构造函数
func NewMessageService(repos *gormdb.Repositories, cache myredis.AsyncCacheService) *messageService {
	return &messageService{repos: repos, cache: cache}
}

// Conversations 当前用户的会话列表，最近活跃的在前
// 每个 (对方, 帖子) 组合是一个会话
func (m *messageService) Conversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	key, cacheable := myredis.ConversationKey(ctx, m.cache, userID)
	if cacheable {
		if cached, err := m.cache.Get(ctx, key); err != nil {
			// 缓存出错时继续查数据库
			zap.L().Error("redis get conversations", zap.Error(err))
		} else if cached != "" {
			var rsp []model.Conversation
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return rsp, nil
			}
			zap.L().Error("json unmarshal cache error", zap.String("key", key))
		}
	}

	msgs, err := m.repos.Message.FindInvolving(userID)
	if err != nil {
		zap.L().Error("find messages involving user", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list, err := m.summarize(userID, msgs)
	if err != nil {
		return nil, err
	}

	if !cacheable {
		return list, nil
	}
	if data, err := json.Marshal(list); err == nil {
		if err := m.cache.Set(ctx, key, string(data), constants.CONVERSATION_CACHE_TTL); err != nil {
			zap.L().Error("redis set conversations", zap.Error(err))
		}
	}
	return list, nil
}

// summarize msgs 需按时间倒序
func (m *messageService) summarize(userID int64, msgs []gormdb.MessageEntity) ([]model.Conversation, error) {
	byKey := make(map[string]*model.Conversation)
	order := make([]string, 0)
	otherIDs := make([]int64, 0)
	seenUser := make(map[int64]bool)

	for i := range msgs {
		msg := &msgs[i]
		other := msg.SenderID
		if other == userID {
			other = msg.ReceiverID
		}
		key := gormdb.ConversationKey(other, msg.PostID)
		conv, ok := byKey[key]
		if !ok {
			conv = &model.Conversation{
				ID:              key,
				OtherUserID:     other,
				LastMessage:     msg.Content,
				LastMessageTime: model.Timestamp{Time: msg.CreatedAt},
			}
			if msg.PostID != nil {
				postID := strconv.FormatInt(*msg.PostID, 10)
				conv.PostID = &postID
			}
			byKey[key] = conv
			order = append(order, key)
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
		if !seenUser[other] {
			seenUser[other] = true
			otherIDs = append(otherIDs, other)
		}
	}

	users, err := m.repos.User.FindByIDs(otherIDs)
	if err != nil {
		zap.L().Error("find conversation users", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	list := make([]model.Conversation, 0, len(order))
	for _, key := range order {
		conv := byKey[key]
		conv.OtherUserName = names[conv.OtherUserID]
		list = append(list, *conv)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastMessageTime.After(list[j].LastMessageTime.Time)
	})
	return list, nil
}

// Messages 与对方之间的全部消息，按时间升序
func (m *messageService) Messages(userID, otherUserID int64) ([]model.Message, error) {
	msgs, err := m.repos.Message.FindBetween(userID, otherUserID)
	if err != nil {
		zap.L().Error("find messages between users", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	out := make([]model.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, msgs[i].ToModel())
	}
	return out, nil
}

// Send 发送私信，新消息总是未读
func (m *messageService) Send(ctx context.Context, senderID int64, req request.SendMessageRequest) (*model.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "Message content is required")
	}
	if utf8.RuneCountInString(content) > constants.MESSAGE_MAX_LENGTH {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "Message must be at most %d characters", constants.MESSAGE_MAX_LENGTH)
	}
	if req.ReceiverID == senderID {
		return nil, errorx.New(errorx.CodeInvalidParam, "You cannot message yourself")
	}
	if _, err := m.repos.User.FindByID(req.ReceiverID); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "Receiver not found")
		}
		zap.L().Error("find receiver", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if req.PostID != nil {
		if _, err := m.repos.Post.FindByID(*req.PostID); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.New(errorx.CodeNotFound, "Post not found")
			}
			zap.L().Error("find message post", zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
	}

	msg := &gormdb.MessageEntity{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		PostID:     req.PostID,
		Content:    content,
	}
	if err := m.repos.Message.Create(msg); err != nil {
		zap.L().Error("create message", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	myredis.InvalidateConversations(ctx, m.cache, senderID, req.ReceiverID)

	out := msg.ToModel()
	return &out, nil
}

// MarkRead 标记已读，只有接收者可以操作，重复标记无副作用
func (m *messageService) MarkRead(ctx context.Context, userID, messageID int64) error {
	msg, err := m.repos.Message.FindByID(messageID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "Message not found")
		}
		zap.L().Error("find message", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if msg.ReceiverID != userID {
		return errorx.New(errorx.CodeForbidden, "Only the receiver can mark a message as read")
	}
	if msg.IsRead {
		return nil
	}
	if err := m.repos.Message.MarkRead(messageID); err != nil {
		zap.L().Error("mark message read", zap.Error(err))
		return errorx.ErrServerBusy
	}
	myredis.InvalidateConversations(ctx, m.cache, userID)
	return nil
}
