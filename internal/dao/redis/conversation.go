package redis

import (
	"context"
	"strconv"

	"campus_lostfound/pkg/constants"

	"go.uber.org/zap"
)

// 会话列表缓存按版本号寻址：写入消息后只递增版本号，旧版本的条目不再被读到，
// 在读取旧数据之后才写回的条目也落在旧版本上，直到过期

func conversationVersionKey(userID int64) string {
	return constants.CONVERSATION_VERSION_PREFIX + strconv.FormatInt(userID, 10)
}

// ConversationKey 用户当前版本的会话列表缓存键；版本号读取失败时返回 false，调用方应跳过缓存
func ConversationKey(ctx context.Context, cache CacheService, userID int64) (string, bool) {
	ver, err := cache.Get(ctx, conversationVersionKey(userID))
	if err != nil {
		zap.L().Error("redis get conversation version", zap.Error(err), zap.Int64("user_id", userID))
		return "", false
	}
	if ver == "" {
		ver = "0"
	}
	return constants.CONVERSATION_CACHE_PREFIX + strconv.FormatInt(userID, 10) + ":" + ver, true
}

// InvalidateConversations 递增这些用户的会话缓存版本号，返回后不会再读到旧列表
func InvalidateConversations(ctx context.Context, cache CacheService, userIDs ...int64) {
	for _, id := range userIDs {
		if _, err := cache.Incr(ctx, conversationVersionKey(id), constants.CONVERSATION_VERSION_TTL); err != nil {
			zap.L().Error("invalidate conversation cache", zap.Error(err), zap.Int64("user_id", id))
		}
	}
}
