package user

import (
	"context"
	"strconv"

	"campus_lostfound/internal/dao/gormdb"
	myredis "campus_lostfound/internal/dao/redis"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/constants"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// userService 用户业务逻辑实现
type userService struct {
	repos *gormdb.Repositories
	cache myredis.AsyncCacheService
}

// NewUserService 构造函数，注入 Repository 与缓存
func NewUserService(repos *gormdb.Repositories, cache myredis.AsyncCacheService) *userService {
	return &userService{repos: repos, cache: cache}
}

// GetByID 获取用户
func (u *userService) GetByID(id int64) (*model.User, error) {
	user, err := u.repos.User.FindByID(id)
	if err != nil {
		return nil, notFoundOrBusy(err, "find user by id")
	}
	m := user.ToModel()
	return &m, nil
}

// GetByUsername 获取公开资料
func (u *userService) GetByUsername(username string) (*model.User, error) {
	user, err := u.repos.User.FindByUsername(username)
	if err != nil {
		return nil, notFoundOrBusy(err, "find user by username")
	}
	m := user.ToModel()
	return &m, nil
}

// DeleteAccount 在一个事务中删除用户的私信、帖子与账号
func (u *userService) DeleteAccount(ctx context.Context, id int64) error {
	// 先记下对话过的用户，删除后清理他们的会话缓存
	msgs, err := u.repos.Message.FindInvolving(id)
	if err != nil {
		zap.L().Error("find messages before account deletion", zap.Error(err))
		return errorx.ErrServerBusy
	}

	err = u.repos.Transaction(func(tx *gormdb.Repositories) error {
		if _, err := tx.User.FindByID(id); err != nil {
			return err
		}
		if err := tx.Message.DeleteByUserID(id); err != nil {
			return err
		}
		if err := tx.Post.DeleteByUserID(id); err != nil {
			return err
		}
		return tx.User.Delete(id)
	})
	if err != nil {
		return notFoundOrBusy(err, "delete account")
	}

	peers := make([]int64, 0, len(msgs))
	seen := make(map[int64]bool)
	for _, m := range msgs {
		other := m.SenderID
		if other == id {
			other = m.ReceiverID
		}
		if !seen[other] {
			seen[other] = true
			peers = append(peers, other)
		}
	}
	myredis.InvalidateConversations(ctx, u.cache, peers...)

	// 被删用户自己的缓存已无人读取，后台清理
	key, ok := myredis.ConversationKey(ctx, u.cache, id)
	u.cache.SubmitTask(func() {
		keys := []string{constants.CONVERSATION_VERSION_PREFIX + strconv.FormatInt(id, 10)}
		if ok {
			keys = append(keys, key)
		}
		if err := u.cache.Delete(context.Background(), keys...); err != nil {
			zap.L().Error("delete conversation cache", zap.Error(err))
		}
	})
	zap.L().Info("account deleted", zap.Int64("user_id", id))
	return nil
}

func notFoundOrBusy(err error, op string) error {
	if errorx.IsNotFound(err) {
		return errorx.New(errorx.CodeNotFound, "User not found")
	}
	zap.L().Error(op, zap.Error(err))
	return errorx.ErrServerBusy
}
