// Package posts 帖子的新建、编辑与删除流程
// 成功后的结果直接写回 feed.State，不重新拉取列表
package posts

import (
	"context"

	"campus_lostfound/internal/client"
	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/feed"
	"campus_lostfound/internal/infrastructure/validation"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// 展示给用户的提示
const (
	PromptDelete    = "Are you sure you want to delete this post?"
	MsgCreateFailed = "Failed to create post. Please try again."
	MsgEditFailed   = "Failed to update post. Please try again."
	MsgDeleteFailed = "Failed to delete post"
	MsgNotOwner     = "You can only change your own posts."
)

// API 帖子相关的后端接口，由 client.Client 实现
type API interface {
	CreatePost(ctx context.Context, form request.CreatePostForm, image *client.Upload) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, req request.UpdatePostRequest) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// SessionReader 只读会话来源
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Confirmer 破坏性操作前的用户确认
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc 函数形式的 Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Draft 新建帖子的表单内容
type Draft struct {
	ItemType  string
	Content   string
	ImageName string
	Image     []byte // 为空表示不带图片
}

// Service 帖子变更流程
type Service struct {
	api       API
	sessions  SessionReader
	feed      *feed.State
	validator *validation.Validator
	image     ImageOptions
}

// NewService 创建 Service；feed 为本视图持有的帖子集合
func NewService(api API, sessions SessionReader, state *feed.State, v *validation.Validator, image ImageOptions) *Service {
	return &Service{api: api, sessions: sessions, feed: state, validator: v, image: image}
}

// Create 新建帖子
// 未登录时不发请求；成功后把服务端返回的帖子放到列表最前并调用 dismiss 关闭表单
func (s *Service) Create(ctx context.Context, d Draft, dismiss func()) (*model.Post, error) {
	if !s.sessions.Snapshot().Authenticated() {
		return nil, errorx.ErrNotAuthenticated
	}
	form := request.CreatePostForm{ItemType: d.ItemType, Content: d.Content}
	if t, ok := model.ParseItemType(d.ItemType); ok {
		form.ItemType = string(t)
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, s.validator.FirstMessage(err))
	}

	var upload *client.Upload
	if len(d.Image) > 0 {
		var err error
		if upload, err = PrepareImage(d.ImageName, d.Image, s.image); err != nil {
			return nil, err
		}
	}

	post, err := s.api.CreatePost(ctx, form, upload)
	if err != nil {
		zap.L().Error("create post failed", zap.String("itemType", form.ItemType), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.GetCode(err), MsgCreateFailed)
	}
	s.feed.Prepend(*post)
	if dismiss != nil {
		dismiss()
	}
	return post, nil
}

// Edit 修改帖子内容与分类，成功后用服务端返回值替换本地条目
func (s *Service) Edit(ctx context.Context, id int64, content, itemType string) (*model.Post, error) {
	if err := s.checkOwner(id); err != nil {
		return nil, err
	}
	req := request.UpdatePostRequest{Content: content, ItemType: itemType}
	if t, ok := model.ParseItemType(itemType); ok {
		req.ItemType = string(t)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, s.validator.FirstMessage(err))
	}

	post, err := s.api.UpdatePost(ctx, id, req)
	if err != nil {
		zap.L().Error("update post failed", zap.Int64("postID", id), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.GetCode(err), MsgEditFailed)
	}
	s.feed.Replace(*post)
	return post, nil
}

// Delete 经确认后删除帖子
// 用户取消时返回 CodeCancelled 且不发请求；失败时本地集合保持不变
func (s *Service) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if err := s.checkOwner(id); err != nil {
		return err
	}
	if confirm == nil || !confirm.Confirm(PromptDelete) {
		return errorx.ErrCancelled
	}
	if err := s.api.DeletePost(ctx, id); err != nil {
		zap.L().Error("delete post failed", zap.Int64("postID", id), zap.Error(err))
		return errorx.Wrap(err, errorx.GetCode(err), MsgDeleteFailed)
	}
	s.feed.Remove(id)
	return nil
}

// checkOwner 要求已登录，且本地已知的帖子属于当前用户
func (s *Service) checkOwner(id int64) error {
	snap := s.sessions.Snapshot()
	if !snap.Authenticated() {
		return errorx.ErrNotAuthenticated
	}
	for _, p := range s.feed.Posts() {
		if p.ID == id && p.UserID != 0 && p.UserID != snap.UserID() {
			return errorx.New(errorx.CodeForbidden, MsgNotOwner)
		}
	}
	return nil
}
