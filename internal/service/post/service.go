// Package post 帖子业务逻辑
package post

import (
	"strings"

	"campus_lostfound/internal/dao/gormdb"
	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Image 帖子图片
type Image struct {
	Data        []byte
	ContentType string
}

// postService 帖子业务逻辑实现
type postService struct {
	repos *gormdb.Repositories
}

// NewPostService 构造函数
func NewPostService(repos *gormdb.Repositories) *postService {
	return &postService{repos: repos}
}

// ListAll 全部帖子
func (p *postService) ListAll() ([]model.Post, error) {
	posts, err := p.repos.Post.FindAll()
	if err != nil {
		zap.L().Error("list posts", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toModels(posts), nil
}

// ListByUsername 某用户的帖子，用户不存在返回 CodeNotFound
func (p *postService) ListByUsername(username string) ([]model.Post, error) {
	user, err := p.repos.User.FindByUsername(username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "User not found")
		}
		zap.L().Error("find user by username", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return p.ListByUser(user.ID)
}

// ListByUser 某用户的帖子
func (p *postService) ListByUser(userID int64) ([]model.Post, error) {
	posts, err := p.repos.Post.FindByUserID(userID)
	if err != nil {
		zap.L().Error("list user posts", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toModels(posts), nil
}

// ListByItemType 某分类的帖子
func (p *postService) ListByItemType(itemType string) ([]model.Post, error) {
	t, ok := model.ParseItemType(itemType)
	if !ok || t == model.AllCategories {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "Invalid item type: %s", itemType)
	}
	posts, err := p.repos.Post.FindByItemType(string(t))
	if err != nil {
		zap.L().Error("list posts by type", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toModels(posts), nil
}

// Create 发帖，图片可选
func (p *postService) Create(userID int64, form request.CreatePostForm, image *Image) (*model.Post, error) {
	t, ok := model.ParseItemType(form.ItemType)
	if !ok || t == model.AllCategories {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "Invalid item type: %s", form.ItemType)
	}
	user, err := p.repos.User.FindByID(userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUnauthorized
		}
		zap.L().Error("find post author", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	entity := &gormdb.PostEntity{
		UserID:   userID,
		ItemType: string(t),
		Content:  strings.TrimSpace(form.Content),
	}
	if image != nil && len(image.Data) > 0 {
		contentType, err := sniffImage(image.Data)
		if err != nil {
			return nil, err
		}
		entity.HasImage = true
		entity.Image = image.Data
		entity.ImageType = contentType
	}
	if err := p.repos.Post.Create(entity); err != nil {
		zap.L().Error("create post", zap.Error(err))
		return nil, errorx.New(errorx.CodeServerBusy, "Failed to create post")
	}
	entity.User = *user

	m := entity.ToModel()
	return &m, nil
}

// Update 修改内容与分类
func (p *postService) Update(userID, postID int64, req request.UpdatePostRequest) (*model.Post, error) {
	t, ok := model.ParseItemType(req.ItemType)
	if !ok || t == model.AllCategories {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "Invalid item type: %s", req.ItemType)
	}
	if _, err := p.ownedPost(userID, postID); err != nil {
		return nil, err
	}
	if err := p.repos.Post.UpdateContent(postID, string(t), strings.TrimSpace(req.Content)); err != nil {
		zap.L().Error("update post", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	updated, err := p.repos.Post.FindByID(postID)
	if err != nil {
		zap.L().Error("reload post", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	m := updated.ToModel()
	return &m, nil
}

// Delete 删除帖子
func (p *postService) Delete(userID, postID int64) error {
	if _, err := p.ownedPost(userID, postID); err != nil {
		return err
	}
	if err := p.repos.Post.Delete(postID); err != nil {
		zap.L().Error("delete post", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// GetImage 帖子图片，无图返回 CodeNotFound
func (p *postService) GetImage(postID int64) (*Image, error) {
	post, err := p.repos.Post.FindByID(postID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "Post not found")
		}
		zap.L().Error("find post image", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !post.HasImage || len(post.Image) == 0 {
		return nil, errorx.New(errorx.CodeNotFound, "Post has no image")
	}
	return &Image{Data: post.Image, ContentType: post.ImageType}, nil
}

// ownedPost 查找帖子并校验作者
func (p *postService) ownedPost(userID, postID int64) (*gormdb.PostEntity, error) {
	post, err := p.repos.Post.FindByID(postID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "Post not found")
		}
		zap.L().Error("find post", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if post.UserID != userID {
		return nil, errorx.New(errorx.CodeForbidden, "You can only modify your own posts")
	}
	return post, nil
}

// sniffImage 以内容判断图片类型，不信任客户端声明的 Content-Type
func sniffImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, allowed := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", errorx.Newf(errorx.CodeInvalidParam, "Unsupported image type: %s", mt.String())
}

func toModels(posts []gormdb.PostEntity) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].ToModel())
	}
	return out
}
