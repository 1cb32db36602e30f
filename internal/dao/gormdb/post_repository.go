package gormdb

import "gorm.io/gorm"

type postRepository struct {
	db *gorm.DB
}

// listColumns 列表查询读取的列，不含图片数据
var listColumns = []string{"id", "user_id", "item_type", "content", "has_image", "created_at", "updated_at"}

// FindAll 全部帖子，最新的在前
func (r *postRepository) FindAll() ([]PostEntity, error) {
	var posts []PostEntity
	if err := r.db.Select(listColumns).Preload("User").Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, wrapDBError(err, "查询帖子列表")
	}
	return posts, nil
}

// FindByUserID 某用户的帖子，最新的在前
func (r *postRepository) FindByUserID(userID int64) ([]PostEntity, error) {
	var posts []PostEntity
	if err := r.db.Select(listColumns).Preload("User").Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户帖子 user_id=%d", userID)
	}
	return posts, nil
}

// FindByItemType 某分类的帖子，最新的在前
func (r *postRepository) FindByItemType(itemType string) ([]PostEntity, error) {
	var posts []PostEntity
	if err := r.db.Select(listColumns).Preload("User").Where("item_type = ?", itemType).
		Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询分类帖子 item_type=%s", itemType)
	}
	return posts, nil
}

// FindByID 按 id 查找帖子，包含图片
func (r *postRepository) FindByID(id int64) (*PostEntity, error) {
	var post PostEntity
	if err := r.db.Preload("User").First(&post, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询帖子 id=%d", id)
	}
	return &post, nil
}

// Create 创建帖子
func (r *postRepository) Create(post *PostEntity) error {
	if err := r.db.Omit("User").Create(post).Error; err != nil {
		return wrapDBError(err, "创建帖子")
	}
	return nil
}

// UpdateContent 更新帖子内容与分类
func (r *postRepository) UpdateContent(id int64, itemType, content string) error {
	err := r.db.Model(&PostEntity{}).Where("id = ?", id).
		Updates(map[string]any{"item_type": itemType, "content": content}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新帖子 id=%d", id)
	}
	return nil
}

// Delete 删除帖子
func (r *postRepository) Delete(id int64) error {
	if err := r.db.Delete(&PostEntity{}, "id = ?", id).Error; err != nil {
		return wrapDBErrorf(err, "删除帖子 id=%d", id)
	}
	return nil
}

// DeleteByUserID 删除某用户的全部帖子
func (r *postRepository) DeleteByUserID(userID int64) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&PostEntity{}).Error; err != nil {
		return wrapDBErrorf(err, "删除用户帖子 user_id=%d", userID)
	}
	return nil
}
