package gormdb

import "gorm.io/gorm"

type messageRepository struct {
	db *gorm.DB
}

// Create 创建消息
func (r *messageRepository) Create(msg *MessageEntity) error {
	if err := r.db.Create(msg).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindByID 按 id 查找消息
func (r *messageRepository) FindByID(id int64) (*MessageEntity, error) {
	var msg MessageEntity
	if err := r.db.First(&msg, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 id=%d", id)
	}
	return &msg, nil
}

// FindBetween 查找两个用户之间的双向消息
func (r *messageRepository) FindBetween(userOneID, userTwoID int64) ([]MessageEntity, error) {
	var msgs []MessageEntity
	if err := r.db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userOneID, userTwoID, userTwoID, userOneID).Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 user1=%d user2=%d", userOneID, userTwoID)
	}
	return msgs, nil
}

// FindInvolving 查找某用户发出或收到的全部消息
func (r *messageRepository) FindInvolving(userID int64) ([]MessageEntity, error) {
	var msgs []MessageEntity
	if err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").Find(&msgs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户消息 user_id=%d", userID)
	}
	return msgs, nil
}

// MarkRead 标记消息已读
func (r *messageRepository) MarkRead(id int64) error {
	if err := r.db.Model(&MessageEntity{}).Where("id = ?", id).Update("is_read", true).Error; err != nil {
		return wrapDBErrorf(err, "更新消息已读 id=%d", id)
	}
	return nil
}

// DeleteByUserID 删除某用户发出或收到的全部消息
func (r *messageRepository) DeleteByUserID(userID int64) error {
	if err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).Delete(&MessageEntity{}).Error; err != nil {
		return wrapDBErrorf(err, "删除用户消息 user_id=%d", userID)
	}
	return nil
}
