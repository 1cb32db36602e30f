package gormdb

import (
	"strconv"
	"time"

	"campus_lostfound/internal/model"
)

// UserEntity 用户表
type UserEntity struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Email            string `gorm:"size:100;uniqueIndex;not null"`
	Username         string `gorm:"size:32;uniqueIndex;not null"`
	PasswordHash     string `gorm:"size:100;not null"`
	EmailVerified    bool   `gorm:"not null;default:false"`
	VerificationCode string `gorm:"size:6"`
	CodeExpiresAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserEntity) TableName() string { return "users" }

// ToModel 转为对外的用户结构，不含密码与验证码
func (u *UserEntity) ToModel() model.User {
	return model.User{ID: u.ID, Email: u.Email, Username: u.Username, EmailVerified: u.EmailVerified}
}

// PostEntity 帖子表，图片以二进制列保存，列表查询不读取该列
type PostEntity struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"index;not null"`
	ItemType  string `gorm:"size:20;index;not null"`
	Content   string `gorm:"size:2000;not null"`
	HasImage  bool   `gorm:"not null;default:false"`
	Image     []byte
	ImageType string `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User UserEntity `gorm:"foreignKey:UserID"`
}

func (PostEntity) TableName() string { return "posts" }

// ToModel 需要预加载 User 才能得到用户名
func (p *PostEntity) ToModel() model.Post {
	return model.Post{
		ID:       p.ID,
		UserID:   p.UserID,
		Username: p.User.Username,
		ItemType: model.ItemType(p.ItemType),
		Content:  p.Content,
		HasImage: p.HasImage,
	}
}

// MessageEntity 私信表
type MessageEntity struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	SenderID   int64 `gorm:"index;not null"`
	ReceiverID int64 `gorm:"index;not null"`
	PostID     *int64
	Content    string `gorm:"size:2000;not null"`
	IsRead     bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (MessageEntity) TableName() string { return "messages" }

func (m *MessageEntity) ToModel() model.Message {
	return model.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  model.Timestamp{Time: m.CreatedAt},
		IsRead:     m.IsRead,
	}
}

// ConversationKey 会话标识：对方 id，有关联帖子时追加 "_帖子id"
func ConversationKey(otherUserID int64, postID *int64) string {
	key := strconv.FormatInt(otherUserID, 10)
	if postID != nil {
		key += "_" + strconv.FormatInt(*postID, 10)
	}
	return key
}
