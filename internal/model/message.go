package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Message 一条私信
// 除 IsRead 外不可变，IsRead 只会从 false 变为 true
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  Timestamp `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}

// Conversation 服务端汇总的会话摘要，客户端只读不重算
type Conversation struct {
	ID              string    `json:"id"`
	OtherUserID     int64     `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime Timestamp `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
	PostID          *string   `json:"post_id"`
}

// timestampLayouts 后端可能返回带时区或不带时区的时间
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp 兼容多种后端时间格式的时间类型，序列化为 RFC3339
type Timestamp struct {
	time.Time
}

// UnmarshalJSON 解析字符串时间，null 与空串解析为零值
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("model: unrecognised timestamp %q", s)
}

// MarshalJSON 输出 RFC3339 格式
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
