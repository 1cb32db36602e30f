package request

// SendMessageRequest 发送私信
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required,max=2000"`
	IsRead     bool   `json:"is_read"`
	PostID     *int64 `json:"post_id,omitempty"`
}

// GetMessagesRequest 查询与某个用户之间的全部私信
type GetMessagesRequest struct {
	ConversationUserID int64 `form:"conversationUserId" binding:"required,gt=0"`
}
