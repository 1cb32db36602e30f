package handler

import (
	"net/http"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 私信请求处理器，全部接口需要 CookieAuth
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建私信处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Conversations GET /api/v1/supabase/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	list, err := h.messageSvc.Conversations(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// Messages GET /api/v1/supabase/messages?conversationUserId=
func (h *MessageHandler) Messages(c *gin.Context) {
	var req request.GetMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, _ := middleware.UserID(c)
	list, err := h.messageSvc.Messages(userID, req.ConversationUserID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, list)
}

// Send POST /api/v1/supabase/messages，响应 201 与新消息
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, _ := middleware.UserID(c)
	msg, err := h.messageSvc.Send(c.Request.Context(), userID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead PUT /api/v1/supabase/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.messageSvc.MarkRead(c.Request.Context(), userID, id); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, MessageResponse{Message: "Message marked as read"})
}
