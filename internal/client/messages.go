package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
)

// Conversations GET /api/v1/supabase/conversations
func (c *Client) Conversations(ctx context.Context) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := c.getJSON(ctx, "/api/v1/supabase/conversations", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Conversation{}
	}
	return list, nil
}

// Messages GET /api/v1/supabase/messages?conversationUserId=
func (c *Client) Messages(ctx context.Context, otherUserID int64) ([]model.Message, error) {
	var list []model.Message
	query := url.Values{"conversationUserId": {strconv.FormatInt(otherUserID, 10)}}
	if err := c.getJSON(ctx, "/api/v1/supabase/messages", query, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Message{}
	}
	return list, nil
}

// SendMessage POST /api/v1/supabase/messages
func (c *Client) SendMessage(ctx context.Context, req request.SendMessageRequest) (*model.Message, error) {
	var msg model.Message
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/supabase/messages", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead PUT /api/v1/supabase/messages/{id}/read
func (c *Client) MarkRead(ctx context.Context, messageID int64) error {
	path := "/api/v1/supabase/messages/" + strconv.FormatInt(messageID, 10) + "/read"
	return c.sendJSON(ctx, http.MethodPut, path, nil, nil, nil)
}
