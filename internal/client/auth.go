package client

import (
	"context"
	"net/http"
	"net/url"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
)

// Me GET /api/v1/users/me，返回当前会话用户
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/api/v1/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login POST /auth/login，成功后响应中的 Set-Cookie 被 CookieJar 保存
// 响应体不被使用，身份以随后的 Me 为准
func (c *Client) Login(ctx context.Context, req request.LoginRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/login", nil, req, nil)
}

// Signup POST /auth/signup
func (c *Client) Signup(ctx context.Context, req request.SignupRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/signup", nil, req, nil)
}

// Verify POST /auth/verify
func (c *Client) Verify(ctx context.Context, req request.VerifyRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/verify", nil, req, nil)
}

// Resend POST /auth/resend，邮箱同时放在查询参数和 JSON 体中
func (c *Client) Resend(ctx context.Context, req request.ResendRequest) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/resend", url.Values{"email": {req.Email}}, req, nil)
}

// Logout POST /auth/logout，服务端清除会话 Cookie
func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// DeleteMe DELETE /api/v1/users/me，删除账号及其全部数据
func (c *Client) DeleteMe(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/users/me", nil, nil, nil)
}

// GetUser GET /api/v1/users/{username}，不存在时返回 404 对应的 CodeHTTP 错误
func (c *Client) GetUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := c.getJSON(ctx, "/api/v1/users/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
