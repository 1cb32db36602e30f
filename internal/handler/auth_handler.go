// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"net/http"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/internal/service"
	"campus_lostfound/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc service.AuthService
	userSvc service.UserService
	cookies sessionCookies
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(authSvc service.AuthService, userSvc service.UserService, cookies sessionCookies) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc, cookies: cookies}
}

// LoginResponse 登录成功响应，令牌只在 Cookie 中
type LoginResponse struct {
	ExpiresIn int `json:"expiresIn"`
}

// Signup 注册
// POST /auth/signup
// 请求体: request.SignupRequest
// 响应: 新用户（未验证），不写入会话 Cookie
func (h *AuthHandler) Signup(c *gin.Context) {
	var req request.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.authSvc.Signup(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, user)
}

// Login 登录
// POST /auth/login
// 请求体: request.LoginRequest
// 响应: { expiresIn: int }，Set-Cookie: auth-token
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	expiresIn, err := h.cookies.issue(c, user.ID)
	if err != nil {
		zap.L().Error("issue session token", zap.Error(err))
		HandleError(c, errorx.ErrServerBusy)
		return
	}
	HandleSuccess(c, LoginResponse{ExpiresIn: expiresIn})
}

// Verify 校验邮箱验证码，成功后直接登录
// POST /auth/verify
// 请求体: request.VerifyRequest
func (h *AuthHandler) Verify(c *gin.Context) {
	var req request.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.authSvc.Verify(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	if _, err := h.cookies.issue(c, user.ID); err != nil {
		zap.L().Error("issue session token", zap.Error(err))
	}
	HandleSuccess(c, MessageResponse{Message: "User verified successfully"})
}

// Resend 重发验证码
// POST /auth/resend?email=
// 邮箱优先取查询参数，其次取 JSON 体
func (h *AuthHandler) Resend(c *gin.Context) {
	var req request.ResendRequest
	if email := c.Query("email"); email != "" {
		req.Email = email
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			HandleParamError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.authSvc.Resend(c.Request.Context(), req.Email); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, MessageResponse{Message: "Verification code resent successfully"})
}

// Logout 清除会话 Cookie，未登录时同样成功
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.clear(c)
	HandleSuccess(c, MessageResponse{Message: "logout successful"})
}

// Me 当前会话用户
// GET /auth/me 与 GET /api/v1/users/me，需要 CookieAuth
// 账号已删除时清除 Cookie 并返回 401
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}
	user, err := h.userSvc.GetByID(userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			h.cookies.clear(c)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
			return
		}
		HandleError(c, err)
		return
	}
	HandleSuccess(c, user)
}
