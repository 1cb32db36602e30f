package middleware

import (
	"net/http"

	"campus_lostfound/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie 保存会话令牌的 HttpOnly Cookie 名称
	SessionCookie = "auth-token"
	// ContextUserID 认证通过后存入 gin.Context 的用户 id 键
	ContextUserID = "user_id"
)

// CookieAuth 会话 Cookie 认证中间件
// 验证令牌并将用户 id 存入上下文，失败返回 401
func CookieAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Cookie 获取令牌
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		// 2. 验证令牌
		claims, err := jwt.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
			return
		}

		// 3. 将用户信息存入上下文，供后续 Handler 使用
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserID 读取 CookieAuth 存入的用户 id
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
