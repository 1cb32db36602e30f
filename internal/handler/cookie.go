package handler

import (
	"net/http"

	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// sessionCookies 写入与清除 HttpOnly 会话 Cookie
type sessionCookies struct {
	secure bool
}

// issue 签发令牌并写入 Cookie，返回有效期（秒）
func (s sessionCookies) issue(c *gin.Context, userID int64) (int, error) {
	token, err := jwt.GenerateToken(userID)
	if err != nil {
		return 0, err
	}
	maxAge := int(jwt.Expiry().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", s.secure, true)
	return maxAge, nil
}

func (s sessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.secure, true)
}
