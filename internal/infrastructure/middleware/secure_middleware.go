package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// SecureHeaders 安全响应头，sslRedirect 为 true 时把 HTTP 请求重定向到 HTTPS
// 由反向代理终止 TLS 时应关闭 sslRedirect
func SecureHeaders(host string, port int, sslRedirect bool) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建对象
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        sslRedirect,
		SSLHost:            host + ":" + strconv.Itoa(port),
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			// 重定向时 secure 已写好响应，这里只需终止处理链
			zap.L().Debug("secure middleware stopped request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
