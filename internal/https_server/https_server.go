// Package https_server 提供开发后端 HTTP 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"net/http"

	"campus_lostfound/internal/config"
	"campus_lostfound/internal/handler"
	"campus_lostfound/internal/infrastructure/logger"
	"campus_lostfound/internal/infrastructure/middleware"
	"campus_lostfound/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎
// 配置顺序：
//  1. 创建空白 Gin 引擎（不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 安全响应头与可选的 HTTPS 重定向
//  4. 配置 CORS 跨域规则（允许携带 Cookie）
//  5. 注册业务路由
func Init(conf *config.ServerConfig, handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()

	// 记录每个请求的详细信息（路径、状态码、耗时等）
	engine.Use(logger.GinLogger())
	// 捕获 panic 并记录堆栈
	engine.Use(logger.GinRecovery(true))

	engine.Use(middleware.SecureHeaders(conf.Host, conf.Port, conf.SSLRedirect))

	// 会话依赖 Cookie，来源必须明确列出，不能使用 "*"
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = conf.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Request-ID"}
	engine.Use(cors.New(corsConfig))

	// multipart 表单在内存中保留的上限，超出部分写入临时文件
	engine.MaxMultipartMemory = conf.MaxImageSize + 1<<20

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "Not found"})
	})

	rt := router.NewRouter(handlers, conf.AuthRateBurst)
	rt.RegisterRoutes(engine)

	return engine
}
