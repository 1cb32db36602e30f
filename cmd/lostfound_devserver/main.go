package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_lostfound/internal/config"
	"campus_lostfound/internal/dao/gormdb"
	myredis "campus_lostfound/internal/dao/redis"
	"campus_lostfound/internal/handler"
	"campus_lostfound/internal/https_server"
	"campus_lostfound/internal/infrastructure/logger"
	"campus_lostfound/internal/infrastructure/mail"
	"campus_lostfound/internal/service"
	"campus_lostfound/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (default: search configs/)")
	flag.Parse()

	// 1. 加载配置
	conf := config.GetConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config failed: %v", err)
		}
		conf = loaded
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	if conf.Mode == logger.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos, err := gormdb.Init(&conf.DatabaseConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	defer repos.Close()

	// 4. 初始化 Redis（可选）
	cache, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}

	// 5. 初始化 JWT 与参数校验翻译
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.ExpiryHours)
	if err := handler.InitTrans(conf.Locale); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}

	// 6. 初始化 Service 与 Handler 层 (依赖注入)
	svc := service.NewServices(repos, cache, mail.Init(&conf.MailConfig))
	handlers := handler.NewHandlers(svc, handler.Options{
		SecureCookie: conf.SecureCookie,
		MaxImageSize: conf.MaxImageSize,
	})

	// 7. 启动服务
	addr := fmt.Sprintf("%s:%d", conf.ServerConfig.Host, conf.ServerConfig.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           https_server.Init(&conf.ServerConfig, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("dev server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	if err := cache.Close(); err != nil {
		zap.L().Error("cache close", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
