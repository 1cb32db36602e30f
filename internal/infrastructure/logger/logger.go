// Package logger 基于 zap 的全局日志，文件输出由 lumberjack 轮转
package logger

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"campus_lostfound/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 运行模式
const (
	ModeDev     = "dev"     // 控制台 + 文件
	ModeRelease = "release" // 仅文件，JSON
	ModeTUI     = "tui"     // 仅文件；终端被界面占用，不能再往 stdout 写日志
)

// Init 按模式构建 Logger 并替换全局 zap.L()
func Init(cfg *config.LogConfig, mode string) error {
	if cfg == nil {
		return errors.New("logger: nil config")
	}
	applyDefaults(cfg)

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("logger: bad level %q: %w", cfg.Level, err)
	}

	core := newCore(rotatingFile(cfg), os.Stdout, level, mode)
	zap.ReplaceGlobals(zap.New(core, zap.AddCaller()))
	return nil
}

func applyDefaults(cfg *config.LogConfig) {
	if cfg.LogPath == "" {
		cfg.LogPath = "logs"
	}
	if cfg.FileName == "" {
		cfg.FileName = "app.log"
	}
	if !filepath.IsAbs(cfg.FileName) && filepath.Dir(cfg.FileName) == "." {
		cfg.FileName = filepath.Join(cfg.LogPath, cfg.FileName)
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 30
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
}

// newCore 文件始终写 JSON；只有开发模式再加一路可读的控制台输出
func newCore(file zapcore.WriteSyncer, console io.Writer, level zapcore.Level, mode string) zapcore.Core {
	fileCore := zapcore.NewCore(jsonEncoder(), file, level)
	if mode != ModeDev && mode != gin.DebugMode {
		return fileCore
	}
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(console)),
		zapcore.DebugLevel,
	)
	return zapcore.NewTee(fileCore, consoleCore)
}

func rotatingFile(cfg *config.LogConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FileName,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // 天
	})
}

func jsonEncoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}

// userIDKey 认证中间件写入 gin.Context 的用户 id 键
const userIDKey = "user_id"

// GinLogger 每个请求一条日志；5xx 记为 Error，4xx 记为 Warn
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", time.Since(start)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if id := c.GetHeader("X-Request-ID"); id != "" {
			fields = append(fields, zap.String("requestID", id))
		}
		if uid, ok := c.Get(userIDKey); ok {
			fields = append(fields, zap.Any("userID", uid))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			zap.L().Error("http request", fields...)
		case status >= http.StatusBadRequest:
			zap.L().Warn("http request", fields...)
		default:
			zap.L().Info("http request", fields...)
		}
	}
}

// GinRecovery 捕获 panic 返回 500；连接已断开时只记录日志
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			dump, _ := httputil.DumpRequest(c.Request, false)
			fields := []zap.Field{zap.Any("error", rec), zap.String("request", string(dump))}

			if err, ok := rec.(error); ok && connectionLost(err) {
				zap.L().Warn("client connection lost", append(fields, zap.String("path", c.Request.URL.Path))...)
				_ = c.Error(err)
				c.Abort()
				return
			}
			if stack {
				fields = append(fields, zap.ByteString("stack", debug.Stack()))
			}
			zap.L().Error("recovered from panic", fields...)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

// connectionLost 对端已关闭连接（broken pipe / connection reset）
func connectionLost(err error) bool {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	msg := strings.ToLower(opErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
