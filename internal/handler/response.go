package handler

import (
	"errors"
	"net/http"
	"strconv"

	"campus_lostfound/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse 统一错误响应 {"error": "..."}，参数错误额外带字段提示
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse 无数据的成功响应
type MessageResponse struct {
	Message string `json:"message"`
}

// statusOf 业务错误码到 HTTP 状态码
func statusOf(code int) int {
	switch code {
	case errorx.CodeInvalidParam:
		return http.StatusBadRequest
	case errorx.CodeUserExist:
		return http.StatusConflict
	case errorx.CodeInvalidPassword, errorx.CodeUnauthorized:
		return http.StatusUnauthorized
	case errorx.CodeForbidden, errorx.CodeUnverified:
		return http.StatusForbidden
	case errorx.CodeNotFound, errorx.CodeUserNotExist:
		return http.StatusNotFound
	case errorx.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HandleSuccess 返回 200 与数据
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// HandleError 通用错误处理方法
// 自动识别 errorx.CodeError 类型的业务错误，其他错误记录日志并返回 500
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		status := statusOf(codeErr.Code)
		if status == http.StatusInternalServerError {
			zap.L().Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
		}
		c.JSON(status, ErrorResponse{Error: codeErr.Msg})
		return
	}

	// 系统错误或未知错误：记录日志并返回服务繁忙
	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	if Validate != nil {
		if fields := Validate.Translate(err); len(fields) > 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: Validate.FirstMessage(err), Fields: fields})
			return
		}
	}

	// 非 validator 错误（如 JSON 格式错误）
	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
}

// idParam 解析路径中的正整数 id
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}
