package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code   int    // 业务错误码
	Msg    string // 错误消息
	Status int    // HTTP 状态码，仅 CodeHTTP 及服务端错误使用，0 表示未知
	cause  error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 同码即视为同一类错误，便于 errors.Is(err, errorx.ErrTimeout) 这类判断
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.cause == nil && (t.Status == 0 || t.Status == e.Status)
}

// WithStatus 返回附带 HTTP 状态码的副本
func (e *CodeError) WithStatus(status int) *CodeError {
	cp := *e
	cp.Status = status
	return &cp
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeAuthentication, "Login failed")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:   code,
		Msg:    msg,
		Status: StatusOf(err),
		cause:  err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:   code,
		Msg:    fmt.Sprintf(format, args...),
		Status: StatusOf(err),
		cause:  err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// StatusOf 沿错误链查找第一个非零 HTTP 状态码
func StatusOf(err error) int {
	for err != nil {
		var codeErr *CodeError
		if !errors.As(err, &codeErr) {
			return 0
		}
		if codeErr.Status != 0 {
			return codeErr.Status
		}
		err = codeErr.cause
	}
	return 0
}

// HasCode 检查错误链中是否存在指定错误码
func HasCode(err error, code int) bool {
	for err != nil {
		var codeErr *CodeError
		if !errors.As(err, &codeErr) {
			return false
		}
		if codeErr.Code == code {
			return true
		}
		err = codeErr.cause
	}
	return false
}

// Message 返回适合展示给用户的消息（不含底层错误细节）
func Message(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// 业务状态码常量定义
const (
	CodeSuccess         = 1000 // 成功
	CodeInvalidParam    = 1001 // 请求参数错误
	CodeUserExist       = 1002 // 用户已存在
	CodeUserNotExist    = 1003 // 用户不存在
	CodeInvalidPassword = 1004 // 密码错误
	CodeServerBusy      = 1005 // 服务繁忙
	CodeUnauthorized    = 1006 // 未授权/认证失败
	CodeForbidden       = 1007 // 无权操作他人资源
	CodeNotFound        = 1008 // 资源不存在
	CodeUnverified      = 1009 // 邮箱未验证
	CodeDBError         = 1010 // 数据库错误
	CodeCacheError      = 1011 // 缓存错误
	CodeTooManyRequests = 1012 // 请求过于频繁
)

// 客户端错误分类
const (
	CodeNetwork   = 2001 // 请求未能送达或连接中断
	CodeTimeout   = 2002 // 超过请求时限被主动中止
	CodeHTTP      = 2003 // 非 2xx 响应
	CodeMalformed = 2004 // 成功响应但响应体为空或不是合法 JSON

	CodeAuthentication   = 2101 // 登录失败
	CodeRegistration     = 2102 // 注册失败
	CodeVerification     = 2103 // 邮箱验证失败
	CodeResend           = 2104 // 重发验证码失败
	CodeNotAuthenticated = 2105 // 需要登录的操作在未登录状态下被拒绝
	CodeCancelled        = 2106 // 用户取消了需要确认的操作
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam     = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy       = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized     = New(CodeUnauthorized, "请先登录")
	ErrForbidden        = New(CodeForbidden, "无权操作该资源")
	ErrNotFound         = New(CodeNotFound, "资源不存在")
	ErrTimeout          = New(CodeTimeout, "request timed out")
	ErrNetwork          = New(CodeNetwork, "network error")
	ErrMalformed        = New(CodeMalformed, "malformed response body")
	ErrNotAuthenticated = New(CodeNotAuthenticated, "You must be logged in to do that")
	ErrCancelled        = New(CodeCancelled, "cancelled")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound 与 HTTP 404）
func IsNotFound(err error) bool {
	if HasCode(err, CodeNotFound) || StatusOf(err) == 404 {
		return true
	}
	// 检查底层错误消息是否为 "record not found"
	return err != nil && err.Error() == "record not found"
}

// IsTimeout 检查错误链中是否包含超时错误
func IsTimeout(err error) bool {
	return HasCode(err, CodeTimeout)
}
