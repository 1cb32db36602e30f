package constants

import "time"

const (
	VERIFICATION_CODE_LENGTH = 6                // 邮箱验证码位数
	VERIFICATION_CODE_TTL    = 10 * time.Minute // 验证码有效期
	RESEND_INTERVAL          = time.Minute      // 两次发送验证码的最小间隔
	CONVERSATION_CACHE_TTL   = time.Minute      // 会话列表缓存有效期
	CONVERSATION_VERSION_TTL = 24 * time.Hour   // 会话缓存版本号有效期，需远大于缓存有效期
	MESSAGE_MAX_LENGTH       = 2000             // 单条私信最大字符数
)

// 缓存键前缀
const (
	CONVERSATION_CACHE_PREFIX   = "conversations_"     // 会话列表缓存，后接 用户id:版本号
	CONVERSATION_VERSION_PREFIX = "conversations_ver_" // 会话列表缓存版本号，后接用户 id
	RESEND_THROTTLE_PREFIX      = "verify_code_"       // 重发验证码的频率限制，后接邮箱
)
