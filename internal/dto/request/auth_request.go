package request

// LoginRequest 用户名密码登录请求
// 使用位置:
//   - internal/session: Store.Login（客户端发送前校验）
//   - internal/handler: AuthHandler.Login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=32"`
	Password string `json:"password" binding:"required,max=72"`
}

// SignupRequest 注册请求
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// VerifyRequest 邮箱验证码校验请求
type VerifyRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verificationCode" binding:"required,len=6,numeric"`
}

// ResendRequest 重发验证码请求
// 邮箱既可放在 JSON 体中，也可作为查询参数 ?email=
type ResendRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}
