// Package model 定义前后端共享的领域模型
// 字段的 JSON 名称与后端 REST 接口保持一致
package model

// User 当前登录用户或公开资料
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
}

// Valid 响应体解析出的用户必须带有 ID 和用户名，否则视为无会话
func (u *User) Valid() bool {
	return u != nil && u.ID > 0 && u.Username != ""
}
