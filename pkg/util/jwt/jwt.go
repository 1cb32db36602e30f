// Package jwt 签发与校验会话令牌
// 令牌只放在 HttpOnly Cookie 中，客户端代码从不读取
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer         = "campus_lostfound"
	subjectSession = "session"
)

// Config JWT 配置
type Config struct {
	Secret string
	Expiry time.Duration
}

// 全局配置，由 Init 函数初始化
var jwtConfig *Config

// Init 初始化 JWT 配置
func Init(secret string, expiryHours int) {
	jwtConfig = &Config{
		Secret: secret,
		Expiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Expiry 会话有效期，用于设置 Cookie 的 MaxAge
func Expiry() time.Duration {
	return jwtConfig.Expiry
}

// Claims 自定义 JWT 声明
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken 为用户签发会话令牌
func GenerateToken(userID int64) (string, error) {
	if jwtConfig == nil {
		return "", errors.New("jwt: not initialised")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subjectSession,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}

// ParseToken 解析并验证令牌，返回用户 id
func ParseToken(tokenString string) (*Claims, error) {
	if jwtConfig == nil {
		return nil, errors.New("jwt: not initialised")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subjectSession),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
