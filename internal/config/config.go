// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// BaseURLEnv 覆盖后端地址的环境变量
const BaseURLEnv = "LOSTFOUND_BASE_URL"

// DefaultMaxImageBytes 客户端与服务端共用的图片大小默认上限
const DefaultMaxImageBytes = 5 << 20

// DefaultBaseURL 未配置后端地址时使用的本地开发地址
const DefaultBaseURL = "http://localhost:8080"

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"
}

// ClientConfig 客户端访问后端的配置
type ClientConfig struct {
	BaseURL              string        `toml:"baseURL"`              // 后端地址，可被 LOSTFOUND_BASE_URL 覆盖
	RequestTimeout       time.Duration `toml:"requestTimeout"`       // 单次请求超时
	LoginSettleDelay     time.Duration `toml:"loginSettleDelay"`     // 登录成功后等待 Cookie 落地的时间
	ConversationInterval time.Duration `toml:"conversationInterval"` // 会话列表轮询间隔
	ChatInterval         time.Duration `toml:"chatInterval"`         // 聊天窗口轮询间隔
	ImageMaxDimension    int           `toml:"imageMaxDimension"`    // 上传前图片最长边（像素）
	ImageMaxBytes        int64         `toml:"imageMaxBytes"`        // 允许选择的原始图片大小上限
	Locale               string        `toml:"locale"`               // 表单校验提示语言："en" 或 "zh"
}

// ServerConfig 开发用后端服务配置
type ServerConfig struct {
	Host          string   `toml:"host"`          // 监听地址，如 "0.0.0.0"
	Port          int      `toml:"port"`          // 监听端口，如 8080
	AllowOrigins  []string `toml:"allowOrigins"`  // CORS 允许的来源
	SecureCookie  bool     `toml:"secureCookie"`  // 会话 Cookie 是否只在 HTTPS 下发送
	SSLRedirect   bool     `toml:"sslRedirect"`   // 是否强制跳转 HTTPS（由反向代理终止 TLS 时关闭）
	MaxImageSize  int64    `toml:"maxImageSize"`  // 上传图片大小上限（字节）
	AuthRateBurst int      `toml:"authRateBurst"` // 认证接口每个 IP 每分钟允许的请求数，负数表示不限流
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Driver       string `toml:"driver"`       // "sqlite" 或 "mysql"
	SqlitePath   string `toml:"sqlitePath"`   // sqlite 数据文件路径，":memory:" 表示内存库
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置，Host 为空时不启用缓存
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// JWTConfig 会话 Cookie 中 JWT 的签名配置
type JWTConfig struct {
	Secret      string `toml:"secret"`      // JWT 签名密钥，建议 32 字符以上
	ExpiryHours int    `toml:"expiryHours"` // 会话有效期（小时）
}

// MailConfig 验证码邮件配置（Mailgun），域名或密钥为空时只写日志
type MailConfig struct {
	Domain      string `toml:"domain"`
	APIKey      string `toml:"apiKey"`
	SenderEmail string `toml:"senderEmail"`
	SenderName  string `toml:"senderName"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig     `toml:"mainConfig"`
	ClientConfig   `toml:"clientConfig"`
	ServerConfig   `toml:"serverConfig"`
	DatabaseConfig `toml:"databaseConfig"`
	RedisConfig    `toml:"redisConfig"`
	LogConfig      `toml:"logConfig"`
	JWTConfig      `toml:"jwtConfig"`
	MailConfig     `toml:"mailConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml", // 从子目录运行时的路径
	"../../configs/config.toml",
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Load 解析指定路径的配置文件并补齐默认值，不影响全局单例
func Load(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	conf.applyDefaults()
	return conf, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
		config.applyDefaults()
	}
	return config
}

// Default 返回只含默认值的配置，测试与无配置文件运行时使用
func Default() *Config {
	conf := new(Config)
	conf.applyDefaults()
	return conf
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "campus_lostfound"
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}

	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		c.BaseURL = env
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.LoginSettleDelay <= 0 {
		c.LoginSettleDelay = 100 * time.Millisecond
	}
	if c.ConversationInterval <= 0 {
		c.ConversationInterval = 60 * time.Second
	}
	if c.ChatInterval <= 0 {
		c.ChatInterval = 30 * time.Second
	}
	if c.ImageMaxDimension <= 0 {
		c.ImageMaxDimension = 1600
	}
	if c.ImageMaxBytes <= 0 {
		c.ImageMaxBytes = DefaultMaxImageBytes
	}
	if c.Locale == "" {
		c.Locale = "en"
	}

	if c.ServerConfig.Host == "" {
		c.ServerConfig.Host = "127.0.0.1"
	}
	if c.ServerConfig.Port == 0 {
		c.ServerConfig.Port = 8080
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.MaxImageSize <= 0 {
		c.MaxImageSize = DefaultMaxImageBytes
	}
	// 客户端放行的图片不能超过服务端上限，否则只会在上传时得到 413
	if c.ImageMaxBytes > c.MaxImageSize {
		c.ImageMaxBytes = c.MaxImageSize
	}
	if c.AuthRateBurst == 0 {
		c.AuthRateBurst = 10
	}

	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "lostfound.db"
	}

	if c.Secret == "" {
		c.Secret = "dev-only-secret-change-me-0123456789"
	}
	if c.ExpiryHours <= 0 {
		c.ExpiryHours = 24
	}
	if c.SenderName == "" {
		c.SenderName = "Campus Lost & Found"
	}
}
