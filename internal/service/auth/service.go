// Package auth 提供认证相关的业务逻辑
// 处理注册、邮箱验证码与密码登录
package auth

import (
	"context"
	"strings"
	"time"

	"campus_lostfound/internal/dao/gormdb"
	myredis "campus_lostfound/internal/dao/redis"
	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/mail"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/constants"
	"campus_lostfound/pkg/errorx"
	"campus_lostfound/pkg/util/random"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service 认证服务实现
type Service struct {
	repos  *gormdb.Repositories
	cache  myredis.CacheService // 缓存服务（用于重发频率限制）
	mailer mail.CodeSender
	now    func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *gormdb.Repositories, cache myredis.CacheService, mailer mail.CodeSender) *Service {
	return &Service{
		repos:  repos,
		cache:  cache,
		mailer: mailer,
		now:    time.Now,
	}
}

// Signup 注册
func (s *Service) Signup(ctx context.Context, req request.SignupRequest) (*model.User, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.repos.User.ExistsByUsernameOrEmail(req.Username, email)
	if err != nil {
		zap.L().Error("check user exists", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if exists {
		return nil, errorx.New(errorx.CodeUserExist, "Username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("hash password", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	code, expiresAt, err := s.newCode()
	if err != nil {
		return nil, err
	}

	user := &gormdb.UserEntity{
		Email:            email,
		Username:         req.Username,
		PasswordHash:     string(hash),
		VerificationCode: code,
		CodeExpiresAt:    &expiresAt,
	}
	if err := s.repos.User.Create(user); err != nil {
		zap.L().Error("create user", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 发送失败不回滚注册，用户可以通过重发获取新验证码
	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Username, code); err != nil {
		zap.L().Error("send verification code", zap.Error(err), zap.String("email", user.Email))
	}
	s.markSent(ctx, user.Email)

	m := user.ToModel()
	return &m, nil
}

// Verify 校验验证码
// 已验证的用户直接返回成功
func (s *Service) Verify(ctx context.Context, req request.VerifyRequest) (*model.User, error) {
	user, err := s.repos.User.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "User not found")
		}
		zap.L().Error("find user by email", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if user.EmailVerified {
		m := user.ToModel()
		return &m, nil
	}
	if user.CodeExpiresAt == nil || user.CodeExpiresAt.Before(s.now()) {
		return nil, errorx.New(errorx.CodeInvalidParam, "Verification code expired")
	}
	if user.VerificationCode != req.VerificationCode {
		return nil, errorx.New(errorx.CodeInvalidParam, "Invalid verification code")
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	user.CodeExpiresAt = nil
	if err := s.repos.User.Update(user); err != nil {
		zap.L().Error("activate user", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	_ = s.cache.Delete(ctx, constants.RESEND_THROTTLE_PREFIX+user.Email)

	m := user.ToModel()
	return &m, nil
}

// Resend 重发验证码，同一邮箱在 RESEND_INTERVAL 内只能发送一次
func (s *Service) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.repos.User.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "User not found")
		}
		zap.L().Error("find user by email", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if user.EmailVerified {
		return errorx.New(errorx.CodeInvalidParam, "User is already verified")
	}

	sent, err := s.cache.Get(ctx, constants.RESEND_THROTTLE_PREFIX+email)
	if err != nil {
		// 缓存不可用时不阻塞重发
		zap.L().Warn("resend throttle check failed", zap.Error(err))
	}
	if sent != "" {
		return errorx.New(errorx.CodeTooManyRequests, "A code was sent recently. Please wait a minute before requesting another.")
	}

	code, expiresAt, err := s.newCode()
	if err != nil {
		return err
	}
	user.VerificationCode = code
	user.CodeExpiresAt = &expiresAt
	if err := s.repos.User.Update(user); err != nil {
		zap.L().Error("update verification code", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Username, code); err != nil {
		zap.L().Error("resend verification code", zap.Error(err), zap.String("email", email))
		return errorx.ErrServerBusy
	}
	s.markSent(ctx, email)
	return nil
}

// Login 登录
func (s *Service) Login(_ context.Context, req request.LoginRequest) (*model.User, error) {
	user, err := s.repos.User.FindByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidPassword, "Invalid username or password")
		}
		zap.L().Error("find user by username", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errorx.New(errorx.CodeInvalidPassword, "Invalid username or password")
	}
	if !user.EmailVerified {
		return nil, errorx.New(errorx.CodeUnverified, "User is not verified")
	}
	m := user.ToModel()
	return &m, nil
}

func (s *Service) newCode() (string, time.Time, error) {
	code, err := random.Digits(constants.VERIFICATION_CODE_LENGTH)
	if err != nil {
		zap.L().Error("generate verification code", zap.Error(err))
		return "", time.Time{}, errorx.ErrServerBusy
	}
	return code, s.now().Add(constants.VERIFICATION_CODE_TTL), nil
}

// markSent 记录发送时间用于重发频率限制，失败只写日志
func (s *Service) markSent(ctx context.Context, email string) {
	if err := s.cache.Set(ctx, constants.RESEND_THROTTLE_PREFIX+email, "1", constants.RESEND_INTERVAL); err != nil {
		zap.L().Warn("resend throttle write failed", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
