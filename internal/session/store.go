// Package session 维护进程内唯一的登录会话
// Store 是会话的唯一写入方；其他组件只能读取快照或订阅变更
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/validation"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// State 会话状态机的状态
type State int

const (
	StateBootstrapping State = iota // 启动时尚未确认身份
	StateAnonymous                  // 未登录
	StateAuthenticated              // 已登录
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot 某一时刻的会话只读副本
type Snapshot struct {
	User    *model.User
	Loading bool
	State   State
}

// Authenticated 恒等于 User != nil
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// UserID 未登录时返回 0
func (s Snapshot) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

// API 会话相关的后端接口，由 client.Client 实现
type API interface {
	Me(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, req request.LoginRequest) error
	Signup(ctx context.Context, req request.SignupRequest) error
	Verify(ctx context.Context, req request.VerifyRequest) error
	Resend(ctx context.Context, req request.ResendRequest) error
	Logout(ctx context.Context) error
	DeleteMe(ctx context.Context) error
}

// PromptDeleteAccount 删除账号前的确认提示
const PromptDeleteAccount = "Delete your account and all of your posts? This cannot be undone."

// Options Store 的可选参数
type Options struct {
	// SettleDelay 登录成功到读取会话之间的等待，给 Cookie 落地留出时间
	SettleDelay time.Duration
	// Validator 表单校验器，为 nil 时使用英文校验器
	Validator *validation.Validator
}

// Store 会话存储
type Store struct {
	api       API
	validator *validation.Validator
	settle    time.Duration

	mu   sync.RWMutex
	snap Snapshot
	// gen 每次身份被显式改变（登出、清空）时递增，旧的 bootstrap 结果据此丢弃
	gen     uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewStore 创建处于 Bootstrapping 状态的 Store，调用方随后应调用 Bootstrap
func NewStore(api API, opts Options) (*Store, error) {
	v := opts.Validator
	if v == nil {
		var err error
		if v, err = validation.New("en"); err != nil {
			return nil, err
		}
	}
	return &Store{
		api:       api,
		validator: v,
		settle:    opts.SettleDelay,
		snap:      Snapshot{Loading: true, State: StateBootstrapping},
		subs:      make(map[int]chan Snapshot),
	}, nil
}

// Snapshot 当前会话快照
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe 订阅会话变更；通道只保留最新一次快照
// 返回的 cancel 必须在不再需要时调用
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snap
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// setLocked 写入新快照并通知订阅者，调用方须持有写锁
func (s *Store) setLocked(next Snapshot) {
	s.snap = next
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.Loading = loading
	s.setLocked(next)
}

// Bootstrap 通过 "我是谁" 接口确认身份
// 任何失败（网络、非 2xx、空响应体、解析失败）都落到未登录状态，从不返回错误
func (s *Store) Bootstrap(ctx context.Context) Snapshot {
	s.mu.Lock()
	gen := s.gen
	next := s.snap
	next.Loading = true
	s.setLocked(next)
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		if errorx.StatusOf(err) != http.StatusUnauthorized {
			zap.L().Warn("session bootstrap failed", zap.Error(err))
		}
		user = nil
	} else if !user.Valid() {
		zap.L().Warn("session bootstrap returned an unusable user body")
		user = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// 期间发生了登出或清空，以那次操作的结果为准
		next = s.snap
		next.Loading = false
		s.setLocked(next)
		return next
	}
	next = Snapshot{User: user, Loading: false, State: StateAnonymous}
	if user != nil {
		next.State = StateAuthenticated
	}
	s.setLocked(next)
	return next
}

// Login 提交用户名密码，成功后等待片刻再通过 Bootstrap 读取身份
// 失败时返回 CodeAuthentication 错误，会话保持不变
func (s *Store) Login(ctx context.Context, username, password string) error {
	req := request.LoginRequest{Username: username, Password: password}
	if err := s.validator.Struct(req); err != nil {
		return errorx.Wrap(err, errorx.CodeAuthentication, s.validator.FirstMessage(err))
	}

	s.setLoading(true)
	if err := s.api.Login(ctx, req); err != nil {
		s.setLoading(false)
		zap.L().Info("login rejected", zap.String("username", username), zap.Error(err))
		return errorx.Wrap(err, errorx.CodeAuthentication, loginMessage(err))
	}

	if err := sleep(ctx, s.settle); err != nil {
		s.setLoading(false)
		return errorx.Wrap(err, errorx.CodeAuthentication, "Login was interrupted")
	}
	if snap := s.Bootstrap(ctx); !snap.Authenticated() {
		return errorx.New(errorx.CodeAuthentication, "Login succeeded but the session could not be established. Please try again.")
	}
	return nil
}

// RegisterResult 注册结果
type RegisterResult struct {
	// VerificationRequired 账号已创建但需要先完成邮箱验证
	VerificationRequired bool
}

// Register 注册新账号；若后端要求邮箱验证，会话保持未登录并在结果中标明
func (s *Store) Register(ctx context.Context, email, username, password string) (RegisterResult, error) {
	req := request.SignupRequest{Email: email, Username: username, Password: password}
	if err := s.validator.Struct(req); err != nil {
		return RegisterResult{}, errorx.Wrap(err, errorx.CodeRegistration, s.validator.FirstMessage(err))
	}

	s.setLoading(true)
	if err := s.api.Signup(ctx, req); err != nil {
		s.setLoading(false)
		return RegisterResult{}, errorx.Wrap(err, errorx.CodeRegistration, registerMessage(err))
	}

	snap := s.Bootstrap(ctx)
	return RegisterResult{VerificationRequired: !snap.Authenticated()}, nil
}

// VerifyEmail 提交邮箱验证码，成功后读取身份
// 失败时会话保持未登录，调用方可重试或重发验证码
func (s *Store) VerifyEmail(ctx context.Context, email, code string) error {
	req := request.VerifyRequest{Email: email, VerificationCode: code}
	if err := s.validator.Struct(req); err != nil {
		return errorx.Wrap(err, errorx.CodeVerification, s.validator.FirstMessage(err))
	}

	s.setLoading(true)
	if err := s.api.Verify(ctx, req); err != nil {
		s.setLoading(false)
		return errorx.Wrap(err, errorx.CodeVerification, verifyMessage(err))
	}
	s.Bootstrap(ctx)
	return nil
}

// ResendVerificationCode 请求重发验证码，不改变会话
func (s *Store) ResendVerificationCode(ctx context.Context, email string) error {
	req := request.ResendRequest{Email: email}
	if err := s.validator.Struct(req); err != nil {
		return errorx.Wrap(err, errorx.CodeResend, s.validator.FirstMessage(err))
	}
	if err := s.api.Resend(ctx, req); err != nil {
		return errorx.Wrap(err, errorx.CodeResend, "Could not resend the verification code. Please try again.")
	}
	return nil
}

// Logout 尽力通知后端登出，随后无条件清空会话；可重复调用
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		zap.L().Warn("logout request failed", zap.Error(err))
	}
	s.ClearUserState()
}

// ClearUserState 立即清空会话，不访问网络
// 用于账号已被删除等无需再调用登出接口的场景
func (s *Store) ClearUserState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.setLocked(Snapshot{User: nil, Loading: false, State: StateAnonymous})
}

// DeleteAccount 在用户确认后删除账号并清空会话
// confirm 返回 false 时不发送请求并返回 CodeCancelled；请求失败时会话保持不变
func (s *Store) DeleteAccount(ctx context.Context, confirm func(prompt string) bool) error {
	if !s.Snapshot().Authenticated() {
		return errorx.ErrNotAuthenticated
	}
	if confirm == nil || !confirm(PromptDeleteAccount) {
		return errorx.ErrCancelled
	}
	if err := s.api.DeleteMe(ctx); err != nil {
		zap.L().Error("delete account failed", zap.Error(err))
		return errorx.Wrap(err, errorx.CodeHTTP, "Failed to delete account. Please try again.")
	}
	s.ClearUserState()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loginMessage(err error) string {
	switch {
	case errorx.IsTimeout(err):
		return "Login timed out. Please try again."
	case errorx.StatusOf(err) == http.StatusUnauthorized, errorx.StatusOf(err) == http.StatusBadRequest:
		return "Invalid username or password."
	case errorx.StatusOf(err) == http.StatusForbidden:
		return "Please verify your email before logging in."
	case errorx.HasCode(err, errorx.CodeNetwork):
		return "Could not reach the server. Please check your connection."
	}
	return "Login failed. Please try again."
}

func registerMessage(err error) string {
	switch {
	case errorx.IsTimeout(err):
		return "Registration timed out. Please try again."
	case errorx.StatusOf(err) == http.StatusConflict:
		return "That username or email is already registered."
	case errorx.HasCode(err, errorx.CodeNetwork):
		return "Could not reach the server. Please check your connection."
	}
	return "Registration failed. Please try again."
}

func verifyMessage(err error) string {
	switch {
	case errorx.IsTimeout(err):
		return "Verification timed out. Please try again."
	case errorx.StatusOf(err) == http.StatusBadRequest:
		return "That code is invalid or has expired."
	}
	return "Email verification failed. Please try again."
}
