// Package guard 根据会话状态决定视图是渲染、跳转还是显示加载中
package guard

import (
	"strings"

	"campus_lostfound/internal/session"
)

// Kind 守卫判定结果类型
type Kind int

const (
	Loading Kind = iota
	Redirect
	Render
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// 路由路径
const (
	PathHome     = "/"
	PathFeed     = "/feed"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathVerify   = "/verify"
	PathProfile  = "/profile"
	PathChat     = "/chat"
)

// Route 视图的访问要求
type Route struct {
	// RequireAuth true 表示需要登录，false 表示只允许未登录访问
	RequireAuth bool
	// Public 为 true 时忽略 RequireAuth，任何状态都可访问
	Public     bool
	RedirectTo string
}

// Outcome 守卫判定结果
type Outcome struct {
	Kind   Kind
	Target string // Redirect 时的目标
	From   string // 未登录访问受保护视图时记录的原始位置
}

// SessionReader 只读会话来源
type SessionReader interface {
	Snapshot() session.Snapshot
}

// Guard 路由守卫
type Guard struct {
	sessions SessionReader
	routes   map[string]Route
}

// New 创建守卫，routes 为 nil 时使用 DefaultRoutes
func New(sessions SessionReader, routes map[string]Route) *Guard {
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Guard{sessions: sessions, routes: routes}
}

// DefaultRoutes 应用的路由表
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		PathHome:     {Public: true},
		PathFeed:     {Public: true},
		PathProfile:  {RequireAuth: true, RedirectTo: PathLogin},
		PathChat:     {RequireAuth: true, RedirectTo: PathLogin},
		PathLogin:    {RequireAuth: false, RedirectTo: PathHome},
		PathRegister: {RequireAuth: false, RedirectTo: PathHome},
		PathVerify:   {RequireAuth: false, RedirectTo: PathHome},
	}
}

// Lookup 按路径查找路由；表中没有的路径（如 /profile/{username}）视为公开
func (g *Guard) Lookup(location string) Route {
	path := location
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if r, ok := g.routes[path]; ok {
		return r
	}
	return Route{Public: true}
}

// Check 判定给定路由在当前会话下的结果
func (g *Guard) Check(route Route, location string) Outcome {
	snap := g.sessions.Snapshot()
	if snap.State == session.StateBootstrapping {
		return Outcome{Kind: Loading}
	}
	if route.Public {
		return Outcome{Kind: Render}
	}

	authed := snap.Authenticated()
	switch {
	case route.RequireAuth && !authed:
		return Outcome{Kind: Redirect, Target: orDefault(route.RedirectTo, PathLogin), From: location}
	case !route.RequireAuth && authed:
		return Outcome{Kind: Redirect, Target: orDefault(route.RedirectTo, PathHome)}
	}
	return Outcome{Kind: Render}
}

// Resolve 等价于 Check(Lookup(location), location)
func (g *Guard) Resolve(location string) Outcome {
	return g.Check(g.Lookup(location), location)
}

// AfterLogin 登录成功后的去向：之前被拦截的位置，否则首页
// 只允许站内路径，且不会跳回仅限未登录访问的视图
func (g *Guard) AfterLogin(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return PathHome
	}
	if r := g.Lookup(from); !r.Public && !r.RequireAuth {
		return PathHome
	}
	return from
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
