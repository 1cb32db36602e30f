package tui

import (
	"context"
	"net/url"
	"strings"

	"campus_lostfound/internal/guard"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// maxRedirects 单次导航允许的最大跳转次数
const maxRedirects = 4

// pathCompose 新建帖子，需要登录
const pathCompose = "/posts/new"

// view 一个页面；Close 释放页面持有的轮询器
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	Close()
}

// App 根模型，负责导航、会话与焦点
type App struct {
	env   *env
	guard *guard.Guard

	current  view
	location string // 当前渲染或等待会话确认后渲染的位置
	rendered bool
	from     string // 被拦截的原始位置，登录后回到这里

	snap      session.Snapshot
	status    string
	statusErr bool
	width     int
	height    int

	cancel context.CancelFunc
}

// New 创建 App；ctx 取消时所有页面请求随之取消
func New(ctx context.Context, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)
	vis := opts.Visibility
	if vis == nil {
		vis = poller.NewTracker(true)
	}
	routes := guard.DefaultRoutes()
	routes[pathCompose] = guard.Route{RequireAuth: true, RedirectTo: guard.PathLogin}

	return &App{
		env: &env{
			ctx:         ctx,
			api:         opts.API,
			sessions:    opts.Sessions,
			validator:   opts.Validator,
			visibility:  vis,
			conf:        opts.Client,
			downloadDir: opts.DownloadDir,
		},
		guard:    guard.New(opts.Sessions, routes),
		location: guard.PathHome,
		snap:     opts.Sessions.Snapshot(),
		cancel:   cancel,
		width:    80,
		height:   24,
	}
}

// Attach 接入运行中的程序：后台轮询与会话变化通过 send 投递到界面
// 必须在程序开始运行前调用
func (a *App) Attach(send func(tea.Msg)) {
	a.env.send = send
	ch, unsubscribe := a.env.sessions.Subscribe()
	ctx := a.env.ctx
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-ch:
				send(sessionMsg{snap: snap})
			}
		}
	}()
}

// Close 停止当前页面并取消未完成的请求，可重复调用
func (a *App) Close() {
	a.setView(nil)
	a.cancel()
}

// Init 确认身份并尝试进入首页；确认完成前显示加载中
func (a *App) Init() tea.Cmd {
	sessions, ctx := a.env.sessions, a.env.ctx
	bootstrap := func() tea.Msg {
		return sessionMsg{snap: sessions.Bootstrap(ctx)}
	}
	return tea.Batch(bootstrap, a.navigate(a.location))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tea.FocusMsg:
		a.env.visibility.SetVisible(true)
		return a, nil
	case tea.BlurMsg:
		a.env.visibility.SetVisible(false)
		return a, nil
	case sessionMsg:
		return a, a.onSession(msg.snap)
	case navigateMsg:
		a.status = ""
		return a, a.navigate(msg.location)
	case loggedInMsg:
		target := a.guard.AfterLogin(a.from)
		a.from = ""
		a.snap = a.env.sessions.Snapshot()
		return a, a.navigate(target)
	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isErr
		return a, nil
	case tea.KeyMsg:
		if cmd, ok := a.handleGlobalKey(msg); ok {
			return a, cmd
		}
	}

	if a.current == nil {
		return a, nil
	}
	return a, a.current.Update(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		a.Close()
		return tea.Quit, true
	case "ctrl+f":
		return navigateCmd(guard.PathFeed), true
	case "ctrl+p":
		return navigateCmd(guard.PathProfile), true
	case "ctrl+t":
		return navigateCmd(guard.PathChat), true
	case "ctrl+x":
		if !a.snap.Authenticated() {
			return nil, true
		}
		sessions, ctx := a.env.sessions, a.env.ctx
		return func() tea.Msg {
			sessions.Logout(ctx)
			return navigateMsg{location: guard.PathHome}
		}, true
	}
	return nil, false
}

// onSession 身份变化后重新判定当前位置；仍可渲染的页面保持不动
func (a *App) onSession(snap session.Snapshot) tea.Cmd {
	a.snap = snap
	if snap.State == session.StateBootstrapping {
		return nil
	}
	if out := a.guard.Resolve(a.location); out.Kind == guard.Render && a.rendered {
		return nil
	}
	return a.navigate(a.location)
}

// navigate 经守卫判定后切换页面
func (a *App) navigate(location string) tea.Cmd {
	for i := 0; i < maxRedirects; i++ {
		out := a.guard.Resolve(location)
		switch out.Kind {
		case guard.Loading:
			a.location = location
			a.rendered = false
			a.setView(nil)
			return nil
		case guard.Redirect:
			if out.From != "" {
				a.from = out.From
			}
			location = out.Target
			continue
		}
		a.location = location
		a.rendered = true
		v := a.build(location)
		a.setView(v)
		return v.Init()
	}
	zap.L().Error("navigation redirect loop", zap.String("location", location))
	return nil
}

func (a *App) setView(v view) {
	if a.current != nil {
		a.current.Close()
	}
	a.current = v
}

// build 按位置创建页面
func (a *App) build(location string) view {
	u, err := url.Parse(location)
	if err != nil {
		return newMissingView(location)
	}
	path, query := u.Path, u.Query()
	switch {
	case path == guard.PathHome || path == guard.PathFeed:
		return newFeedView(a.env, false)
	case path == pathCompose:
		return newFeedView(a.env, true)
	case path == guard.PathLogin:
		return newLoginView(a.env)
	case path == guard.PathRegister:
		return newRegisterView(a.env)
	case path == guard.PathVerify:
		return newVerifyView(a.env, query.Get("email"))
	case path == guard.PathProfile:
		return newProfileView(a.env, "")
	case strings.HasPrefix(path, guard.PathProfile+"/"):
		return newProfileView(a.env, strings.TrimPrefix(path, guard.PathProfile+"/"))
	case path == guard.PathChat:
		return newChatView(a.env, query)
	}
	return newMissingView(location)
}

func (a *App) View() string {
	header := a.renderHeader()
	footer := a.renderFooter()
	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	if a.current == nil {
		body = mutedStyle.Render("Loading…")
	} else {
		body = a.current.View(a.width, bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (a *App) renderHeader() string {
	tabs := []struct {
		label string
		path  string
	}{
		{"Feed ^F", guard.PathFeed},
		{"Profile ^P", guard.PathProfile},
		{"Chats ^T", guard.PathChat},
	}
	active := a.location
	if u, err := url.Parse(active); err == nil {
		active = u.Path
	}
	if active == guard.PathHome || active == pathCompose {
		active = guard.PathFeed
	}

	parts := []string{headerStyle.Render("Campus Lost & Found")}
	for _, t := range tabs {
		style := tabStyle
		if active == t.path {
			style = activeTab
		}
		parts = append(parts, style.Render(t.label))
	}

	who := mutedStyle.Render("guest")
	switch {
	case a.snap.State == session.StateBootstrapping:
		who = mutedStyle.Render("…")
	case a.snap.Authenticated():
		who = selectedStyle.Render(a.snap.User.Username) + mutedStyle.Render("  ^X logout")
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(who)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + who
}

func (a *App) renderFooter() string {
	line := mutedStyle.Render("^C quit")
	if a.status != "" {
		line = notice(a.status, a.statusErr) + "  " + line
	}
	return line
}

// missingView 未知位置
type missingView struct{ location string }

func newMissingView(location string) *missingView { return &missingView{location: location} }

func (v *missingView) Init() tea.Cmd { return nil }

func (v *missingView) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return navigateCmd(guard.PathHome)
	}
	return nil
}

func (v *missingView) View(width, height int) string {
	return errorStyle.Render("Page not found: "+v.location) + "\n" + mutedStyle.Render("esc to go home")
}

func (v *missingView) Close() {}
