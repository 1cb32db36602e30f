package tui

import (
	"strings"

	"campus_lostfound/internal/guard"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
)

// authView 登录、注册与邮箱验证共用的表单页
type authView struct {
	env     *env
	title   string
	hint    string
	form    form
	pending bool
	err     string
	info    string
	submit  func(v *authView) tea.Cmd
	extra   func(v *authView, msg tea.KeyMsg) (tea.Cmd, bool)
}

func (v *authView) Init() tea.Cmd { return nil }

func (v *authView) Close() {}

func (v *authView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case authResultMsg:
		v.pending = false
		if msg.err != nil {
			v.err = errorx.Message(msg.err)
			return nil
		}
		if msg.verifyEmail != "" {
			return navigateCmd(verifyLocation(msg.verifyEmail))
		}
		return func() tea.Msg { return loggedInMsg{} }
	case resentMsg:
		v.pending = false
		if msg.err != nil {
			v.err = errorx.Message(msg.err)
		} else {
			v.err = ""
			v.info = "A new verification code has been sent."
		}
		return nil
	case tea.KeyMsg:
		if v.pending {
			return nil
		}
		if v.extra != nil {
			if cmd, ok := v.extra(v, msg); ok {
				return cmd
			}
		}
		if msg.Type == tea.KeyEsc {
			return navigateCmd(guard.PathHome)
		}
		if v.form.handleKey(msg) {
			v.pending = true
			v.err, v.info = "", ""
			return v.submit(v)
		}
	}
	return nil
}

func (v *authView) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.title))
	b.WriteString("\n\n")
	b.WriteString(v.form.view(width - 4))
	b.WriteString("\n\n")
	switch {
	case v.pending:
		b.WriteString(mutedStyle.Render("Please wait…"))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	case v.info != "":
		b.WriteString(okStyle.Render(v.info))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(v.hint))
	return panelStyle.Width(min(width-2, 72)).Render(b.String())
}

func newLoginView(e *env) *authView {
	return &authView{
		env:   e,
		title: "Log in",
		hint:  "enter log in  tab next field  ^R create an account  esc back",
		form:  newForm(field{label: "Username"}, field{label: "Password", secret: true}),
		submit: func(v *authView) tea.Cmd {
			sessions, ctx := v.env.sessions, v.env.ctx
			username, password := v.form.value(0), v.form.value(1)
			return func() tea.Msg {
				return authResultMsg{err: sessions.Login(ctx, username, password)}
			}
		},
		extra: func(v *authView, msg tea.KeyMsg) (tea.Cmd, bool) {
			if msg.String() == "ctrl+r" {
				return navigateCmd(guard.PathRegister), true
			}
			return nil, false
		},
	}
}

func newRegisterView(e *env) *authView {
	return &authView{
		env:   e,
		title: "Create an account",
		hint:  "enter sign up  tab next field  ^L log in instead  esc back",
		form: newForm(
			field{label: "Email"},
			field{label: "Username"},
			field{label: "Password", secret: true},
		),
		submit: func(v *authView) tea.Cmd {
			sessions, ctx := v.env.sessions, v.env.ctx
			email, username, password := v.form.value(0), v.form.value(1), v.form.value(2)
			return func() tea.Msg {
				res, err := sessions.Register(ctx, email, username, password)
				if err != nil {
					return authResultMsg{err: err}
				}
				if res.VerificationRequired {
					return authResultMsg{verifyEmail: email}
				}
				return authResultMsg{}
			}
		},
		extra: func(v *authView, msg tea.KeyMsg) (tea.Cmd, bool) {
			if msg.String() == "ctrl+l" {
				return navigateCmd(guard.PathLogin), true
			}
			return nil, false
		},
	}
}

func newVerifyView(e *env, email string) *authView {
	v := &authView{
		env:   e,
		title: "Verify your email",
		hint:  "enter verify  tab next field  ^R resend code  esc back",
		form:  newForm(field{label: "Email"}, field{label: "Code"}),
		submit: func(v *authView) tea.Cmd {
			sessions, ctx := v.env.sessions, v.env.ctx
			email, code := v.form.value(0), v.form.value(1)
			return func() tea.Msg {
				return authResultMsg{err: sessions.VerifyEmail(ctx, email, code)}
			}
		},
		extra: func(v *authView, msg tea.KeyMsg) (tea.Cmd, bool) {
			if msg.String() != "ctrl+r" {
				return nil, false
			}
			v.pending = true
			v.err, v.info = "", ""
			sessions, ctx := v.env.sessions, v.env.ctx
			email := v.form.value(0)
			return func() tea.Msg {
				return resentMsg{err: sessions.ResendVerificationCode(ctx, email)}
			}, true
		},
	}
	if email != "" {
		v.form.set(0, email)
		v.form.focus = 1
		v.info = "We sent a verification code to " + email + "."
	}
	return v
}
