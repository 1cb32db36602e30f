package tui

import (
	"fmt"
	"strings"

	"campus_lostfound/internal/guard"
	"campus_lostfound/internal/posts"
	"campus_lostfound/internal/profile"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// profileView 用户主页；username 为空表示当前用户
type profileView struct {
	env      *env
	username string
	loader   *profile.Loader
	prof     *profile.Profile
	svc      *posts.Service
	list     postList

	confirm confirmPrompt
	notice  string
	isErr   bool
}

func newProfileView(e *env, username string) *profileView {
	return &profileView{
		env:      e,
		username: username,
		loader:   profile.NewLoader(e.api, e.sessions, e.conf.RequestTimeout),
	}
}

func (v *profileView) Init() tea.Cmd {
	loader, ctx, username := v.loader, v.env.ctx, v.username
	return func() tea.Msg {
		p, err := loader.Load(ctx, username)
		return profileLoadedMsg{profile: p, err: err}
	}
}

func (v *profileView) Close() {}

func (v *profileView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.err != nil {
			v.notice, v.isErr = errorx.Message(msg.err), true
			return nil
		}
		v.notice = ""
		v.prof = msg.profile
		v.svc = posts.NewService(v.env.api, v.env.sessions, v.prof.Posts, v.env.validator, v.env.imageOptions())
		v.list.clamp(len(v.prof.Posts.Visible()))
		return nil
	case postDeletedMsg:
		v.notice, v.isErr = deletedNotice(msg)
		if v.prof != nil {
			v.list.clamp(len(v.prof.Posts.Visible()))
		}
		return nil
	case imageSavedMsg:
		v.notice, v.isErr = imageNotice(msg)
		return nil
	case accountDeletedMsg:
		if msg.err != nil {
			if !errorx.HasCode(msg.err, errorx.CodeCancelled) {
				v.notice, v.isErr = errorx.Message(msg.err), true
			}
			return nil
		}
		return tea.Batch(statusCmd("Your account has been deleted.", false), navigateCmd(guard.PathHome))
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *profileView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active() {
		return v.confirm.handleKey(msg)
	}
	if msg.Type == tea.KeyEsc {
		return navigateCmd(guard.PathFeed)
	}
	if v.prof == nil {
		if msg.String() == "r" {
			v.notice = ""
			return v.Init()
		}
		return nil
	}

	visible := v.prof.Posts.Visible()
	switch msg.String() {
	case "j", "down":
		v.list.move(1, len(visible))
	case "k", "up":
		v.list.move(-1, len(visible))
	case "r":
		v.notice = ""
		return v.Init()
	case "m":
		if v.prof.IsCurrentUser || v.prof.User == nil {
			return nil
		}
		return navigateCmd(chatLocation(v.prof.User.ID, 0, v.prof.User.Username))
	case "D":
		if !v.prof.IsCurrentUser {
			return nil
		}
		sessions, ctx := v.env.sessions, v.env.ctx
		v.confirm.ask(session.PromptDeleteAccount, func() tea.Cmd {
			return func() tea.Msg {
				err := sessions.DeleteAccount(ctx, func(string) bool { return true })
				return accountDeletedMsg{err: err}
			}
		})
	case "d":
		post, ok := v.list.selected(visible)
		if !ok {
			return nil
		}
		if !v.prof.IsCurrentUser {
			v.notice, v.isErr = posts.MsgNotOwner, true
			return nil
		}
		v.confirm.ask(posts.PromptDelete, func() tea.Cmd {
			return deletePostCmd(v.env, v.svc, post.ID)
		})
	case "o":
		if post, ok := v.list.selected(visible); ok && post.HasImage {
			return saveImageCmd(v.env, post.ID)
		}
	}
	return nil
}

func (v *profileView) View(width, height int) string {
	if v.prof == nil {
		if v.notice != "" {
			return notice(v.notice, v.isErr) + "\n" + mutedStyle.Render("r retry  esc back")
		}
		return mutedStyle.Render("Loading profile…")
	}
	p := v.prof

	avatar := badgeStyle.Render(p.Initial())
	name := titleStyle.Render(p.Username)
	var meta string
	switch {
	case p.Err != "":
		meta = errorStyle.Render(p.Err)
	case p.User != nil && p.IsCurrentUser:
		meta = mutedStyle.Render(p.User.Email)
		if !p.User.EmailVerified {
			meta += " " + errorStyle.Render("(unverified)")
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, avatar, " ", lipgloss.JoinVertical(lipgloss.Left, name, meta))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	if p.Err == profile.MsgUserNotFound {
		b.WriteString(mutedStyle.Render("esc back"))
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", p.Title(), len(p.Posts.Posts()))))
	b.WriteString("\n")
	switch {
	case p.Posts.Loading():
		b.WriteString(mutedStyle.Render("Loading posts…"))
	case p.Posts.Error() != "":
		b.WriteString(errorStyle.Render(p.Posts.Error()))
	case p.EmptyMessage() != "":
		b.WriteString(mutedStyle.Render(p.EmptyMessage()))
	default:
		b.WriteString(v.list.view(p.Posts.Visible(), width, height-8))
	}

	b.WriteString("\n\n")
	switch {
	case v.confirm.active():
		b.WriteString(v.confirm.view())
	case v.notice != "":
		b.WriteString(notice(v.notice, v.isErr))
	case p.IsCurrentUser:
		b.WriteString(mutedStyle.Render("j/k move  d delete post  o image  D delete account  r reload  esc back"))
	default:
		b.WriteString(mutedStyle.Render("j/k move  m message  o image  r reload  esc back"))
	}
	return b.String()
}
