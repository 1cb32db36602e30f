package tui

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"campus_lostfound/internal/feed"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/posts"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// categories 筛选栏的顺序，第一个是 "All"
var categories = append([]model.ItemType{model.AllCategories}, model.ItemTypes...)

// feedView 帖子列表与分类筛选，新建与编辑表单在本页内弹出
type feedView struct {
	env    *env
	state  *feed.State
	svc    *posts.Service
	list   postList
	editor *postEditor

	category int
	confirm  confirmPrompt
	notice   string
	isErr    bool
}

func newFeedView(e *env, compose bool) *feedView {
	state := feed.New(e.conf.RequestTimeout)
	v := &feedView{
		env:   e,
		state: state,
		svc:   posts.NewService(e.api, e.sessions, state, e.validator, e.imageOptions()),
	}
	if compose {
		v.editor = newPostEditor(nil)
	}
	return v
}

func (v *feedView) Init() tea.Cmd {
	state, api, ctx := v.state, v.env.api, v.env.ctx
	return func() tea.Msg {
		return feedLoadedMsg{err: state.Load(ctx, api.AllPosts)}
	}
}

func (v *feedView) Close() {}

func (v *feedView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case feedLoadedMsg:
		v.list.clamp(len(v.state.Visible()))
		return nil
	case postSavedMsg:
		return v.onSaved(msg)
	case postDeletedMsg:
		v.setNotice(deletedNotice(msg))
		v.list.clamp(len(v.state.Visible()))
		return nil
	case imageSavedMsg:
		v.setNotice(imageNotice(msg))
		return nil
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *feedView) setNotice(text string, isErr bool) {
	v.notice, v.isErr = text, isErr
}

func (v *feedView) onSaved(msg postSavedMsg) tea.Cmd {
	if v.editor == nil {
		return nil
	}
	if msg.err != nil {
		v.editor.saving = false
		v.editor.err = errorx.Message(msg.err)
		return nil
	}
	if msg.dismissed || msg.edit {
		v.editor = nil
	}
	if msg.edit {
		v.setNotice("Post updated", false)
	} else {
		// 新帖子在最前面，回到 All 才能看到
		v.category = 0
		v.state.Select(model.AllCategories)
		v.list.cursor = 0
		v.setNotice("Post created", false)
	}
	return nil
}

func (v *feedView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active() {
		return v.confirm.handleKey(msg)
	}
	if v.editor != nil {
		if msg.Type == tea.KeyEsc && !v.editor.saving {
			v.editor = nil
			return nil
		}
		return v.editor.handleKey(msg, v.env, v.svc)
	}

	visible := v.state.Visible()
	switch msg.String() {
	case "left", "h":
		v.selectCategory(v.category - 1)
	case "right", "l":
		v.selectCategory(v.category + 1)
	case "j", "down":
		v.list.move(1, len(visible))
	case "k", "up":
		v.list.move(-1, len(visible))
	case "r":
		v.notice = ""
		return v.Init()
	case "n":
		if !v.env.authenticated() {
			return navigateCmd(pathCompose)
		}
		v.editor = newPostEditor(nil)
	default:
		post, ok := v.list.selected(visible)
		if !ok {
			return nil
		}
		return v.handlePostKey(msg.String(), post)
	}
	return nil
}

// handlePostKey 针对选中帖子的操作
func (v *feedView) handlePostKey(key string, post model.Post) tea.Cmd {
	snap := v.env.sessions.Snapshot()
	owner := snap.Authenticated() && post.UserID == snap.UserID()
	switch key {
	case "enter", "p":
		if post.Username != "" {
			return navigateCmd(profileLocation(post.Username))
		}
	case "m":
		if owner {
			v.setNotice("This is your own post.", true)
			return nil
		}
		return navigateCmd(chatLocation(post.UserID, post.ID, post.Username))
	case "e":
		if !owner {
			v.setNotice(posts.MsgNotOwner, true)
			return nil
		}
		v.editor = newPostEditor(&post)
	case "d":
		if !owner {
			v.setNotice(posts.MsgNotOwner, true)
			return nil
		}
		v.confirm.ask(posts.PromptDelete, func() tea.Cmd {
			return deletePostCmd(v.env, v.svc, post.ID)
		})
	case "o":
		if post.HasImage {
			return saveImageCmd(v.env, post.ID)
		}
		v.setNotice("This post has no image.", true)
	}
	return nil
}

func (v *feedView) selectCategory(i int) {
	n := len(categories)
	v.category = (i + n) % n
	v.state.Select(categories[v.category])
	v.list.cursor = 0
}

func (v *feedView) View(width, height int) string {
	var b strings.Builder
	b.WriteString(v.renderCategories(width))
	b.WriteString("\n\n")

	if v.editor != nil {
		b.WriteString(v.editor.view(width))
		return b.String()
	}

	switch {
	case v.state.Loading() && len(v.state.Posts()) == 0:
		b.WriteString(mutedStyle.Render("Loading posts…"))
	case v.state.Error() != "":
		b.WriteString(errorStyle.Render(v.state.Error()))
		b.WriteString(mutedStyle.Render("  r to retry"))
	case v.state.EmptyMessage() != "":
		b.WriteString(mutedStyle.Render(v.state.EmptyMessage()))
	default:
		b.WriteString(v.list.view(v.state.Visible(), width, height-6))
	}

	b.WriteString("\n\n")
	if v.confirm.active() {
		b.WriteString(v.confirm.view())
	} else if v.notice != "" {
		b.WriteString(notice(v.notice, v.isErr))
	} else {
		b.WriteString(mutedStyle.Render("←/→ category  j/k move  n new  e edit  d delete  m message  enter profile  o image  r reload"))
	}
	return b.String()
}

func (v *feedView) renderCategories(width int) string {
	chips := make([]string, 0, len(categories))
	for i, c := range categories {
		style := chipStyle
		if i == v.category {
			style = activeChip
		}
		chips = append(chips, style.Render(c.Label()))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(chips, " "))
}

// postList 可选择的帖子列表
type postList struct {
	cursor int
}

func (l *postList) move(delta, n int) {
	l.cursor += delta
	l.clamp(n)
}

func (l *postList) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *postList) selected(visible []model.Post) (model.Post, bool) {
	if l.cursor < 0 || l.cursor >= len(visible) {
		return model.Post{}, false
	}
	return visible[l.cursor], true
}

func (l *postList) view(visible []model.Post, width, height int) string {
	if height < 2 {
		height = 2
	}
	// 每条帖子占两行
	per := height / 2
	start := 0
	if l.cursor >= per {
		start = l.cursor - per + 1
	}
	var lines []string
	for i := start; i < len(visible) && i < start+per; i++ {
		p := visible[i]
		marker := "  "
		head := fmt.Sprintf("%s · %s", p.ItemType.Label(), p.Username)
		if p.HasImage {
			head += " · [photo]"
		}
		if i == l.cursor {
			marker = selectedStyle.Render("▸ ")
			head = selectedStyle.Render(head)
		} else {
			head = titleStyle.Render(head)
		}
		content := strings.ReplaceAll(p.Content, "\n", " ")
		lines = append(lines, marker+head, "  "+truncate(content, width-2))
	}
	return strings.Join(lines, "\n")
}

func deletedNotice(msg postDeletedMsg) (string, bool) {
	if msg.err != nil {
		return errorx.Message(msg.err), true
	}
	return "Post deleted", false
}

func imageNotice(msg imageSavedMsg) (string, bool) {
	if msg.err != nil {
		return errorx.Message(msg.err), true
	}
	return "Image saved to " + msg.path, false
}

// deletePostCmd 用户已在界面上确认，流程内的确认直接通过
func deletePostCmd(e *env, svc *posts.Service, id int64) tea.Cmd {
	ctx := e.ctx
	return func() tea.Msg {
		err := svc.Delete(ctx, id, posts.ConfirmFunc(func(string) bool { return true }))
		return postDeletedMsg{id: id, err: err}
	}
}

// saveImageCmd 下载帖子图片并写入下载目录
func saveImageCmd(e *env, id int64) tea.Cmd {
	ctx, api := e.ctx, e.api
	dir := e.downloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	return func() tea.Msg {
		data, contentType, err := api.PostImage(ctx, id)
		if err != nil {
			return imageSavedMsg{err: errorx.Wrap(err, errorx.GetCode(err), "Failed to load image")}
		}
		ext := ".img"
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
		path := filepath.Join(dir, "post-"+strconv.FormatInt(id, 10)+ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return imageSavedMsg{err: errorx.Wrap(err, errorx.CodeInvalidParam, "Failed to save image")}
		}
		return imageSavedMsg{path: path}
	}
}
