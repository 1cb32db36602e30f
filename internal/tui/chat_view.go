package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campus_lostfound/internal/chat"
	"campus_lostfound/internal/guard"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chatView 左侧会话列表，右侧打开的聊天窗口
type chatView struct {
	env    *env
	list   *chat.List
	window *chat.Window
	peer   string // 聊天对象的用户名

	cursor  int
	inWin   bool // 焦点在聊天窗口的输入框
	input   string
	sending bool
	err     string
	now     func() time.Time

	// pending 从帖子或主页跳转而来时要打开的会话
	pending *model.Conversation
}

func newChatView(e *env, query url.Values) *chatView {
	v := &chatView{
		env:  e,
		list: chat.NewList(e.api, e.sessions, e.pollOptions("conversations", e.conf.ConversationInterval)),
		now:  time.Now,
	}
	v.list.OnChange(func() { e.notify(chatChangedMsg{}) })

	if id, err := strconv.ParseInt(query.Get("user"), 10, 64); err == nil && id > 0 {
		conv := &model.Conversation{OtherUserID: id, OtherUserName: query.Get("name")}
		if post := query.Get("post"); post != "" {
			conv.PostID = &post
		}
		v.pending = conv
	}
	return v
}

func (v *chatView) Init() tea.Cmd {
	if err := v.list.Start(v.env.ctx); err != nil {
		return statusCmd(errorx.Message(err), true)
	}
	if v.pending != nil {
		v.open(*v.pending)
		v.pending = nil
	}
	return nil
}

func (v *chatView) Close() {
	v.list.Stop()
	if v.window != nil {
		v.window.Stop()
	}
}

// open 打开与某个用户的聊天窗口，替换已打开的窗口
func (v *chatView) open(conv model.Conversation) {
	if v.window != nil {
		if v.window.OtherUserID() == conv.OtherUserID {
			v.inWin = true
			return
		}
		v.window.Stop()
	}
	e := v.env
	v.window = chat.NewWindow(e.api, e.sessions, conv.OtherUserID, conv.PostID, e.pollOptions("chat-window", e.conf.ChatInterval))
	v.window.OnChange(func() { e.notify(chatChangedMsg{}) })
	v.peer = conv.OtherUserName
	if v.peer == "" {
		v.peer = fmt.Sprintf("user #%d", conv.OtherUserID)
	}
	v.input, v.err = "", ""
	v.inWin = true
	_ = v.window.Start(e.ctx)
}

func (v *chatView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chatChangedMsg:
		v.clamp()
		return nil
	case messageSentMsg:
		v.sending = false
		if msg.err != nil {
			v.err = errorx.Message(msg.err)
			return nil
		}
		v.input, v.err = "", ""
		return v.refreshListCmd()
	case messagesMarkedMsg:
		if msg.count == 0 {
			return nil
		}
		return tea.Batch(statusCmd(fmt.Sprintf("Marked %d message(s) as read", msg.count), false), v.refreshListCmd())
	case tea.KeyMsg:
		if v.inWin && v.window != nil {
			return v.handleWindowKey(msg)
		}
		return v.handleListKey(msg)
	}
	return nil
}

func (v *chatView) clamp() {
	n := len(v.list.Conversations())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *chatView) handleListKey(msg tea.KeyMsg) tea.Cmd {
	convs := v.list.Conversations()
	switch msg.String() {
	case "j", "down":
		v.cursor++
		v.clamp()
	case "k", "up":
		v.cursor--
		v.clamp()
	case "r":
		return v.refreshListCmd()
	case "enter", "l", "right":
		if v.cursor < len(convs) {
			v.open(convs[v.cursor])
		}
	case "tab":
		if v.window != nil {
			v.inWin = true
		}
	case "esc":
		return navigateCmd(guard.PathFeed)
	}
	return nil
}

func (v *chatView) handleWindowKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyTab:
		v.inWin = false
		return nil
	case tea.KeyEnter:
		if v.sending || strings.TrimSpace(v.input) == "" {
			return nil
		}
		v.sending = true
		w, ctx, content := v.window, v.env.ctx, v.input
		return func() tea.Msg {
			return messageSentMsg{err: w.Send(ctx, content)}
		}
	case tea.KeyCtrlR:
		return v.markReadCmd()
	case tea.KeyBackspace, tea.KeyDelete:
		if runes := []rune(v.input); len(runes) > 0 {
			v.input = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		v.input += " "
	case tea.KeyRunes:
		v.input += string(msg.Runes)
	}
	return nil
}

func (v *chatView) refreshListCmd() tea.Cmd {
	list, ctx := v.list, v.env.ctx
	return func() tea.Msg {
		// 失败由列表自己记录并保留旧数据
		_ = list.Refresh(ctx)
		return chatChangedMsg{}
	}
}

// markReadCmd 把窗口中对方发来的未读消息逐条标记为已读
func (v *chatView) markReadCmd() tea.Cmd {
	w, ctx := v.window, v.env.ctx
	me := v.env.sessions.Snapshot().UserID()
	return func() tea.Msg {
		count := 0
		for _, m := range w.Messages() {
			if !m.IsRead && m.ReceiverID == me {
				w.MarkRead(ctx, m.ID)
				count++
			}
		}
		return messagesMarkedMsg{count: count}
	}
}

func (v *chatView) View(width, height int) string {
	listWidth := width / 3
	if listWidth < 24 {
		listWidth = 24
	}
	winWidth := width - listWidth - 4
	inner := height - 2

	left := panelStyle
	right := focusedPanel
	if !v.inWin || v.window == nil {
		left, right = focusedPanel, panelStyle
	}
	listPane := left.Width(listWidth).Height(inner).Render(v.renderList(listWidth, inner))
	winPane := right.Width(winWidth).Height(inner).Render(v.renderWindow(winWidth, inner))
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, winPane)
}

func (v *chatView) renderList(width, height int) string {
	convs := v.list.Conversations()
	title := titleStyle.Render("Messages")
	if unread := chat.UnreadTotal(convs); unread > 0 {
		title += " " + badgeStyle.Render(strconv.Itoa(unread))
	}
	lines := []string{title, ""}

	switch {
	case v.list.Loading():
		lines = append(lines, mutedStyle.Render("Loading conversations…"))
	case len(convs) == 0 && v.list.Error() == "":
		lines = append(lines, mutedStyle.Render("No conversations yet"))
	}
	if msg := v.list.Error(); msg != "" {
		lines = append(lines, errorStyle.Render(msg))
	}

	now := v.now()
	for i, c := range convs {
		name := c.OtherUserName
		if c.UnreadCount > 0 {
			name += fmt.Sprintf(" (%d)", c.UnreadCount)
		}
		when := chat.RelativeTime(c.LastMessageTime.Time, now)
		head := truncate(name, width-lipgloss.Width(when)-3)
		gap := width - lipgloss.Width(head) - lipgloss.Width(when) - 2
		if gap < 1 {
			gap = 1
		}
		if i == v.cursor {
			head = selectedStyle.Render("▸ " + head)
		} else {
			head = "  " + head
		}
		lines = append(lines,
			head+strings.Repeat(" ", gap)+mutedStyle.Render(when),
			"  "+mutedStyle.Render(truncate(c.LastMessage, width-2)))
	}
	if len(lines) > height-2 && height > 2 {
		lines = lines[:height-2]
	}
	lines = append(lines, "", mutedStyle.Render("j/k move  enter open  r refresh  tab window"))
	return strings.Join(lines, "\n")
}

func (v *chatView) renderWindow(width, height int) string {
	if v.window == nil {
		return mutedStyle.Render("Select a conversation")
	}
	me := v.env.sessions.Snapshot().UserID()
	now := v.now()

	var lines []string
	switch {
	case v.window.Loading():
		lines = append(lines, mutedStyle.Render("Loading messages…"))
	case len(v.window.Messages()) == 0:
		lines = append(lines, mutedStyle.Render("No messages yet. Say hello!"))
	}
	for _, group := range chat.GroupByDay(v.window.Messages(), now) {
		lines = append(lines, "", lipgloss.PlaceHorizontal(width, lipgloss.Center, mutedStyle.Render(group.Label)))
		for _, m := range group.Messages {
			stamp := chat.ClockTime(m.CreatedAt.Time, now.Location())
			if m.SenderID == me {
				text := mineStyle.Render(m.Content) + " " + mutedStyle.Render(stamp)
				lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, text))
				continue
			}
			text := theirsStyle.Render(m.Content) + " " + mutedStyle.Render(stamp)
			if !m.IsRead && m.ReceiverID == me {
				text += " " + badgeStyle.Render("new")
			}
			lines = append(lines, text)
		}
	}

	footer := []string{""}
	if v.err != "" {
		footer = append(footer, errorStyle.Render(v.err))
	} else if msg := v.window.Error(); msg != "" {
		footer = append(footer, errorStyle.Render(msg))
	}
	prompt := "> " + v.input
	if v.inWin {
		prompt += "▏"
	}
	if v.sending {
		prompt = mutedStyle.Render("Sending…")
	}
	footer = append(footer, truncateLeft(prompt, width), mutedStyle.Render("enter send  ^R mark read  esc list"))

	head := titleStyle.Render(v.peer)
	body := clipLines(lines, height-len(footer)-1)
	return lipgloss.JoinVertical(lipgloss.Left, head, body, strings.Join(footer, "\n"))
}

// clipLines 超出高度时保留最后几行
func clipLines(lines []string, height int) string {
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}
