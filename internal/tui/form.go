package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// field 表单中的一项：文本输入或在 options 中选择
type field struct {
	label   string
	value   string
	secret  bool
	options []string
	choice  int
}

func (f *field) current() string {
	if len(f.options) > 0 {
		return f.options[f.choice]
	}
	return f.value
}

// form 单行输入组成的表单，tab 切换焦点，enter 提交
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

// value 第 i 项的当前值，文本项会去掉首尾空白
func (f *form) value(i int) string {
	fd := &f.fields[i]
	if fd.secret {
		return fd.current()
	}
	return strings.TrimSpace(fd.current())
}

func (f *form) set(i int, value string) {
	f.fields[i].value = value
}

// handleKey 处理一次按键，返回 true 表示用户提交了表单
func (f *form) handleKey(msg tea.KeyMsg) bool {
	fd := &f.fields[f.focus]
	switch msg.Type {
	case tea.KeyEnter:
		return true
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
		return false
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
		return false
	}

	if len(fd.options) > 0 {
		switch msg.Type {
		case tea.KeyLeft:
			fd.choice = (fd.choice + len(fd.options) - 1) % len(fd.options)
		case tea.KeyRight, tea.KeySpace:
			fd.choice = (fd.choice + 1) % len(fd.options)
		}
		return false
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if runes := []rune(fd.value); len(runes) > 0 {
			fd.value = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		fd.value += " "
	case tea.KeyRunes:
		fd.value += string(msg.Runes)
	}
	return false
}

func (f *form) view(width int) string {
	lines := make([]string, 0, len(f.fields))
	for i, fd := range f.fields {
		label := labelStyle.Render(fd.label)
		if i == f.focus {
			label = focusLabel.Render(fd.label)
		}
		var value string
		switch {
		case len(fd.options) > 0:
			value = "‹ " + fd.options[fd.choice] + " ›"
		case fd.secret:
			value = strings.Repeat("•", len([]rune(fd.value)))
		default:
			value = fd.value
		}
		if i == f.focus && len(fd.options) == 0 {
			value += "▏"
		}
		avail := width - lipgloss.Width(label) - 1
		lines = append(lines, label+" "+truncateLeft(value, avail))
	}
	return strings.Join(lines, "\n")
}

// truncateLeft 输入过长时保留末尾，光标始终可见
func truncateLeft(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[1:]
	}
	return "…" + string(runes)
}

// confirmPrompt 破坏性操作前的 y/n 确认
type confirmPrompt struct {
	prompt string
	yes    func() tea.Cmd
}

func (c *confirmPrompt) active() bool { return c.yes != nil }

func (c *confirmPrompt) ask(prompt string, yes func() tea.Cmd) {
	c.prompt = prompt
	c.yes = yes
}

// handleKey 只有 y 确认，其余按键一律视为取消
func (c *confirmPrompt) handleKey(msg tea.KeyMsg) tea.Cmd {
	yes := c.yes
	c.prompt, c.yes = "", nil
	if msg.String() == "y" || msg.String() == "Y" {
		return yes()
	}
	return nil
}

func (c *confirmPrompt) view() string {
	if !c.active() {
		return ""
	}
	return confirmStyle.Render(c.prompt + " [y/N]")
}
