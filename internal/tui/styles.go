package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTab     = tabStyle.Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle    = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	focusLabel    = labelStyle.Foreground(lipgloss.Color("212")).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("161"))
	chipStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	activeChip    = chipStyle.Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("86"))
	mineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	theirsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	confirmStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	focusedPanel = panelStyle.BorderForeground(lipgloss.Color("212"))
)

// truncate 按显示宽度截断单行文本
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func notice(text string, isErr bool) string {
	if text == "" {
		return ""
	}
	if isErr {
		return errorStyle.Render(text)
	}
	return okStyle.Render(text)
}
