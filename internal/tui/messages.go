package tui

import (
	"net/url"
	"strconv"

	"campus_lostfound/internal/guard"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/profile"
	"campus_lostfound/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// 导航与会话
type (
	navigateMsg struct{ location string }
	loggedInMsg struct{}
	sessionMsg  struct{ snap session.Snapshot }
	statusMsg   struct {
		text  string
		isErr bool
	}
)

// 视图内部的异步结果
type (
	feedLoadedMsg struct{ err error }
	postSavedMsg  struct {
		post      *model.Post
		edit      bool
		dismissed bool
		err       error
	}
	postDeletedMsg struct {
		id  int64
		err error
	}
	imageSavedMsg struct {
		path string
		err  error
	}
	authResultMsg struct {
		// verifyEmail 不为空表示账号已创建但需要先验证邮箱
		verifyEmail string
		err         error
	}
	resentMsg        struct{ err error }
	profileLoadedMsg struct {
		profile *profile.Profile
		err     error
	}
	accountDeletedMsg struct{ err error }
	chatChangedMsg    struct{}
	messageSentMsg    struct{ err error }
	messagesMarkedMsg struct{ count int }
)

func navigateCmd(location string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{location: location} }
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isErr: isErr} }
}

// chatLocation 打开与某用户的聊天窗口，postID 为关联的帖子
func chatLocation(userID int64, postID int64, name string) string {
	q := url.Values{}
	q.Set("user", strconv.FormatInt(userID, 10))
	if postID > 0 {
		q.Set("post", strconv.FormatInt(postID, 10))
	}
	if name != "" {
		q.Set("name", name)
	}
	return guard.PathChat + "?" + q.Encode()
}

func profileLocation(username string) string {
	return guard.PathProfile + "/" + url.PathEscape(username)
}

func verifyLocation(email string) string {
	return guard.PathVerify + "?" + url.Values{"email": {email}}.Encode()
}
