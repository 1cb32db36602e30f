package tui

import (
	"os"
	"path/filepath"
	"strings"

	"campus_lostfound/internal/model"
	"campus_lostfound/internal/posts"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
)

// 表单项下标
const (
	editorType = iota
	editorContent
	editorImage
)

// postEditor 新建或编辑帖子的表单；编辑时不能更换图片
type postEditor struct {
	postID int64 // 0 表示新建
	form   form
	saving bool
	err    string
}

func newPostEditor(post *model.Post) *postEditor {
	options := make([]string, len(model.ItemTypes))
	for i, t := range model.ItemTypes {
		options[i] = string(t)
	}
	fields := []field{
		{label: "Category", options: options},
		{label: "Description"},
	}
	ed := &postEditor{}
	if post == nil {
		fields = append(fields, field{label: "Image path"})
	} else {
		ed.postID = post.ID
		fields[editorContent].value = post.Content
		for i, t := range model.ItemTypes {
			if t == post.ItemType {
				fields[editorType].choice = i
			}
		}
	}
	ed.form = newForm(fields...)
	ed.form.focus = editorContent
	return ed
}

func (ed *postEditor) handleKey(msg tea.KeyMsg, e *env, svc *posts.Service) tea.Cmd {
	if ed.saving {
		return nil
	}
	if !ed.form.handleKey(msg) {
		return nil
	}
	ed.saving = true
	ed.err = ""

	ctx := e.ctx
	itemType := ed.form.value(editorType)
	content := ed.form.value(editorContent)
	if ed.postID != 0 {
		id := ed.postID
		return func() tea.Msg {
			post, err := svc.Edit(ctx, id, content, itemType)
			return postSavedMsg{post: post, edit: true, err: err}
		}
	}

	imagePath := ed.form.value(editorImage)
	maxBytes := e.conf.ImageMaxBytes
	return func() tea.Msg {
		draft := posts.Draft{ItemType: itemType, Content: content}
		if imagePath != "" {
			data, err := readImage(imagePath, maxBytes)
			if err != nil {
				return postSavedMsg{err: err}
			}
			draft.ImageName = filepath.Base(imagePath)
			draft.Image = data
		}
		dismissed := false
		post, err := svc.Create(ctx, draft, func() { dismissed = true })
		return postSavedMsg{post: post, dismissed: dismissed, err: err}
	}
}

// readImage 读取本地图片，超过上限时拒绝
func readImage(path string, maxBytes int64) ([]byte, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "Could not open the selected image.")
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, errorx.New(errorx.CodeInvalidParam, "The selected image is too large.")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "Could not read the selected image.")
	}
	return data, nil
}

func (ed *postEditor) view(width int) string {
	title := "New post"
	if ed.postID != 0 {
		title = "Edit post"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(ed.form.view(width - 4))
	b.WriteString("\n\n")
	switch {
	case ed.saving:
		b.WriteString(mutedStyle.Render("Saving…"))
	case ed.err != "":
		b.WriteString(errorStyle.Render(ed.err))
	default:
		b.WriteString(mutedStyle.Render("tab next field  ←/→ category  enter save  esc cancel"))
	}
	return focusedPanel.Width(width - 2).Render(b.String())
}
