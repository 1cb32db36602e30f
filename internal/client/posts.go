package client

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"
)

// Upload 随帖子上传的图片
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AllPosts GET /api/v1/posts/all
func (c *Client) AllPosts(ctx context.Context) ([]model.Post, error) {
	return c.listPosts(ctx, "/api/v1/posts/all")
}

// UserPosts GET /api/v1/posts/user/{username}
func (c *Client) UserPosts(ctx context.Context, username string) ([]model.Post, error) {
	return c.listPosts(ctx, "/api/v1/posts/user/"+url.PathEscape(username))
}

// PostsByType GET /api/v1/posts/type/{itemType}
func (c *Client) PostsByType(ctx context.Context, itemType model.ItemType) ([]model.Post, error) {
	return c.listPosts(ctx, "/api/v1/posts/type/"+url.PathEscape(string(itemType)))
}

// MyPosts GET /api/v1/posts/my
func (c *Client) MyPosts(ctx context.Context) ([]model.Post, error) {
	return c.listPosts(ctx, "/api/v1/posts/my")
}

func (c *Client) listPosts(ctx context.Context, path string) ([]model.Post, error) {
	var posts []model.Post
	if err := c.getJSON(ctx, path, nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// CreatePost POST /api/v1/posts（multipart: itemType, content, image?）
func (c *Client) CreatePost(ctx context.Context, form request.CreatePostForm, image *Upload) (*model.Post, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("itemType", form.ItemType); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeNetwork, "encode multipart")
	}
	if err := w.WriteField("content", form.Content); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeNetwork, "encode multipart")
	}
	if image != nil && len(image.Data) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+escapeQuotes(image.Filename)+`"`)
		ct := image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.CodeNetwork, "encode multipart")
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, errorx.Wrap(err, errorx.CodeNetwork, "encode multipart")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeNetwork, "encode multipart")
	}

	data, _, err := c.do(ctx, http.MethodPost, "/api/v1/posts", nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var post model.Post
	if err := decode(data, &post, "/api/v1/posts"); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost PUT /api/v1/posts/{id}
func (c *Client) UpdatePost(ctx context.Context, id int64, req request.UpdatePostRequest) (*model.Post, error) {
	var post model.Post
	if err := c.sendJSON(ctx, http.MethodPut, postPath(id), nil, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost DELETE /api/v1/posts/{id}，200 与 204 均视为成功
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, postPath(id), nil, nil, nil)
}

// PostImage GET /api/v1/posts/{id}/image，返回图片数据与 Content-Type
func (c *Client) PostImage(ctx context.Context, id int64) ([]byte, string, error) {
	data, header, err := c.do(ctx, http.MethodGet, postPath(id)+"/image", nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errorx.Newf(errorx.CodeMalformed, "post %d: empty image", id)
	}
	return data, header.Get("Content-Type"), nil
}

func postPath(id int64) string {
	return "/api/v1/posts/" + strconv.FormatInt(id, 10)
}

func escapeQuotes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
