// Package client 封装对失物招领后端 REST 接口的调用
// 所有请求通过 CookieJar 携带 HttpOnly 会话 Cookie，代码本身从不读取或保存令牌
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"campus_lostfound/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout 单次请求的默认时限
const DefaultTimeout = 5 * time.Second

// maxBodySize 响应体读取上限，图片接口也在此范围内
const maxBodySize = 16 << 20

// Options 构造 Client 的参数
type Options struct {
	BaseURL   string            // 后端地址，如 http://localhost:8080
	Timeout   time.Duration     // 单次请求时限，<=0 时使用 DefaultTimeout
	Jar       http.CookieJar    // 为 nil 时创建内存 CookieJar
	Transport http.RoundTripper // 为 nil 时使用 http.DefaultTransport
}

// Client 后端 REST 接口客户端，可并发使用
type Client struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
}

// New 创建 Client
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", opts.BaseURL)
	}

	jar := opts.Jar
	if jar == nil {
		if jar, err = cookiejar.New(nil); err != nil {
			return nil, err
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: base,
		timeout: timeout,
		http: &http.Client{
			Jar:       jar,
			Transport: opts.Transport,
		},
	}, nil
}

// BaseURL 后端地址
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// errorBody 后端错误响应 {"error": "..."}
type errorBody struct {
	Error string `json:"error"`
}

// do 发送请求并读取完整响应体
// 所有失败都被归类为 CodeNetwork / CodeTimeout / CodeHTTP 之一
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := *c.baseURL
	target.Path = c.baseURL.Path + path
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.CodeNetwork, "build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, classify(ctx, err, method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, classify(ctx, err, method, path)
	}

	zap.L().Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request-id", requestID),
		zap.Duration("cost", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return data, resp.Header, errorx.Newf(errorx.CodeHTTP, "%s %s: %d %s", method, path, resp.StatusCode, msg).
			WithStatus(resp.StatusCode)
	}
	return data, resp.Header, nil
}

// classify 区分超时与其他网络错误
func classify(ctx context.Context, err error, method, path string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errorx.Wrapf(err, errorx.CodeTimeout, "%s %s timed out", method, path)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errorx.Wrapf(err, errorx.CodeTimeout, "%s %s timed out", method, path)
	}
	return errorx.Wrapf(err, errorx.CodeNetwork, "%s %s failed", method, path)
}

// getJSON 发送 GET 并把响应体解析到 out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, _, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(data, out, path)
}

// sendJSON 以 JSON 体发送请求；out 为 nil 时不解析响应体
func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeNetwork, "encode request body")
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	data, _, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(data, out, path)
}

// decode 空响应体或非 JSON 响应体归类为 CodeMalformed
func decode(data []byte, out any, path string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errorx.Newf(errorx.CodeMalformed, "%s: empty response body", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errorx.Wrapf(err, errorx.CodeMalformed, "%s: malformed response body", path)
	}
	return nil
}
