// Package feed 维护帖子列表与分类筛选
package feed

import (
	"context"
	"sync"
	"time"

	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"

	"go.uber.org/zap"
)

// 展示给用户的提示
const (
	MsgTimeout    = "Request timed out. Please try again."
	MsgLoadFailed = "Failed to load posts."
	MsgEmpty      = "No posts available"
)

// DefaultLoadTimeout 加载帖子的时限
const DefaultLoadTimeout = 5 * time.Second

// Source 帖子来源：全部帖子、某用户的帖子或我的帖子
type Source func(ctx context.Context) ([]model.Post, error)

// State 帖子集合与当前筛选；Visible 总是由两者推导，不单独保存
type State struct {
	timeout time.Duration

	mu       sync.RWMutex
	all      []model.Post
	selected model.ItemType
	loading  bool
	loaded   bool
	errMsg   string
	seq      uint64
}

// New 创建 State，timeout<=0 时使用 DefaultLoadTimeout
func New(timeout time.Duration) *State {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &State{timeout: timeout, selected: model.AllCategories}
}

// Load 从 source 拉取帖子替换当前集合
// 失败时集合清空并设置提示，错误同时返回给调用方
func (s *State) Load(ctx context.Context, source Source) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	posts, err := source(ctx)
	if err == nil && ctx.Err() != nil {
		err = errorx.Wrap(ctx.Err(), errorx.CodeTimeout, "load posts timed out")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// 已有更新的加载
		return err
	}
	s.loading = false
	s.loaded = true
	if err != nil {
		zap.L().Warn("load posts failed", zap.Error(err))
		s.all = []model.Post{}
		s.errMsg = MsgLoadFailed
		if errorx.IsTimeout(err) || ctx.Err() != nil {
			s.errMsg = MsgTimeout
		}
		return err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	s.all = posts
	return nil
}

// Select 切换筛选分类，不触发网络请求
func (s *State) Select(category model.ItemType) {
	s.mu.Lock()
	s.selected = category
	s.mu.Unlock()
}

// Selected 当前筛选分类
func (s *State) Selected() model.ItemType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Visible 筛选后的帖子，保持原有顺序
func (s *State) Visible() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Post, 0, len(s.all))
	for _, p := range s.all {
		if s.selected == model.AllCategories || s.selected == "" || p.ItemType == s.selected {
			out = append(out, p)
		}
	}
	return out
}

// Posts 未筛选的全部帖子副本
func (s *State) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Post(nil), s.all...)
}

// Loading 是否正在加载
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error 加载失败时的提示，成功时为空
func (s *State) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// EmptyMessage 加载成功但筛选结果为空时的提示，其他情况为空串
func (s *State) EmptyMessage() string {
	if s.Loading() || s.Error() != "" {
		return ""
	}
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded && len(s.Visible()) == 0 {
		return MsgEmpty
	}
	return ""
}

// Prepend 新建成功的帖子放到最前
func (s *State) Prepend(post model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append([]model.Post{post}, s.all...)
}

// Replace 用服务端返回的帖子替换同 id 的条目，不存在时忽略
func (s *State) Replace(post model.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.all {
		if s.all[i].ID == post.ID {
			next := append([]model.Post(nil), s.all...)
			next[i] = post
			s.all = next
			return true
		}
	}
	return false
}

// Remove 删除指定 id 的帖子，其余顺序不变
func (s *State) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Post, 0, len(s.all))
	removed := false
	for _, p := range s.all {
		if p.ID == id {
			removed = true
			continue
		}
		next = append(next, p)
	}
	s.all = next
	return removed
}
