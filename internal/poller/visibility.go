package poller

import "sync"

// Visibility 可见性信号来源；Subscribe 的通道只在可见性变化时收到新值
type Visibility interface {
	Visible() bool
	Subscribe() (<-chan bool, func())
}

// Tracker 进程内的可见性状态，由前端在获得或失去焦点时更新
type Tracker struct {
	mu      sync.Mutex
	visible bool
	subs    map[int]chan bool
	nextSub int
}

// NewTracker 创建 Tracker
func NewTracker(visible bool) *Tracker {
	return &Tracker{visible: visible, subs: make(map[int]chan bool)}
}

// Visible 当前是否可见
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// SetVisible 更新可见性，值未变化时不通知
func (t *Tracker) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visible == visible {
		return
	}
	t.visible = visible
	for _, ch := range t.subs {
		// 只保留最新值
		select {
		case <-ch:
		default:
		}
		ch <- visible
	}
}

// Subscribe 订阅可见性变化
func (t *Tracker) Subscribe() (<-chan bool, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSub
	t.nextSub++
	ch := make(chan bool, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// subscribers 当前订阅数
func (t *Tracker) subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// AlwaysVisible 不会变化的可见性来源
type AlwaysVisible struct{}

func (AlwaysVisible) Visible() bool { return true }

func (AlwaysVisible) Subscribe() (<-chan bool, func()) {
	return make(chan bool), func() {}
}
