// Package poller 周期性拉取远端数据，并在不可见时暂停
//
// 每次拉取都分配递增的序号，只有比上次已生效结果更新的结果才会回调，
// 停止后到达的结果一律丢弃；Stop 返回时不会再有回调在执行。
// 回调内不能调用 Stop，否则会死锁。
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Synchronizer 数据同步器；轮询是其一种实现，推送通道可以替换它
type Synchronizer[T any] interface {
	Start(ctx context.Context)
	Stop()
	OnUpdate(fn func(T))
	OnError(fn func(error))
}

// Ticker 可替换的计时器，测试中用手动触发的实现
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory 按间隔创建 Ticker
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker 基于 time.Ticker 的实现
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// FetchFunc 一次拉取
type FetchFunc[T any] func(ctx context.Context) (T, error)

// DefaultInterval Interval 未设置时的轮询间隔
const DefaultInterval = 30 * time.Second

// Options 轮询参数
type Options struct {
	Name       string // 仅用于日志
	Interval   time.Duration
	Visibility Visibility    // 为 nil 时视为一直可见
	NewTicker  TickerFactory // 为 nil 时使用 NewRealTicker
}

// Poller 基于定时器的 Synchronizer 实现
type Poller[T any] struct {
	fetch     FetchFunc[T]
	name      string
	interval  time.Duration
	vis       Visibility
	newTicker TickerFactory

	mu       sync.Mutex
	onUpdate func(T)
	onError  func(error)
	issued   uint64
	started  bool
	stopped  bool
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	// deliver 串行化结果的比较与回调，保证回调按序号递增
	deliver sync.Mutex
	applied uint64

	inflight sync.WaitGroup
}

var _ Synchronizer[int] = (*Poller[int])(nil)

// New 创建 Poller
func New[T any](fetch FetchFunc[T], opts Options) *Poller[T] {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Visibility == nil {
		opts.Visibility = AlwaysVisible{}
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewRealTicker
	}
	return &Poller[T]{
		fetch:     fetch,
		name:      opts.Name,
		interval:  opts.Interval,
		vis:       opts.Visibility,
		newTicker: opts.NewTicker,
	}
}

// OnUpdate 设置结果回调
func (p *Poller[T]) OnUpdate(fn func(T)) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// OnError 设置错误回调
func (p *Poller[T]) OnError(fn func(error)) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// Start 立即拉取一次，随后在可见期间按间隔拉取
// 重复调用或在 Stop 之后调用无效
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	visCh, unsubscribe := p.vis.Subscribe()
	p.mu.Unlock()

	p.spawn()
	go p.run(visCh, unsubscribe)
}

// Stop 释放计时器与可见性订阅，之后到达的结果被丢弃；可重复调用
// 返回前等待正在执行的回调结束
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	// 已通过 stopped 检查的投递持有 deliver，等它结束
	p.deliver.Lock()
	p.deliver.Unlock()

	if started {
		<-p.done
	}
}

// Refresh 同步拉取一次并按序号决定是否生效，返回本次拉取的错误
// 未启动时也可调用
func (p *Poller[T]) Refresh(ctx context.Context) error {
	seq, ok := p.next()
	if !ok {
		return nil
	}
	val, err := p.fetch(ctx)
	p.apply(seq, val, err)
	return err
}

func (p *Poller[T]) run(visCh <-chan bool, unsubscribe func()) {
	defer close(p.done)
	defer unsubscribe()

	var ticker Ticker
	var tick <-chan time.Time
	startTicker := func() {
		ticker = p.newTicker(p.interval)
		tick = ticker.C()
	}
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	if p.vis.Visible() {
		startTicker()
	}
	for {
		select {
		case <-p.ctx.Done():
			return
		case visible := <-visCh:
			stopTicker()
			if visible {
				// 重新可见：立即拉取一次并重新计时
				p.spawn()
				startTicker()
			}
		case <-tick:
			p.spawn()
		}
	}
}

// next 分配序号；已停止时返回 false
func (p *Poller[T]) next() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return 0, false
	}
	p.issued++
	return p.issued, true
}

func (p *Poller[T]) spawn() {
	seq, ok := p.next()
	if !ok {
		return
	}
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		val, err := p.fetch(p.ctx)
		p.apply(seq, val, err)
	}()
}

func (p *Poller[T]) apply(seq uint64, val T, err error) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	stopped := p.stopped
	onUpdate, onError := p.onUpdate, p.onError
	p.mu.Unlock()

	if stopped {
		return
	}
	if seq <= p.applied {
		zap.L().Debug("discard stale poll result", zap.String("poller", p.name), zap.Uint64("seq", seq), zap.Uint64("applied", p.applied))
		return
	}
	p.applied = seq

	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onUpdate != nil {
		onUpdate(val)
	}
}

// wait 等待所有进行中的拉取结束
func (p *Poller[T]) wait() {
	p.inflight.Wait()
}
