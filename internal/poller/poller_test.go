package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeTicker 手动触发的计时器
type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// fakeClock 记录创建过的计时器
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	created chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{created: make(chan *fakeTicker, 16)}
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	c.created <- t
	return t
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func expectNone[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPauseAndResume(t *testing.T) {
	clock := newFakeClock()
	vis := NewTracker(true)
	calls := make(chan int, 16)
	var n int
	var nmu sync.Mutex
	fetch := func(ctx context.Context) (int, error) {
		nmu.Lock()
		n++
		v := n
		nmu.Unlock()
		calls <- v
		return v, nil
	}

	p := New(fetch, Options{Name: "test", Interval: time.Minute, Visibility: vis, NewTicker: clock.NewTicker})
	updates := make(chan int, 16)
	p.OnUpdate(func(v int) { updates <- v })
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, calls, "immediate fetch")
	if got := waitFor(t, updates, "first update"); got != 1 {
		t.Fatalf("first update = %d", got)
	}
	first := waitFor(t, clock.created, "ticker")

	first.ch <- time.Now()
	waitFor(t, calls, "tick fetch")
	waitFor(t, updates, "tick update")

	vis.SetVisible(false)
	deadline := time.Now().Add(2 * time.Second)
	for !first.isStopped() {
		if time.Now().After(deadline) {
			t.Fatal("ticker not stopped while hidden")
		}
		time.Sleep(5 * time.Millisecond)
	}
	expectNone(t, calls, "fetch while hidden")

	vis.SetVisible(true)
	waitFor(t, calls, "fetch on becoming visible")
	second := waitFor(t, clock.created, "restarted ticker")
	if second == first {
		t.Fatal("expected a fresh ticker after resume")
	}
	second.ch <- time.Now()
	waitFor(t, calls, "tick after resume")
}

func TestStartWhileHiddenFetchesOnceWithoutTicker(t *testing.T) {
	clock := newFakeClock()
	vis := NewTracker(false)
	calls := make(chan struct{}, 4)
	p := New(func(context.Context) (string, error) {
		calls <- struct{}{}
		return "ok", nil
	}, Options{Interval: time.Minute, Visibility: vis, NewTicker: clock.NewTicker})
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, calls, "initial fetch")
	expectNone(t, clock.created, "ticker while hidden")
}

func TestStaleResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	call := 0
	fetch := func(ctx context.Context) (string, error) {
		mu.Lock()
		call++
		c := call
		mu.Unlock()
		if c == 1 {
			<-release
			return "old", nil
		}
		return "new", nil
	}

	p := New(fetch, Options{Interval: time.Hour, NewTicker: newFakeClock().NewTicker})
	var got []string
	var gmu sync.Mutex
	p.OnUpdate(func(s string) {
		gmu.Lock()
		got = append(got, s)
		gmu.Unlock()
	})
	p.Start(context.Background())
	defer p.Stop()

	// 等第一次拉取进入阻塞
	for {
		mu.Lock()
		c := call
		mu.Unlock()
		if c == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	close(release)
	p.wait()

	gmu.Lock()
	defer gmu.Unlock()
	if len(got) != 1 || got[0] != "new" {
		t.Fatalf("updates = %v, want [new]", got)
	}
}

func TestErrorsAreReported(t *testing.T) {
	boom := errors.New("boom")
	p := New(func(context.Context) (int, error) { return 0, boom }, Options{NewTicker: newFakeClock().NewTicker})
	errs := make(chan error, 1)
	p.OnError(func(err error) { errs <- err })
	p.Start(context.Background())
	defer p.Stop()

	if err := waitFor(t, errs, "error"); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestStopDiscardsLateResultsAndIsIdempotent(t *testing.T) {
	release := make(chan struct{})
	vis := NewTracker(true)
	p := New(func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}, Options{Visibility: vis, NewTicker: newFakeClock().NewTicker})
	updated := make(chan int, 1)
	p.OnUpdate(func(v int) { updated <- v })
	p.Start(context.Background())

	p.Stop()
	p.Stop()
	close(release)
	p.wait()

	expectNone(t, updated, "update after stop")
	if n := vis.subscribers(); n != 0 {
		t.Errorf("visibility subscription leaked: %d", n)
	}
	if err := p.Refresh(context.Background()); err != nil {
		t.Errorf("Refresh after stop: %v", err)
	}
}

func TestStopWaitsForRunningCallback(t *testing.T) {
	p := New(func(ctx context.Context) (int, error) {
		return 1, nil
	}, Options{NewTicker: newFakeClock().NewTicker})

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	applied := 0
	p.OnUpdate(func(v int) {
		close(entered)
		<-release
		mu.Lock()
		applied = v
		mu.Unlock()
	})
	p.Start(context.Background())
	<-entered

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while the update callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-stopped
	mu.Lock()
	defer mu.Unlock()
	if applied != 1 {
		t.Fatalf("callback should have finished before Stop returned, applied=%d", applied)
	}
}

func TestTrackerIgnoresRepeatedValue(t *testing.T) {
	tr := NewTracker(true)
	ch, cancel := tr.Subscribe()
	defer cancel()

	tr.SetVisible(true)
	expectNone(t, ch, "notification for unchanged value")
	tr.SetVisible(false)
	if v := waitFor(t, ch, "change"); v {
		t.Fatal("expected hidden")
	}
}
