package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"
)

type staticSession session.Snapshot

func (s staticSession) Snapshot() session.Snapshot { return session.Snapshot(s) }

var (
	loggedIn  = staticSession{State: session.StateAuthenticated, User: &model.User{ID: 3, Username: "terp"}}
	loggedOut = staticSession{State: session.StateAnonymous}
)

// fakeAPI 发送的消息会出现在之后的 Messages 结果里
type fakeAPI struct {
	mu         sync.Mutex
	messages   []model.Message
	convs      []model.Conversation
	sent       []request.SendMessageRequest
	fetches    int
	markErr    error
	marked     []int64
	sendErr    error
	messageErr error
}

func (f *fakeAPI) Conversations(context.Context) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Conversation(nil), f.convs...), nil
}

func (f *fakeAPI) Messages(_ context.Context, other int64) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return append([]model.Message(nil), f.messages...), nil
}

func (f *fakeAPI) SendMessage(_ context.Context, req request.SendMessageRequest) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	msg := model.Message{ID: int64(len(f.messages) + 1), SenderID: 3, ReceiverID: req.ReceiverID, Content: req.Content}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeAPI) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return f.markErr
}

// manualTicker 从不自动触发
type manualTicker struct{ ch chan time.Time }

func (m manualTicker) C() <-chan time.Time { return m.ch }
func (m manualTicker) Stop()               {}

func quietOptions() poller.Options {
	return poller.Options{Interval: time.Hour, NewTicker: func(time.Duration) poller.Ticker {
		return manualTicker{ch: make(chan time.Time)}
	}}
}

func waitUntil(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestWindowRequiresSession(t *testing.T) {
	w := NewWindow(&fakeAPI{}, loggedOut, 7, nil, quietOptions())
	if err := w.Start(context.Background()); !errorx.HasCode(err, errorx.CodeNotAuthenticated) {
		t.Fatalf("want not authenticated, got %v", err)
	}
	if err := w.Send(context.Background(), "hi"); !errorx.HasCode(err, errorx.CodeNotAuthenticated) {
		t.Fatalf("send: want not authenticated, got %v", err)
	}
}

func TestSendReloadsWholeList(t *testing.T) {
	api := &fakeAPI{messages: []model.Message{{ID: 1, SenderID: 7, ReceiverID: 3, Content: "I found your keys"}}}
	postID := "12"
	w := NewWindow(api, loggedIn, 7, &postID, quietOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	waitUntil(t, func() bool { return !w.Loading() }, "initial load")

	if err := w.Send(context.Background(), "Is this still available?"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	api.mu.Lock()
	sent := api.sent[0]
	fetches := api.fetches
	api.mu.Unlock()
	if sent.ReceiverID != 7 || sent.Content != "Is this still available?" {
		t.Errorf("unexpected request %+v", sent)
	}
	if sent.PostID == nil || *sent.PostID != 12 {
		t.Errorf("post id not forwarded: %v", sent.PostID)
	}
	if fetches != 2 {
		t.Errorf("expected a reload after send, fetches = %d", fetches)
	}
	msgs := w.Messages()
	if len(msgs) != 2 || msgs[1].Content != "Is this still available?" {
		t.Errorf("messages after send = %+v", msgs)
	}
}

func TestSendIgnoresBlankContent(t *testing.T) {
	api := &fakeAPI{}
	w := NewWindow(api, loggedIn, 7, nil, quietOptions())
	if err := w.Send(context.Background(), "   "); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 0 {
		t.Error("blank message must not be sent")
	}
}

func TestSendFailureSurfaces(t *testing.T) {
	api := &fakeAPI{sendErr: errorx.ErrNetwork}
	w := NewWindow(api, loggedIn, 7, nil, quietOptions())
	err := w.Send(context.Background(), "hello")
	if errorx.Message(err) != MsgSendFailed || !errorx.HasCode(err, errorx.CodeNetwork) {
		t.Fatalf("unexpected error %v", err)
	}
	if w.Error() != MsgSendFailed {
		t.Errorf("Error() = %q", w.Error())
	}
}

func TestMarkReadSwallowsErrors(t *testing.T) {
	api := &fakeAPI{markErr: errorx.ErrNetwork}
	w := NewWindow(api, loggedIn, 7, nil, quietOptions())
	w.MarkRead(context.Background(), 5)
	if len(api.marked) != 1 || api.marked[0] != 5 {
		t.Errorf("marked = %v", api.marked)
	}
	if w.Error() != "" {
		t.Error("mark-read failures must not surface")
	}
}

func TestWindowLoadError(t *testing.T) {
	api := &fakeAPI{messageErr: errorx.ErrTimeout}
	w := NewWindow(api, loggedIn, 7, nil, quietOptions())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	waitUntil(t, func() bool { return w.Error() == MsgLoadMessagesFailed }, "load error")
}

func TestListLoadsAndCountsUnread(t *testing.T) {
	post := "4"
	api := &fakeAPI{convs: []model.Conversation{
		{ID: "7_4", OtherUserID: 7, OtherUserName: "testudo", LastMessage: "hi", UnreadCount: 2, PostID: &post},
		{ID: "9", OtherUserID: 9, OtherUserName: "shell", LastMessage: "ok", UnreadCount: 1},
	}}
	l := NewList(api, loggedIn, quietOptions())
	changed := make(chan struct{}, 4)
	l.OnChange(func() { changed <- struct{}{} })
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	if got := len(l.Conversations()); got != 2 {
		t.Fatalf("conversations = %d", got)
	}
	if l.Unread() != 3 {
		t.Errorf("Unread() = %d", l.Unread())
	}
}

func TestListRequiresSession(t *testing.T) {
	l := NewList(&fakeAPI{}, loggedOut, quietOptions())
	if err := l.Start(context.Background()); !errorx.HasCode(err, errorx.CodeNotAuthenticated) {
		t.Fatalf("want not authenticated, got %v", err)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "Just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "3/8/2024"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		if got := RelativeTime(tt.at, now); got != tt.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestGroupByDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) model.Timestamp { return model.Timestamp{Time: now.Add(d)} }
	msgs := []model.Message{
		{ID: 1, CreatedAt: at(-26 * time.Hour)},
		{ID: 2, CreatedAt: at(-time.Hour)},
		{ID: 3, CreatedAt: at(-72 * time.Hour)},
		{ID: 4, CreatedAt: at(-30 * time.Minute)},
	}
	groups := GroupByDay(msgs, now)
	if len(groups) != 3 {
		t.Fatalf("groups = %d", len(groups))
	}
	wantLabels := []string{"3/7/2024", "Yesterday", "Today"}
	for i, g := range groups {
		if g.Label != wantLabels[i] {
			t.Errorf("group %d label %q, want %q", i, g.Label, wantLabels[i])
		}
	}
	if today := groups[2].Messages; len(today) != 2 || today[0].ID != 2 || today[1].ID != 4 {
		t.Errorf("today's messages %+v", today)
	}
}
