package tui

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"campus_lostfound/internal/client"
	"campus_lostfound/internal/config"
	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/infrastructure/validation"
	"campus_lostfound/internal/model"
	"campus_lostfound/internal/poller"
	"campus_lostfound/internal/posts"
	"campus_lostfound/internal/session"
	"campus_lostfound/pkg/errorx"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeBackend 内存版后端，同时满足 API 与 session.API
type fakeBackend struct {
	mu       sync.Mutex
	alice    model.User
	loggedIn bool
	posts    []model.Post
	deleted  []int64
	signups  []request.SignupRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		alice: model.User{ID: 1, Username: "alice", Email: "alice@umd.edu", EmailVerified: true},
		posts: []model.Post{
			{ID: 1, UserID: 1, Username: "alice", ItemType: model.ItemBook, Content: "Found a calculus textbook"},
			{ID: 2, UserID: 2, Username: "bob", ItemType: model.ItemKeys, Content: "Lost my dorm keys"},
		},
	}
}

func (f *fakeBackend) Me(context.Context) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loggedIn {
		return nil, errorx.New(errorx.CodeHTTP, "unauthorized").WithStatus(http.StatusUnauthorized)
	}
	u := f.alice
	return &u, nil
}

func (f *fakeBackend) Login(_ context.Context, req request.LoginRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Username != f.alice.Username || req.Password != "password1" {
		return errorx.New(errorx.CodeHTTP, "Invalid username or password").WithStatus(http.StatusUnauthorized)
	}
	f.loggedIn = true
	return nil
}

func (f *fakeBackend) Signup(_ context.Context, req request.SignupRequest) error {
	f.mu.Lock()
	f.signups = append(f.signups, req)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Verify(context.Context, request.VerifyRequest) error { return nil }
func (f *fakeBackend) Resend(context.Context, request.ResendRequest) error { return nil }

func (f *fakeBackend) Logout(context.Context) error {
	f.mu.Lock()
	f.loggedIn = false
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) DeleteMe(context.Context) error { return f.Logout(context.Background()) }

func (f *fakeBackend) AllPosts(context.Context) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Post(nil), f.posts...), nil
}

func (f *fakeBackend) PostImage(context.Context, int64) ([]byte, string, error) {
	return nil, "", errorx.ErrNotFound
}

func (f *fakeBackend) CreatePost(_ context.Context, form request.CreatePostForm, _ *client.Upload) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Post{ID: int64(len(f.posts) + 10), UserID: f.alice.ID, Username: f.alice.Username, ItemType: model.ItemType(form.ItemType), Content: form.Content}
	f.posts = append([]model.Post{p}, f.posts...)
	return &p, nil
}

func (f *fakeBackend) UpdatePost(_ context.Context, id int64, req request.UpdatePostRequest) (*model.Post, error) {
	return &model.Post{ID: id, UserID: f.alice.ID, Username: f.alice.Username, ItemType: model.ItemType(req.ItemType), Content: req.Content}, nil
}

func (f *fakeBackend) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) Conversations(context.Context) ([]model.Conversation, error) {
	return []model.Conversation{}, nil
}

func (f *fakeBackend) Messages(context.Context, int64) ([]model.Message, error) {
	return []model.Message{}, nil
}

func (f *fakeBackend) SendMessage(_ context.Context, req request.SendMessageRequest) (*model.Message, error) {
	return &model.Message{ID: 1, SenderID: f.alice.ID, ReceiverID: req.ReceiverID, Content: req.Content}, nil
}

func (f *fakeBackend) MarkRead(context.Context, int64) error { return nil }

func (f *fakeBackend) GetUser(_ context.Context, username string) (*model.User, error) {
	if username == f.alice.Username {
		u := f.alice
		return &u, nil
	}
	return nil, errorx.ErrNotFound
}

func (f *fakeBackend) UserPosts(ctx context.Context, username string) ([]model.Post, error) {
	all, _ := f.AllPosts(ctx)
	var out []model.Post
	for _, p := range all {
		if p.Username == username {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) MyPosts(ctx context.Context) ([]model.Post, error) {
	return f.UserPosts(ctx, f.alice.Username)
}

func (f *fakeBackend) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deleted...)
}

func newTestApp(t *testing.T, be *fakeBackend, bootstrap bool) *App {
	t.Helper()
	v, err := validation.New("en")
	if err != nil {
		t.Fatalf("validation.New: %v", err)
	}
	store, err := session.NewStore(be, session.Options{Validator: v})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if bootstrap {
		store.Bootstrap(context.Background())
	}
	app := New(context.Background(), Options{
		API:        be,
		Sessions:   store,
		Validator:  v,
		Visibility: poller.NewTracker(true),
		Client:     config.Default().ClientConfig,
	})
	t.Cleanup(app.Close)
	return app
}

// drive 把消息交给 App，并同步执行产生的命令直到没有后续消息
func drive(a *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for steps := 0; len(queue) > 0 && steps < 100; steps++ {
		m := queue[0]
		queue = queue[1:]
		if m == nil {
			continue
		}
		if batch, ok := m.(tea.BatchMsg); ok {
			for _, cmd := range batch {
				if cmd != nil {
					queue = append(queue, cmd())
				}
			}
			continue
		}
		if _, ok := m.(tea.QuitMsg); ok {
			return
		}
		if _, cmd := a.Update(m); cmd != nil {
			queue = append(queue, cmd())
		}
	}
}

func start(a *App) {
	if cmd := a.Init(); cmd != nil {
		drive(a, cmd())
	}
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		drive(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func typeText(a *App, s string) {
	drive(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(a *App, t tea.KeyType) {
	drive(a, tea.KeyMsg{Type: t})
}

func TestBootstrapShowsLoadingUntilSessionKnown(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), false)

	cmd := app.Init()
	if app.current != nil {
		t.Fatalf("want no view while bootstrapping, got %T", app.current)
	}
	if !strings.Contains(app.View(), "Loading") {
		t.Error("loading indicator missing")
	}

	drive(app, cmd())
	if _, ok := app.current.(*feedView); !ok {
		t.Fatalf("want feed after bootstrap, got %T", app.current)
	}
}

func TestProtectedRouteReturnsAfterLogin(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), true)
	start(app)

	drive(app, navigateMsg{location: "/chat"})
	login, ok := app.current.(*authView)
	if !ok || login.title != "Log in" {
		t.Fatalf("want login view, got %T", app.current)
	}
	if app.from != "/chat" {
		t.Errorf("from = %q, want /chat", app.from)
	}

	typeText(app, "alice")
	key(app, tea.KeyTab)
	typeText(app, "password1")
	key(app, tea.KeyEnter)

	if _, ok := app.current.(*chatView); !ok {
		t.Fatalf("want chat after login, got %T", app.current)
	}
	if app.location != "/chat" || app.from != "" {
		t.Errorf("location = %q from = %q", app.location, app.from)
	}
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), true)
	start(app)
	drive(app, navigateMsg{location: "/login"})

	typeText(app, "alice")
	key(app, tea.KeyTab)
	typeText(app, "wrong")
	key(app, tea.KeyEnter)

	login, ok := app.current.(*authView)
	if !ok {
		t.Fatalf("want login view, got %T", app.current)
	}
	if login.err == "" || login.pending {
		t.Errorf("err = %q pending = %v", login.err, login.pending)
	}
}

func TestFocusDrivesVisibility(t *testing.T) {
	vis := poller.NewTracker(true)
	app := newTestApp(t, newFakeBackend(), true)
	app.env.visibility = vis

	drive(app, tea.BlurMsg{})
	if vis.Visible() {
		t.Error("blur should hide")
	}
	drive(app, tea.FocusMsg{})
	if !vis.Visible() {
		t.Error("focus should show")
	}
}

func TestFeedCategoryFilter(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), true)
	start(app)

	fv, ok := app.current.(*feedView)
	if !ok {
		t.Fatalf("want feed, got %T", app.current)
	}
	if got := len(fv.state.Visible()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}

	press(app, "l")
	if fv.state.Selected() != model.ItemBook {
		t.Fatalf("selected = %s, want BOOK", fv.state.Selected())
	}
	out := app.View()
	if !strings.Contains(out, "calculus") || strings.Contains(out, "dorm keys") {
		t.Errorf("filter not applied:\n%s", out)
	}

	press(app, "h")
	if fv.state.Selected() != model.AllCategories {
		t.Errorf("selected = %s, want ALL", fv.state.Selected())
	}
}

func TestFeedDeleteAsksForConfirmation(t *testing.T) {
	be := newFakeBackend()
	be.loggedIn = true
	app := newTestApp(t, be, true)
	start(app)
	fv := app.current.(*feedView)

	press(app, "d")
	if !fv.confirm.active() || !strings.Contains(app.View(), posts.PromptDelete) {
		t.Fatal("delete should ask for confirmation")
	}
	press(app, "n")
	if len(be.deletedIDs()) != 0 {
		t.Fatal("declined delete must not reach the backend")
	}

	press(app, "d", "y")
	if got := be.deletedIDs(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("deleted = %v, want [1]", got)
	}
	for _, p := range fv.state.Posts() {
		if p.ID == 1 {
			t.Error("deleted post still listed")
		}
	}
}

func TestFeedRejectsEditingOthersPost(t *testing.T) {
	be := newFakeBackend()
	be.loggedIn = true
	app := newTestApp(t, be, true)
	start(app)
	fv := app.current.(*feedView)

	press(app, "j", "e")
	if fv.editor != nil {
		t.Fatal("editor opened for another user's post")
	}
	if fv.notice != posts.MsgNotOwner {
		t.Errorf("notice = %q", fv.notice)
	}
}

func TestComposeCreatesPost(t *testing.T) {
	be := newFakeBackend()
	be.loggedIn = true
	app := newTestApp(t, be, true)
	start(app)
	fv := app.current.(*feedView)

	press(app, "n")
	if fv.editor == nil {
		t.Fatal("editor not opened")
	}
	typeText(app, "Blue umbrella near the library")
	key(app, tea.KeyEnter)

	if fv.editor != nil {
		t.Fatalf("editor still open: %q", fv.editor.err)
	}
	first := fv.state.Visible()[0]
	if first.Content != "Blue umbrella near the library" || first.ItemType != model.ItemBook {
		t.Errorf("first post = %+v", first)
	}
}

func TestComposeRequiresLogin(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), true)
	start(app)

	press(app, "n")
	if v, ok := app.current.(*authView); !ok || v.title != "Log in" {
		t.Fatalf("want login view, got %T", app.current)
	}
	if app.from != pathCompose {
		t.Errorf("from = %q, want %q", app.from, pathCompose)
	}
}

func TestRegisterLeadsToVerification(t *testing.T) {
	be := newFakeBackend()
	app := newTestApp(t, be, true)
	start(app)
	drive(app, navigateMsg{location: "/register"})

	typeText(app, "new@umd.edu")
	key(app, tea.KeyTab)
	typeText(app, "newbie")
	key(app, tea.KeyTab)
	typeText(app, "secret1")
	key(app, tea.KeyEnter)

	v, ok := app.current.(*authView)
	if !ok || v.title != "Verify your email" {
		t.Fatalf("want verify view, got %T", app.current)
	}
	if got := v.form.value(0); got != "new@umd.edu" {
		t.Errorf("email = %q", got)
	}
	if len(be.signups) != 1 || be.signups[0].Username != "newbie" {
		t.Errorf("signups = %+v", be.signups)
	}
}

func TestLogoutReturnsHome(t *testing.T) {
	be := newFakeBackend()
	be.loggedIn = true
	app := newTestApp(t, be, true)
	start(app)

	drive(app, navigateMsg{location: "/profile"})
	if _, ok := app.current.(*profileView); !ok {
		t.Fatalf("want profile, got %T", app.current)
	}

	key(app, tea.KeyCtrlX)
	if app.env.sessions.Snapshot().Authenticated() {
		t.Fatal("still authenticated after logout")
	}
	if _, ok := app.current.(*feedView); !ok || app.location != "/" {
		t.Errorf("want feed at /, got %T at %q", app.current, app.location)
	}
}

func TestChatLocationOpensWindow(t *testing.T) {
	be := newFakeBackend()
	be.loggedIn = true
	app := newTestApp(t, be, true)
	start(app)

	drive(app, navigateMsg{location: chatLocation(2, 2, "bob")})
	cv, ok := app.current.(*chatView)
	if !ok {
		t.Fatalf("want chat, got %T", app.current)
	}
	if cv.window == nil || cv.window.OtherUserID() != 2 || cv.peer != "bob" {
		t.Fatalf("window not opened for bob: %+v", cv.window)
	}
	if !cv.inWin {
		t.Error("focus should start in the window")
	}
}
