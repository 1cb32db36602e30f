package guard

import (
	"testing"

	"campus_lostfound/internal/model"
	"campus_lostfound/internal/session"
)

type staticSession session.Snapshot

func (s staticSession) Snapshot() session.Snapshot { return session.Snapshot(s) }

var (
	bootstrapping = staticSession{Loading: true, State: session.StateBootstrapping}
	anonymous     = staticSession{State: session.StateAnonymous}
	authenticated = staticSession{State: session.StateAuthenticated, User: &model.User{ID: 7, Username: "terp"}}
)

func TestCheck(t *testing.T) {
	protected := Route{RequireAuth: true, RedirectTo: PathLogin}
	anonOnly := Route{RequireAuth: false, RedirectTo: PathHome}

	tests := []struct {
		name     string
		sess     staticSession
		route    Route
		location string
		want     Outcome
	}{
		{"loading while bootstrapping", bootstrapping, protected, "/chat", Outcome{Kind: Loading}},
		{"anonymous on protected view", anonymous, protected, "/chat?with=9", Outcome{Kind: Redirect, Target: PathLogin, From: "/chat?with=9"}},
		{"authenticated on protected view", authenticated, protected, "/chat", Outcome{Kind: Render}},
		{"authenticated on login view", authenticated, anonOnly, "/login", Outcome{Kind: Redirect, Target: PathHome}},
		{"anonymous on login view", anonymous, anonOnly, "/login", Outcome{Kind: Render}},
		{"public view for anyone", anonymous, Route{Public: true}, "/feed", Outcome{Kind: Render}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.sess, nil).Check(tt.route, tt.location)
			if got != tt.want {
				t.Errorf("Check = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveDefaultRoutes(t *testing.T) {
	g := New(anonymous, nil)
	if out := g.Resolve("/profile"); out.Kind != Redirect || out.Target != PathLogin || out.From != "/profile" {
		t.Errorf("/profile: %+v", out)
	}
	if out := g.Resolve("/profile/terp"); out.Kind != Render {
		t.Errorf("public profile should render, got %+v", out)
	}

	g = New(authenticated, nil)
	for _, p := range []string{PathLogin, PathRegister, PathVerify} {
		if out := g.Resolve(p); out.Kind != Redirect || out.Target != PathHome {
			t.Errorf("%s as authenticated: %+v", p, out)
		}
	}
}

func TestAfterLogin(t *testing.T) {
	g := New(authenticated, nil)
	tests := map[string]string{
		"":                PathHome,
		"/chat":           "/chat",
		"/profile/terp":   "/profile/terp",
		"/login":          PathHome,
		"//evil.example":  PathHome,
		"https://evil.io": PathHome,
	}
	for from, want := range tests {
		if got := g.AfterLogin(from); got != want {
			t.Errorf("AfterLogin(%q) = %q, want %q", from, got, want)
		}
	}
}
