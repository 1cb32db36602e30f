package feed

import (
	"context"
	"net/http"
	"testing"
	"time"

	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"
)

func samplePosts() []model.Post {
	return []model.Post{
		{ID: 1, Username: "terp", ItemType: model.ItemBook, Content: "calc textbook"},
		{ID: 2, Username: "testudo", ItemType: model.ItemKeys, Content: "car keys"},
		{ID: 3, Username: "terp", ItemType: model.ItemBook, Content: "novel"},
		{ID: 4, Username: "shell", ItemType: model.ItemWallet, Content: "brown wallet"},
	}
}

func static(posts []model.Post, err error) Source {
	return func(context.Context) ([]model.Post, error) { return posts, err }
}

func ids(posts []model.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// permutations 原顺序、倒序与各个轮转
func permutations(posts []model.Post) [][]model.Post {
	out := [][]model.Post{posts}
	rev := make([]model.Post, len(posts))
	for i, p := range posts {
		rev[len(posts)-1-i] = p
	}
	out = append(out, rev)
	for k := 1; k < len(posts); k++ {
		out = append(out, append(append([]model.Post{}, posts[k:]...), posts[:k]...))
	}
	return out
}

func TestVisibleFollowsSelection(t *testing.T) {
	for _, posts := range permutations(samplePosts()) {
		s := New(time.Second)
		if err := s.Load(context.Background(), static(posts, nil)); err != nil {
			t.Fatalf("Load: %v", err)
		}

		for _, cat := range append([]model.ItemType{model.AllCategories}, model.ItemTypes...) {
			s.Select(cat)
			want := []int64{}
			for _, p := range posts {
				if cat == model.AllCategories || p.ItemType == cat {
					want = append(want, p.ID)
				}
			}
			if got := ids(s.Visible()); !equalIDs(got, want) {
				t.Errorf("order %v, %s: visible = %v, want %v", ids(posts), cat, got, want)
			}
		}
	}
}

func TestSelectDoesNotFetch(t *testing.T) {
	s := New(time.Second)
	calls := 0
	src := func(context.Context) ([]model.Post, error) {
		calls++
		return samplePosts(), nil
	}
	_ = s.Load(context.Background(), src)
	s.Select(model.ItemKeys)
	s.Select(model.AllCategories)
	if calls != 1 {
		t.Errorf("source called %d times", calls)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server error", errorx.New(errorx.CodeHTTP, "boom").WithStatus(http.StatusInternalServerError), MsgLoadFailed},
		{"malformed", errorx.ErrMalformed, MsgLoadFailed},
		{"timeout", errorx.ErrTimeout, MsgTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(time.Second)
			_ = s.Load(context.Background(), static(samplePosts(), nil))
			if err := s.Load(context.Background(), static(nil, tt.err)); err == nil {
				t.Fatal("expected error")
			}
			if s.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", s.Error(), tt.want)
			}
			if len(s.Posts()) != 0 {
				t.Error("posts must be cleared on failure")
			}
			if s.EmptyMessage() != "" {
				t.Error("empty message must not show alongside an error")
			}
		})
	}
}

func TestLoadHonoursTimeout(t *testing.T) {
	s := New(20 * time.Millisecond)
	slow := func(ctx context.Context) ([]model.Post, error) {
		<-ctx.Done()
		return nil, errorx.Wrap(ctx.Err(), errorx.CodeTimeout, "deadline")
	}
	_ = s.Load(context.Background(), slow)
	if s.Error() != MsgTimeout {
		t.Errorf("Error() = %q", s.Error())
	}
}

func TestEmptySuccess(t *testing.T) {
	s := New(time.Second)
	if s.EmptyMessage() != "" {
		t.Error("no empty message before first load")
	}
	if err := s.Load(context.Background(), static(nil, nil)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Error() != "" || s.EmptyMessage() != MsgEmpty {
		t.Errorf("error=%q empty=%q", s.Error(), s.EmptyMessage())
	}
}

func TestLocalMutations(t *testing.T) {
	s := New(time.Second)
	_ = s.Load(context.Background(), static(samplePosts(), nil))

	s.Prepend(model.Post{ID: 9, ItemType: model.ItemBags})
	if got := ids(s.Posts()); got[0] != 9 || len(got) != 5 {
		t.Fatalf("after prepend: %v", got)
	}

	if !s.Replace(model.Post{ID: 3, ItemType: model.ItemOther, Content: "edited"}) {
		t.Fatal("Replace returned false")
	}
	if p := s.Posts()[3]; p.ID != 3 || p.Content != "edited" {
		t.Errorf("after replace: %+v", p)
	}

	if !s.Remove(2) {
		t.Fatal("Remove returned false")
	}
	if got := ids(s.Posts()); !equalIDs(got, []int64{9, 1, 3, 4}) {
		t.Errorf("after remove: %v", got)
	}
	if s.Remove(42) {
		t.Error("removing a missing id should report false")
	}
}
