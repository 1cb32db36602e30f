package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_lostfound/internal/dto/request"
	"campus_lostfound/internal/model"
	"campus_lostfound/pkg/errorx"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, engine *gin.Engine, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Timeout: timeout})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestLoginCookieIsReplayedOnMe(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", func(c *gin.Context) {
		var req request.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username != "terp" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
			return
		}
		c.SetCookie("auth-token", "opaque", 3600, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"expiresIn": 3600})
	})
	r.GET("/api/v1/users/me", func(c *gin.Context) {
		if v, err := c.Cookie("auth-token"); err != nil || v != "opaque" {
			c.Status(http.StatusUnauthorized)
			return
		}
		if c.GetHeader("X-Request-ID") == "" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, model.User{ID: 7, Username: "terp", Email: "terp@umd.edu", EmailVerified: true})
	})
	cl := newTestClient(t, r, time.Second)
	ctx := context.Background()

	if _, err := cl.Me(ctx); errorx.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("Me before login: want 401, got %v", err)
	}
	if err := cl.Login(ctx, request.LoginRequest{Username: "terp", Password: "secret1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	user, err := cl.Me(ctx)
	if err != nil {
		t.Fatalf("Me after login: %v", err)
	}
	if user.ID != 7 || user.Username != "terp" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	r := gin.New()
	r.GET("/api/v1/posts/all", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database down"})
	})
	r.GET("/api/v1/posts/my", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/api/v1/posts/user/:username", func(c *gin.Context) {
		c.String(http.StatusOK, "<html>not json</html>")
	})
	r.GET("/api/v1/supabase/conversations", func(c *gin.Context) {
		time.Sleep(300 * time.Millisecond)
		c.JSON(http.StatusOK, []model.Conversation{})
	})
	cl := newTestClient(t, r, 50*time.Millisecond)
	ctx := context.Background()

	_, err := cl.AllPosts(ctx)
	if errorx.GetCode(err) != errorx.CodeHTTP || errorx.StatusOf(err) != http.StatusInternalServerError {
		t.Errorf("500: want CodeHTTP/500, got %v", err)
	}

	_, err = cl.MyPosts(ctx)
	if errorx.GetCode(err) != errorx.CodeMalformed {
		t.Errorf("empty body: want CodeMalformed, got %v", err)
	}

	_, err = cl.UserPosts(ctx, "terp")
	if errorx.GetCode(err) != errorx.CodeMalformed {
		t.Errorf("html body: want CodeMalformed, got %v", err)
	}

	_, err = cl.Conversations(ctx)
	if !errorx.IsTimeout(err) {
		t.Errorf("slow handler: want timeout, got %v", err)
	}
}

func TestNetworkErrorIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cl, err := New(Options{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	_, err = cl.AllPosts(context.Background())
	if errorx.GetCode(err) != errorx.CodeNetwork {
		t.Fatalf("want CodeNetwork, got %v", err)
	}
	if errorx.IsTimeout(err) {
		t.Fatal("closed server must not be reported as timeout")
	}
}

func TestCreatePostSendsMultipart(t *testing.T) {
	r := gin.New()
	r.POST("/api/v1/posts", func(c *gin.Context) {
		if c.PostForm("itemType") != "BOOK" || c.PostForm("content") != "Lost my calculus textbook" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fields"})
			return
		}
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "PNGDATA" || header.Header.Get("Content-Type") != "image/png" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image body"})
			return
		}
		c.JSON(http.StatusCreated, model.Post{ID: 42, UserID: 7, Username: "terp", ItemType: model.ItemBook, Content: "Lost my calculus textbook", HasImage: true})
	})
	cl := newTestClient(t, r, time.Second)

	post, err := cl.CreatePost(context.Background(),
		request.CreatePostForm{ItemType: "BOOK", Content: "Lost my calculus textbook"},
		&Upload{Filename: "book.png", ContentType: "image/png", Data: []byte("PNGDATA")},
	)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ID != 42 || !post.HasImage {
		t.Errorf("unexpected post %+v", post)
	}
}

func TestMessagesQueryAndNullList(t *testing.T) {
	r := gin.New()
	r.GET("/api/v1/supabase/messages", func(c *gin.Context) {
		if c.Query("conversationUserId") != "9" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
			return
		}
		c.Data(http.StatusOK, "application/json", []byte("null"))
	})
	cl := newTestClient(t, r, time.Second)

	msgs, err := cl.Messages(context.Background(), 9)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("null list should decode to empty slice, got %#v", msgs)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "localhost"}); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}
