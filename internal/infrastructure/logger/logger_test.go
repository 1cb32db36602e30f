package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"campus_lostfound/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTUIModeKeepsConsoleQuiet(t *testing.T) {
	var file, console bytes.Buffer
	for _, tc := range []struct {
		mode        string
		wantConsole bool
	}{
		{ModeTUI, false},
		{ModeRelease, false},
		{ModeDev, true},
	} {
		file.Reset()
		console.Reset()
		lg := zap.New(newCore(zapcore.AddSync(&file), &console, zapcore.InfoLevel, tc.mode))
		lg.Info("hello")
		_ = lg.Sync()

		if !strings.Contains(file.String(), `"msg":"hello"`) {
			t.Errorf("%s: file output %q", tc.mode, file.String())
		}
		if got := console.Len() > 0; got != tc.wantConsole {
			t.Errorf("%s: console written = %v, want %v", tc.mode, got, tc.wantConsole)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := config.LogConfig{LogPath: "var/log"}
	applyDefaults(&cfg)
	if cfg.FileName != filepath.Join("var/log", "app.log") || cfg.Level != "info" || cfg.MaxSize != 100 {
		t.Errorf("defaults: %+v", cfg)
	}

	cfg = config.LogConfig{FileName: "logs/client.log"}
	applyDefaults(&cfg)
	if cfg.FileName != "logs/client.log" {
		t.Errorf("explicit path rewritten: %q", cfg.FileName)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	if err := Init(&cfg, ModeRelease); err == nil {
		t.Fatal("want error for unknown level")
	}
	if err := Init(nil, ModeRelease); err == nil {
		t.Fatal("want error for nil config")
	}
}

func TestGinLoggerLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinLogger(), GinRecovery(false))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(userIDKey, int64(7))
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Request-ID", "req-1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	var levels []zapcore.Level
	for _, e := range logs.FilterMessage("http request").All() {
		levels = append(levels, e.Level)
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	if len(levels) != len(want) {
		t.Fatalf("levels = %v", levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("entry %d: level %v, want %v", i, levels[i], want[i])
		}
	}

	first := logs.FilterMessage("http request").All()[0].ContextMap()
	if first["requestID"] != "req-1" || first["userID"] != int64(7) {
		t.Errorf("fields: %v", first)
	}
	if logs.FilterMessage("recovered from panic").Len() != 1 {
		t.Error("panic not logged")
	}
}

func TestConnectionLost(t *testing.T) {
	if !connectionLost(syscall.EPIPE) {
		t.Error("EPIPE should count as lost connection")
	}
	if connectionLost(http.ErrHandlerTimeout) {
		t.Error("unrelated error reported as lost connection")
	}
}
