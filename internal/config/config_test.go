package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultFillsClientSettings(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	conf := Default()

	if conf.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", conf.BaseURL, DefaultBaseURL)
	}
	if conf.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", conf.RequestTimeout)
	}
	if conf.ConversationInterval != time.Minute {
		t.Errorf("ConversationInterval = %v, want 60s", conf.ConversationInterval)
	}
	if conf.ChatInterval != 30*time.Second {
		t.Errorf("ChatInterval = %v, want 30s", conf.ChatInterval)
	}
	if conf.ServerConfig.Port != 8080 {
		t.Errorf("server port = %d, want 8080", conf.ServerConfig.Port)
	}
	if conf.ImageMaxBytes > conf.MaxImageSize {
		t.Errorf("client image limit %d exceeds server limit %d", conf.ImageMaxBytes, conf.MaxImageSize)
	}
}

func TestClientImageLimitCappedByServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[clientConfig]
imageMaxBytes = 10485760

[serverConfig]
maxImageSize = 2097152
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	conf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if conf.ImageMaxBytes != 2<<20 {
		t.Errorf("ImageMaxBytes = %d, want server limit %d", conf.ImageMaxBytes, 2<<20)
	}
}

func TestBaseURLEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[clientConfig]
baseURL = "http://from-file:9000"
chatInterval = "10s"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(BaseURLEnv, "https://api.example.edu/")
	conf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if conf.BaseURL != "https://api.example.edu" {
		t.Errorf("BaseURL = %q, want env value without trailing slash", conf.BaseURL)
	}
	if conf.ChatInterval != 10*time.Second {
		t.Errorf("ChatInterval = %v, want 10s", conf.ChatInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
