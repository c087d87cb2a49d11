package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	t.Setenv(envConfigPath, "")
	t.Setenv(envHubURL, "")
	t.Setenv(envHubToken, "")
	t.Setenv(envLogLevel, "")
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dataDir := filepath.Join(home, ".hubview")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	setupHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HubURL() != defaultHubURL {
		t.Fatalf("unexpected hub url: %q", cfg.HubURL())
	}
	if cfg.ReceiveTimeout() != 5*time.Second {
		t.Fatalf("unexpected receive timeout: %v", cfg.ReceiveTimeout())
	}
	if cfg.DialTimeout() != 10*time.Second {
		t.Fatalf("unexpected dial timeout: %v", cfg.DialTimeout())
	}
	if cfg.IconsStrict() {
		t.Fatalf("expected lenient icons by default")
	}
	if cfg.IconPlaceholder() != "nf-md-help_circle_outline" {
		t.Fatalf("unexpected placeholder: %q", cfg.IconPlaceholder())
	}
	if _, err := cfg.HubToken(); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := setupHome(t)
	writeConfig(t, home, `
[hub]
url = "ws://hub.lan:8123/api/websocket"
token = "abc"
receive_timeout = "2s"
dial_timeout = "nonsense"

[logging]
level = "debug"

[icons]
strict = true
glyphs_path = "glyphs.toml"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HubURL() != "ws://hub.lan:8123/api/websocket" {
		t.Fatalf("unexpected hub url: %q", cfg.HubURL())
	}
	token, err := cfg.HubToken()
	if err != nil || token != "abc" {
		t.Fatalf("unexpected token: %q err=%v", token, err)
	}
	if cfg.ReceiveTimeout() != 2*time.Second {
		t.Fatalf("unexpected receive timeout: %v", cfg.ReceiveTimeout())
	}
	if cfg.DialTimeout() != 10*time.Second {
		t.Fatalf("invalid durations should fall back, got %v", cfg.DialTimeout())
	}
	if cfg.LogLevel() != "debug" || !cfg.IconsStrict() {
		t.Fatalf("unexpected logging/icons config: %+v", cfg)
	}
	glyphs, err := cfg.GlyphsPath()
	if err != nil {
		t.Fatalf("GlyphsPath: %v", err)
	}
	if want := filepath.Join(home, ".hubview", "glyphs.toml"); glyphs != want {
		t.Fatalf("unexpected glyphs path: got=%q want=%q", glyphs, want)
	}
	if cfg.Redacted().Hub.Token != "<redacted>" {
		t.Fatalf("expected token to be redacted")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	home := setupHome(t)
	writeConfig(t, home, "[hub]\ntoken = \"from-file\"\n")
	t.Setenv(envHubURL, "ws://override/api/websocket")
	t.Setenv(envHubToken, "from-env")
	t.Setenv(envLogLevel, "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	token, _ := cfg.HubToken()
	if cfg.HubURL() != "ws://override/api/websocket" || token != "from-env" || cfg.LogLevel() != "warn" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestHubTokenFromFile(t *testing.T) {
	home := setupHome(t)
	dataDir := filepath.Join(home, ".hubview")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "token"), []byte("  secret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Hub.TokenFile = "token"
	token, err := cfg.HubToken()
	if err != nil {
		t.Fatalf("HubToken: %v", err)
	}
	if token != "secret" {
		t.Fatalf("unexpected token: %q", token)
	}
}
