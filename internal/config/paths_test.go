package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)
	t.Setenv(envConfigPath, "")

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, ".hubview") {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	configPath, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if want := filepath.Join(home, ".hubview", "config.toml"); configPath != want {
		t.Fatalf("unexpected config path: got=%q want=%q", configPath, want)
	}

	logPath, err := LogPath()
	if err != nil {
		t.Fatalf("LogPath: %v", err)
	}
	if !strings.HasSuffix(logPath, filepath.Join(".hubview", "hubview.log")) {
		t.Fatalf("unexpected log path: %s", logPath)
	}
}

func TestConfigPathOverride(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	t.Setenv(envConfigPath, "~/elsewhere/hub.toml")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if want := filepath.Join(home, "elsewhere", "hub.toml"); path != want {
		t.Fatalf("unexpected override path: got=%q want=%q", path, want)
	}

	t.Setenv(envConfigPath, "alt.toml")
	path, err = ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath relative: %v", err)
	}
	if want := filepath.Join(home, ".hubview", "alt.toml"); path != want {
		t.Fatalf("unexpected relative path: got=%q want=%q", path, want)
	}
}
