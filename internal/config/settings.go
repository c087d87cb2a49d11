package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultHubURL          = "ws://homeassistant.local:8123/api/websocket"
	defaultReceiveTimeout  = 5 * time.Second
	defaultDialTimeout     = 10 * time.Second
	defaultIconPlaceholder = "nf-md-help_circle_outline"
)

const (
	envConfigPath = "HUBVIEW_CONFIG"
	envHubURL     = "HUBVIEW_URL"
	envHubToken   = "HUBVIEW_TOKEN"
	envLogLevel   = "HUBVIEW_LOG_LEVEL"
)

type Config struct {
	Hub     HubConfig     `toml:"hub" json:"hub"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Icons   IconsConfig   `toml:"icons" json:"icons"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

type HubConfig struct {
	URL            string `toml:"url" json:"url"`
	Token          string `toml:"token" json:"token"`
	TokenFile      string `toml:"token_file" json:"token_file"`
	ReceiveTimeout string `toml:"receive_timeout" json:"receive_timeout"`
	DialTimeout    string `toml:"dial_timeout" json:"dial_timeout"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

type IconsConfig struct {
	Strict      bool   `toml:"strict" json:"strict"`
	GlyphsPath  string `toml:"glyphs_path" json:"glyphs_path"`
	Placeholder string `toml:"placeholder" json:"placeholder"`
}

type UIConfig struct {
	ShowIDs bool `toml:"show_ids" json:"show_ids"`
}

func DefaultConfig() Config {
	return Config{
		Hub: HubConfig{
			URL:            defaultHubURL,
			ReceiveTimeout: defaultReceiveTimeout.String(),
			DialTimeout:    defaultDialTimeout.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Icons: IconsConfig{
			Placeholder: defaultIconPlaceholder,
		},
	}
}

// Load reads the config file and applies environment overrides.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		return Config{}, err
	}
	return cfg.withEnv(os.Getenv), nil
}

func LoadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) withEnv(getenv func(string) string) Config {
	if value := strings.TrimSpace(getenv(envHubURL)); value != "" {
		c.Hub.URL = value
	}
	if value := strings.TrimSpace(getenv(envHubToken)); value != "" {
		c.Hub.Token = value
	}
	if value := strings.TrimSpace(getenv(envLogLevel)); value != "" {
		c.Logging.Level = value
	}
	return c
}

func (c Config) HubURL() string {
	url := strings.TrimSpace(c.Hub.URL)
	if url == "" {
		return defaultHubURL
	}
	return url
}

// HubToken returns the access token, reading token_file when no token is
// set inline.
func (c Config) HubToken() (string, error) {
	if token := strings.TrimSpace(c.Hub.Token); token != "" {
		return token, nil
	}
	path := strings.TrimSpace(c.Hub.TokenFile)
	if path == "" {
		return "", errors.New("hub token is not configured (set hub.token, hub.token_file or " + envHubToken + ")")
	}
	path, err := resolveConfigPath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}

func (c Config) ReceiveTimeout() time.Duration {
	return parseDuration(c.Hub.ReceiveTimeout, defaultReceiveTimeout)
}

func (c Config) DialTimeout() time.Duration {
	return parseDuration(c.Hub.DialTimeout, defaultDialTimeout)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) IconsStrict() bool {
	return c.Icons.Strict
}

func (c Config) IconPlaceholder() string {
	placeholder := strings.TrimSpace(c.Icons.Placeholder)
	if placeholder == "" {
		return defaultIconPlaceholder
	}
	return placeholder
}

// GlyphsPath returns the resolved extra glyph table, or "" when none is set.
func (c Config) GlyphsPath() (string, error) {
	path := strings.TrimSpace(c.Icons.GlyphsPath)
	if path == "" {
		return "", nil
	}
	return resolveConfigPath(path)
}

func (c Config) ShowIDs() bool {
	return c.UI.ShowIDs
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if strings.TrimSpace(c.Hub.Token) != "" {
		c.Hub.Token = "<redacted>"
	}
	return c
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}
