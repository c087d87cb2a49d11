package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"hubview/internal/config"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path" toml:"config_path"`
	Hub        effectiveHubConfig     `json:"hub" toml:"hub"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
	Icons      effectiveIconsConfig   `json:"icons" toml:"icons"`
	UI         effectiveUIConfig      `json:"ui" toml:"ui"`
}

type effectiveHubConfig struct {
	URL            string `json:"url" toml:"url"`
	Token          string `json:"token,omitempty" toml:"token,omitempty"`
	TokenFile      string `json:"token_file,omitempty" toml:"token_file,omitempty"`
	ReceiveTimeout string `json:"receive_timeout" toml:"receive_timeout"`
	DialTimeout    string `json:"dial_timeout" toml:"dial_timeout"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveIconsConfig struct {
	Strict      bool   `json:"strict" toml:"strict"`
	GlyphsPath  string `json:"glyphs_path,omitempty" toml:"glyphs_path,omitempty"`
	Placeholder string `json:"placeholder" toml:"placeholder"`
}

type effectiveUIConfig struct {
	ShowIDs bool `json:"show_ids" toml:"show_ids"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := c.buildOutput(*defaults)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func (c *ConfigCommand) buildOutput(defaults bool) (configOutput, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return configOutput{}, err
	}
	var cfg config.Config
	if defaults {
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.Load()
		if err != nil {
			return configOutput{}, err
		}
	}
	cfg = cfg.Redacted()
	return configOutput{
		ConfigPath: path,
		Hub: effectiveHubConfig{
			URL:            cfg.HubURL(),
			Token:          cfg.Hub.Token,
			TokenFile:      cfg.Hub.TokenFile,
			ReceiveTimeout: cfg.ReceiveTimeout().String(),
			DialTimeout:    cfg.DialTimeout().String(),
		},
		Logging: effectiveLoggingConfig{
			Level: cfg.LogLevel(),
		},
		Icons: effectiveIconsConfig{
			Strict:      cfg.IconsStrict(),
			GlyphsPath:  cfg.Icons.GlyphsPath,
			Placeholder: cfg.IconPlaceholder(),
		},
		UI: effectiveUIConfig{
			ShowIDs: cfg.ShowIDs(),
		},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
