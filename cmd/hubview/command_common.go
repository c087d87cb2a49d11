package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"hubview/internal/config"
	"hubview/internal/hub"
	"hubview/internal/icons"
	"hubview/internal/logging"
	"hubview/internal/syncer"
	"hubview/internal/view"
)

const version = "dev"

// newEngine wires a sync engine from cfg. It fails early on a missing token
// or an unreadable glyph table.
func newEngine(cfg config.Config, logger logging.Logger) (*syncer.Engine, error) {
	token, err := cfg.HubToken()
	if err != nil {
		return nil, err
	}
	glyphsPath, err := cfg.GlyphsPath()
	if err != nil {
		return nil, err
	}
	glyphs, err := icons.LoadGlyphs(glyphsPath)
	if err != nil {
		return nil, err
	}
	resolver := icons.NewResolver(icons.Options{
		Glyphs:      glyphs,
		Strict:      cfg.IconsStrict(),
		Placeholder: cfg.IconPlaceholder(),
		Logger:      logger,
	})
	return syncer.New(syncer.Options{
		URL:   cfg.HubURL(),
		Token: token,
		Dial: hub.DialOptions{
			ReceiveTimeout: cfg.ReceiveTimeout(),
			DialTimeout:    cfg.DialTimeout(),
			Logger:         logger,
		},
		Builder: view.NewBuilder(resolver),
		Logger:  logger,
	}), nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
