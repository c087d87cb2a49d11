// Command glyphgen rebuilds the embedded glyph table from a Nerd Fonts
// glyphnames.json, keeping the Material Design and Font Awesome names.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"hubview/internal/icons"
)

const header = `# Nerd Font glyphs by name. Material Design icons use the nf-md- prefix and
# keep their upstream codepoints. Regenerate the full table from the Nerd
# Fonts glyphnames.json with go generate ./internal/icons.

`

var prefixes = []string{"nf-md-", "nf-fa-"}

func main() {
	in := flag.String("in", icons.GlyphNamesURL, "glyphnames.json path or URL")
	out := flag.String("out", "glyphs.toml", "output TOML file")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		fmt.Fprintln(os.Stderr, "glyphgen:", err)
		os.Exit(1)
	}
}

func run(in, out string) error {
	data, err := read(in)
	if err != nil {
		return err
	}
	glyphs, err := icons.ParseGlyphNames(data, prefixes...)
	if err != nil {
		return fmt.Errorf("parse %s: %w", in, err)
	}
	if len(glyphs) == 0 {
		return fmt.Errorf("%s: no nf-md or nf-fa glyphs", in)
	}
	var buf bytes.Buffer
	buf.WriteString(header)
	if err := icons.EncodeGlyphs(&buf, glyphs); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d glyphs to %s\n", len(glyphs), out)
	return nil
}

func read(in string) ([]byte, error) {
	if !strings.HasPrefix(in, "http://") && !strings.HasPrefix(in, "https://") {
		return os.ReadFile(in)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", in, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
