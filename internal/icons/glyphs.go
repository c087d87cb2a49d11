package icons

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	ToggleOn  = "\uf205"
	ToggleOff = "\uf204"
)

// GlyphNamesURL is the upstream Nerd Fonts name table.
const GlyphNamesURL = "https://raw.githubusercontent.com/ryanoasis/nerd-fonts/master/glyphnames.json"

//go:generate go run ../../cmd/glyphgen -out glyphs.toml

//go:embed glyphs.toml
var builtinGlyphsTOML []byte

// Glyphs maps a Nerd Font glyph name to the glyph itself.
type Glyphs map[string]string

type glyphsFile struct {
	Glyphs map[string]string `toml:"glyphs"`
}

var builtin = sync.OnceValues(func() (Glyphs, error) {
	return parseGlyphs(builtinGlyphsTOML)
})

// Builtin returns a copy of the glyph table shipped with the binary.
func Builtin() Glyphs {
	glyphs, err := builtin()
	if err != nil {
		panic(fmt.Sprintf("icons: builtin glyph table: %v", err))
	}
	return maps.Clone(glyphs)
}

// LoadGlyphs returns the builtin table with the entries of the file at path
// merged over it. A .json file is read as a Nerd Fonts glyphnames.json; any
// other file as a TOML [glyphs] table. An empty path returns the builtin table.
func LoadGlyphs(path string) (Glyphs, error) {
	glyphs := Builtin()
	path = strings.TrimSpace(path)
	if path == "" {
		return glyphs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glyph table: %w", err)
	}
	var extra Glyphs
	if strings.EqualFold(filepath.Ext(path), ".json") {
		extra, err = ParseGlyphNames(data)
	} else {
		extra, err = parseGlyphs(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse glyph table %s: %w", path, err)
	}
	maps.Copy(glyphs, extra)
	return glyphs, nil
}

func parseGlyphs(data []byte) (Glyphs, error) {
	var file glyphsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	glyphs := make(Glyphs, len(file.Glyphs))
	for name, glyph := range file.Glyphs {
		name = strings.TrimSpace(name)
		if name == "" || glyph == "" {
			continue
		}
		glyphs[name] = glyph
	}
	return glyphs, nil
}

type glyphName struct {
	Char string `json:"char"`
	Code string `json:"code"`
}

// ParseGlyphNames reads a Nerd Fonts glyphnames.json. When prefixes are given
// only names starting with one of them are kept.
func ParseGlyphNames(data []byte, prefixes ...string) (Glyphs, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	glyphs := make(Glyphs, len(raw))
	for name, entry := range raw {
		if !hasAnyPrefix(name, prefixes) {
			continue
		}
		var glyph glyphName
		if err := json.Unmarshal(entry, &glyph); err != nil {
			continue
		}
		// Records without a code or char, such as METADATA, are skipped.
		if code, err := strconv.ParseUint(glyph.Code, 16, 32); err == nil && code > 0 {
			glyphs[name] = string(rune(code))
		} else if glyph.Char != "" {
			glyphs[name] = glyph.Char
		}
	}
	return glyphs, nil
}

// EncodeGlyphs writes glyphs as a TOML [glyphs] table that LoadGlyphs and the
// embedded table accept.
func EncodeGlyphs(w io.Writer, glyphs Glyphs) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(glyphsFile{Glyphs: glyphs})
}

func hasAnyPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (g Glyphs) Lookup(name string) (string, bool) {
	glyph, ok := g[name]
	return glyph, ok
}
