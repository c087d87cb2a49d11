package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"hubview/internal/derive"
	"hubview/internal/view"
)

const (
	glyphCells   = 2
	minNameWidth = 12
	maxNameWidth = 40
)

// listLine is one line of the entity list: a group header or an entity row.
type listLine struct {
	header string
	entity view.Entity
	row    bool
}

// buildLines flattens the model into list lines, keeping only entities that
// match query. Groups left empty by the filter are omitted.
func buildLines(model view.Model, query string) []listLine {
	keep := matchEntities(model, query)
	lines := make([]listLine, 0, model.Len()+len(model.Groups))
	for _, group := range model.Groups {
		start := len(lines)
		lines = append(lines, listLine{header: group.Label})
		for _, entity := range group.Entities {
			if keep != nil {
				if _, ok := keep[entity.EntityID]; !ok {
					continue
				}
			}
			lines = append(lines, listLine{entity: entity, row: true})
		}
		if len(lines) == start+1 {
			lines = lines[:start]
		}
	}
	return lines
}

// matchEntities returns the ids matching query, or nil when query is empty.
func matchEntities(model view.Model, query string) map[string]struct{} {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var ids, sources []string
	for _, group := range model.Groups {
		for _, entity := range group.Entities {
			ids = append(ids, entity.EntityID)
			sources = append(sources, entity.Name+" "+entity.EntityID+" "+group.Label)
		}
	}
	keep := make(map[string]struct{})
	for _, match := range fuzzy.Find(query, sources) {
		keep[ids[match.Index]] = struct{}{}
	}
	return keep
}

func nameColumnWidth(lines []listLine, width int) int {
	longest := minNameWidth
	for _, line := range lines {
		if line.row {
			longest = max(longest, runewidth.StringWidth(line.entity.Name))
		}
	}
	limit := maxNameWidth
	if width > 0 {
		limit = min(limit, max(minNameWidth, width/2))
	}
	return min(longest, limit)
}

// rowClass picks the state style; toggles render a glyph, so their class
// comes from the raw state.
func rowClass(row view.Entity) derive.DisplayClass {
	if row.Action == view.ActionToggle && row.Class == derive.ClassDefault {
		switch row.StateRaw {
		case "on":
			return derive.ClassOn
		case "off":
			return derive.ClassOff
		}
	}
	return row.Class
}

func renderRow(row view.Entity, nameWidth, width int, showIDs, selected bool) string {
	glyph := runewidth.FillRight(row.Glyph, glyphCells)
	name := runewidth.FillRight(runewidth.Truncate(row.Name, nameWidth, "…"), nameWidth)
	if selected {
		plain := "▸ " + glyph + " " + name + "  " + row.State
		if showIDs {
			plain += "  " + row.EntityID
		}
		return selectedStyle.Render(padLine(truncate(plain, width), width))
	}
	line := "  " + glyphStyle(row.Icon).Render(glyph) + " " + name + "  " + stateStyle(rowClass(row)).Render(row.State)
	if showIDs {
		line += "  " + entityIDStyle.Render(row.EntityID)
	}
	return truncate(line, width)
}

func renderHeader(label string, width int) string {
	return truncate(groupStyle.Render(label), width)
}

func padLine(line string, width int) string {
	if width <= 0 {
		return line
	}
	if lineWidth := xansi.StringWidth(line); lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func truncate(line string, width int) string {
	if width <= 0 {
		return line
	}
	return xansi.Truncate(line, width, "…")
}
