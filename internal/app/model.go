package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"hubview/internal/logging"
	"hubview/internal/syncer"
	"hubview/internal/view"
)

const (
	minViewportWidth  = 20
	minContentHeight  = 3
	headerHeight      = 1
	statusLinePadding = 1
)

// Engine is the part of the sync engine the UI talks to.
type Engine interface {
	Updates() <-chan syncer.Update
	Submit(ctx context.Context, intent view.Intent) error
}

type Options struct {
	ShowIDs bool
	Logger  logging.Logger
}

type Model struct {
	ctx    context.Context
	engine Engine
	logger logging.Logger
	keys   keyMap

	help     help.Model
	viewport viewport.Model
	loader   spinner.Model
	filter   textinput.Model

	filtering bool
	showHelp  bool
	showIDs   bool

	update   syncer.Update
	lines    []listLine
	rows     []int
	cursor   int
	offset   int
	selected string

	status    string
	statusErr bool
	statusAt  time.Time

	width  int
	height int
}

func New(ctx context.Context, engine Engine, opts Options) *Model {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter entities"

	return &Model{
		ctx:      ctx,
		engine:   engine,
		logger:   logging.OrNop(opts.Logger),
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(viewport.WithWidth(minViewportWidth), viewport.WithHeight(minContentHeight)),
		loader:   spinner.New(spinner.WithSpinner(spinner.Line)),
		filter:   filter,
		showIDs:  opts.ShowIDs,
	}
}

// Run drives the terminal UI until the user quits, the engine stops or ctx
// is cancelled.
func Run(ctx context.Context, engine Engine, opts Options) error {
	model := New(ctx, engine, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.engine.Updates()), m.loader.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.refresh()
		return m, nil
	case updateMsg:
		m.applyUpdate(syncer.Update(msg))
		if msg.Phase == syncer.PhaseStopped {
			return m, tea.Quit
		}
		return m, waitForUpdate(m.engine.Updates())
	case updatesClosedMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		if m.update.Phase == syncer.PhaseLive {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case submitResultMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s %s: %v", msg.intent.Action, msg.intent.EntityID, msg.err), true)
		}
		return m, nil
	case copyResultMsg:
		if msg.err != nil {
			m.setStatus("copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("copied %s (%s)", msg.text, msg.method), false)
		}
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Quit) || msg.String() == "esc" {
			m.showHelp = false
			m.refresh()
		}
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(1, m.viewport.Height()-1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(1, m.viewport.Height()-1))
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows))
	case key.Matches(msg, m.keys.Activate):
		return m.activate()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.refresh()
		return m.filter.Focus()
	case key.Matches(msg, m.keys.Copy):
		if row, ok := m.current(); ok {
			return copyCmd(row.EntityID)
		}
	case key.Matches(msg, m.keys.ShowIDs):
		m.showIDs = !m.showIDs
		m.refresh()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.refresh()
	case msg.String() == "esc" && m.filter.Value() != "":
		m.filter.SetValue("")
		m.refresh()
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.filter.SetValue("")
		m.filtering = false
		m.filter.Blur()
	case "enter":
		m.filtering = false
		m.filter.Blur()
	case "up":
		m.moveCursor(-1)
		return nil
	case "down":
		m.moveCursor(1)
		return nil
	default:
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.refresh()
		return cmd
	}
	m.refresh()
	return nil
}

func (m *Model) activate() tea.Cmd {
	row, ok := m.current()
	if !ok {
		return nil
	}
	intent, ok := view.IntentFor(row.EntityID)
	if !ok {
		m.setStatus(row.Name+" has no action", false)
		return nil
	}
	m.logger.Debug("intent_submitted", logging.F("entity_id", intent.EntityID), logging.F("action", intent.Action))
	m.setStatus(fmt.Sprintf("%s %s…", intent.Action, row.Name), false)
	return submitCmd(m.ctx, m.engine, intent)
}

func (m *Model) applyUpdate(update syncer.Update) {
	m.update = update
	if update.Status != "" && update.StatusAt.After(m.statusAt) {
		m.status = update.Status
		m.statusErr = update.StatusErr
		m.statusAt = update.StatusAt
	}
	if update.Err != nil {
		m.logger.Error("engine_failed", logging.Err(update.Err))
	}
	m.refresh()
}

func (m *Model) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
	m.statusAt = time.Now()
}

func (m *Model) current() (view.Entity, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return view.Entity{}, false
	}
	return m.lines[m.rows[m.cursor]].entity, true
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.selected = m.lines[m.rows[m.cursor]].entity.EntityID
	m.render()
}

// refresh rebuilds the list from the latest model and filter, keeping the
// cursor on the selected entity when it is still listed.
func (m *Model) refresh() {
	m.lines = buildLines(m.update.Model, m.filter.Value())
	m.rows = m.rows[:0]
	m.cursor = 0
	for i, line := range m.lines {
		if !line.row {
			continue
		}
		if line.entity.EntityID == m.selected {
			m.cursor = len(m.rows)
		}
		m.rows = append(m.rows, i)
	}
	if row, ok := m.current(); ok {
		m.selected = row.EntityID
	}
	m.layout()
	m.render()
}

func (m *Model) layout() {
	width := max(m.width, minViewportWidth)
	footer := 2
	if m.filtering || m.filter.Value() != "" {
		footer++
	}
	m.viewport.SetWidth(width)
	m.viewport.SetHeight(max(minContentHeight, m.height-headerHeight-footer))
	m.filter.SetWidth(max(10, width-4))
}

func (m *Model) render() {
	if m.showHelp {
		m.viewport.SetContent(renderMarkdown(m.keys.helpMarkdown(), m.viewport.Width()))
		m.scrollTo(0)
		return
	}
	if len(m.lines) == 0 {
		m.viewport.SetContent(statusStyle.Render(m.emptyText()))
		m.scrollTo(0)
		return
	}
	width := m.viewport.Width()
	nameWidth := nameColumnWidth(m.lines, width)
	out := make([]string, 0, len(m.lines))
	cursorLine := 0
	for i, line := range m.lines {
		if !line.row {
			out = append(out, renderHeader(line.header, width))
			continue
		}
		selected := len(m.rows) > 0 && m.rows[m.cursor] == i
		if selected {
			cursorLine = i
		}
		out = append(out, renderRow(line.entity, nameWidth, width, m.showIDs, selected))
	}
	m.viewport.SetContent(strings.Join(out, "\n"))
	m.ensureVisible(cursorLine)
}

func (m *Model) ensureVisible(line int) {
	// Keep the group header of the first row on screen.
	if m.cursor == 0 {
		line = 0
	}
	height := m.viewport.Height()
	switch {
	case line < m.offset:
		m.scrollTo(line)
	case line >= m.offset+height:
		m.scrollTo(line - height + 1)
	default:
		m.scrollTo(m.offset)
	}
}

func (m *Model) scrollTo(offset int) {
	m.offset = max(0, offset)
	m.viewport.SetYOffset(m.offset)
}

func (m *Model) emptyText() string {
	switch {
	case m.update.Phase != syncer.PhaseLive && m.update.Model.Empty():
		return "waiting for hub…"
	case m.filter.Value() != "":
		return "no entities match " + m.filter.Value()
	default:
		return "no entities"
	}
}

func (m *Model) View() tea.View {
	view := tea.NewView(m.content())
	view.AltScreen = true
	return view
}

func (m *Model) content() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(truncate(helpStyle.Render(m.help.View(m.keys)), m.width))
	return b.String()
}

func (m *Model) headerView() string {
	parts := []string{headerStyle.Render("hubview")}
	if m.update.Phase == syncer.PhaseLive {
		parts = append(parts, activityStyle.Render("live"))
	} else {
		parts = append(parts, m.loader.View()+" "+statusStyle.Render(m.update.Phase.String()))
	}
	if m.update.HubVersion != "" {
		parts = append(parts, statusStyle.Render("hub "+m.update.HubVersion))
	}
	if n := m.update.Model.Len(); n > 0 {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("%d entities", n)))
	}
	return truncate(strings.Join(parts, dividerStyle.Render(" · ")), m.width)
}

func (m *Model) statusView() string {
	pad := strings.Repeat(" ", statusLinePadding)
	switch {
	case m.update.Err != nil:
		return pad + statusErrorStyle.Render(m.update.Err.Error())
	case m.status == "":
		return pad
	case m.statusErr:
		return pad + truncate(statusErrorStyle.Render(m.status), m.width-statusLinePadding)
	default:
		return pad + truncate(statusStyle.Render(m.status), m.width-statusLinePadding)
	}
}
