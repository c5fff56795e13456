package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/axeldev/keyzen/internal/config"
	"github.com/axeldev/keyzen/internal/engine"
)

// DebugEntry is a structured debug log entry shown in the dashboard's
// scrolling log panel.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "device", "engine", "wincontext"
	Message  string
}

const maxDebugLines = 50

// RefreshMsg requests an immediate re-read of the engine snapshot,
// sent by cmd/keyzen after every handled key event so the dashboard
// never lags more than one event behind reality.
type RefreshMsg struct{}

type tickMsg struct{}

// DebugLogMsg carries a structured debug log entry into the dashboard.
type DebugLogMsg struct {
	Entry DebugEntry
}

const tickInterval = 500 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// DeviceCounter reports how many keyboards are currently grabbed.
type DeviceCounter func() int

// Model is the Bubble Tea model for keyzen's diagnostics dashboard: it
// renders an engine.Snapshot (pressed keys/modifiers, active keymap,
// suspend state, sticky bind) plus a scrolling debug log — the same
// "live status + debug panel" shape as the teacher's voice-dictation
// dashboard, repurposed for keyboard-remapping state instead of
// recording/transcription state.
type Model struct {
	Engine       *engine.Engine
	Config       *config.Config
	DebugMode    bool
	DebugEntries []DebugEntry
	DeviceCount  DeviceCounter

	snapshot  engine.Snapshot
	themeName string
}

// NewModel creates a new dashboard model bound to a running Engine.
func NewModel(eng *engine.Engine, cfg *config.Config, debug bool) Model {
	themeName := cfg.TUI.Theme
	applyTheme(LoadTheme(themeName))
	return Model{
		Engine:    eng,
		Config:    cfg,
		DebugMode: debug,
		themeName: themeName,
		snapshot:  eng.Dump(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			next := NextTheme(m.themeName)
			applyTheme(next)
			m.themeName = strings.ToLower(next.Name)
			m.Config.TUI.Theme = m.themeName
			return m, m.saveConfigCmd()
		}

	case RefreshMsg:
		m.snapshot = m.Engine.Dump()
		return m, nil

	case tickMsg:
		m.snapshot = m.Engine.Dump()
		return m, tickCmd()

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}
	return m, nil
}

func (m Model) saveConfigCmd() tea.Cmd {
	cfg := m.Config
	path := config.DefaultPath()
	return func() tea.Msg {
		_ = config.Save(path, cfg)
		return nil
	}
}
