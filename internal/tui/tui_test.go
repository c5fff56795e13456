package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/axeldev/keyzen/internal/config"
	"github.com/axeldev/keyzen/internal/engine"
)

// fakeWriter is a no-op engine.Writer, enough to drive an Engine under test
// without a real uinput device.
type fakeWriter struct{}

func (fakeWriter) WriteKeyAction(engine.Key, engine.Action) error { return nil }
func (fakeWriter) Sync() error                                    { return nil }

func newTestEngine() *engine.Engine {
	return engine.New(engine.DefaultConfig(), fakeWriter{}, nil, nil)
}

func newTestModel() Model {
	cfg := config.Default()
	return NewModel(newTestEngine(), cfg, false)
}

func TestInitialSnapshotIsIdle(t *testing.T) {
	m := newTestModel()
	if m.snapshot.Suspended {
		t.Error("expected a fresh engine to not be suspended")
	}
	if m.snapshot.ActiveKeymap != "" {
		t.Errorf("expected no active keymap, got %q", m.snapshot.ActiveKeymap)
	}
	if len(m.snapshot.PressedKeys) != 0 {
		t.Error("expected no pressed keys")
	}
}

func TestRefreshMsgUpdatesSnapshot(t *testing.T) {
	eng := newTestEngine()
	m := NewModel(eng, config.Default(), false)

	keyA, _ := engine.KeyByName("A")
	if err := eng.HandleEvent("dev0", keyA, engine.Press); err != nil {
		t.Fatal(err)
	}

	updated, _ := m.Update(RefreshMsg{})
	model := updated.(Model)
	if len(model.snapshot.PressedKeys) != 1 {
		t.Fatalf("expected 1 pressed key after refresh, got %d", len(model.snapshot.PressedKeys))
	}
	if model.snapshot.PressedKeys[0] != keyA {
		t.Errorf("expected pressed key A, got %v", model.snapshot.PressedKeys[0])
	}
}

func TestTickMsgUpdatesSnapshotAndReschedules(t *testing.T) {
	m := newTestModel()
	updated, cmd := m.Update(tickMsg{})
	_ = updated.(Model)
	if cmd == nil {
		t.Error("expected tickMsg to reschedule another tick")
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("expected ctrl+c to produce a quit command")
	}
}

func TestThemeCycleKeyT(t *testing.T) {
	m := newTestModel()
	start := m.themeName
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	model := updated.(Model)
	if model.themeName == start {
		t.Error("expected theme to change after pressing t")
	}
	if model.Config.TUI.Theme != model.themeName {
		t.Error("expected config's TUI.Theme to track the active theme")
	}
	if cmd == nil {
		t.Error("expected a save-config command after cycling theme")
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "device", Message: "hello"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(model.DebugEntries))
	}
	if model.DebugEntries[0].Message != "hello" {
		t.Errorf("expected 'hello', got %q", model.DebugEntries[0].Message)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxDebugLines+10; i++ {
		entry := DebugEntry{Time: "11:00:00", Category: "debug", Message: "line"}
		updated, _ := m.Update(DebugLogMsg{Entry: entry})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(m.DebugEntries))
	}
}

func TestViewContainsTitle(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "KEYZEN") {
		t.Error("expected view to contain 'KEYZEN'")
	}
}

func TestViewShowsIdleBadgeWithNoActivity(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "Idle") {
		t.Error("expected view to contain 'Idle'")
	}
}

func TestViewShowsSuspendedBadge(t *testing.T) {
	m := newTestModel()
	m.snapshot.Suspended = true
	view := m.View()
	if !contains(view, "Suspended") {
		t.Error("expected view to contain 'Suspended'")
	}
}

func TestViewShowsActiveKeymapName(t *testing.T) {
	m := newTestModel()
	m.snapshot.ActiveKeymap = "emacs navigation"
	view := m.View()
	if !contains(view, "emacs navigation") {
		t.Error("expected view to contain the active keymap name")
	}
}

func TestViewShowsStickyBindOnlyWhenActive(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if contains(view, "Sticky bind") {
		t.Error("expected no sticky bind line when inactive")
	}
	m.snapshot.StickyActive = true
	m.snapshot.StickyInput = "LEFTSHIFT"
	m.snapshot.StickyOutput = "RIGHTSHIFT"
	view = m.View()
	if !contains(view, "LEFTSHIFT") || !contains(view, "RIGHTSHIFT") {
		t.Error("expected sticky bind line to show input and output mods")
	}
}

func TestViewShowsDeviceCount(t *testing.T) {
	m := newTestModel()
	m.DeviceCount = func() int { return 3 }
	view := m.View()
	if !contains(view, "3 grabbed") {
		t.Error("expected view to report grabbed device count")
	}
}

func TestViewHandlesNilDeviceCounter(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if !contains(view, "none grabbed") {
		t.Error("expected view to report no devices grabbed when counter is nil")
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m := newTestModel()
	m.DebugMode = true
	entry := DebugEntry{Time: "11:00:00", Category: "device", Message: "test message"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	view := model.View()
	if !contains(view, "Debug") {
		t.Error("expected view to contain 'Debug' panel title")
	}
	if !contains(view, "test message") {
		t.Error("expected view to contain debug message")
	}
}

func TestViewHidesDebugPanelWhenEmptyAndNotDebugging(t *testing.T) {
	m := newTestModel()
	view := m.View()
	if contains(view, "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines and debug mode off")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 device: grabbed /dev/input/event3")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected time '11:27:53.777842', got %q", entry.Time)
	}
	if entry.Category != "device" {
		t.Errorf("expected category 'device', got %q", entry.Category)
	}
	if entry.Message != "device: grabbed /dev/input/event3" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}

func TestInferCategoryFallsBackToDebug(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53 something unrelated happened")
	if entry.Category != "debug" {
		t.Errorf("expected fallback category 'debug', got %q", entry.Category)
	}
}

func TestLoadThemeFallsBackToSynthwave(t *testing.T) {
	th := LoadTheme("not-a-real-theme")
	if th.Name != "Synthwave" {
		t.Errorf("expected fallback to Synthwave, got %s", th.Name)
	}
}

func TestNextThemeCyclesThroughAll(t *testing.T) {
	names := ThemeNames()
	seen := map[string]bool{}
	current := names[0]
	for range names {
		th := NextTheme(current)
		seen[lowerName(th.Name)] = true
		current = th.Name
	}
	if len(seen) != len(names) {
		t.Errorf("expected to visit all %d themes, saw %d", len(names), len(seen))
	}
}

func lowerName(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchString(s, substr)
}

func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
