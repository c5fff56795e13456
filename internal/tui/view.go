package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/axeldev/keyzen/internal/engine"
)

// 80s Miami / Synthwave color palette
var (
	hotPink      = lipgloss.Color("#FF6AC1")
	cyan         = lipgloss.Color("#00E5FF")
	purple       = lipgloss.Color("#B388FF")
	coral        = lipgloss.Color("#FF8A80")
	teal         = lipgloss.Color("#64FFDA")
	sunsetOrange = lipgloss.Color("#FFAB40")
	darkBg       = lipgloss.Color("#1A1A2E")
	softWhite    = lipgloss.Color("#E0E0E0")
	dimmed       = lipgloss.Color("#666666")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(hotPink).
			Background(darkBg).
			MarginBottom(1)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(1, 2).
			Background(darkBg)

	labelStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Background(darkBg).
			Bold(true)

	keymapStyle = lipgloss.NewStyle().
			Foreground(purple).
			Background(darkBg).
			Italic(true)

	hotkeyStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Background(darkBg)

	quitStyle = lipgloss.NewStyle().
			Foreground(dimmed).
			Background(darkBg)

	idleBadge = lipgloss.NewStyle().
			Foreground(teal).
			Background(darkBg).
			Bold(true)

	activeBadge = lipgloss.NewStyle().
			Foreground(hotPink).
			Background(darkBg).
			Bold(true)

	suspendedBadge = lipgloss.NewStyle().
			Foreground(sunsetOrange).
			Background(darkBg).
			Bold(true)

	errorBadge = lipgloss.NewStyle().
			Foreground(coral).
			Background(darkBg).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(softWhite).
			Background(darkBg)

	debugTitleStyle = lipgloss.NewStyle().
			Foreground(dimmed).
			Background(darkBg).
			Bold(true)

	debugRuleStyle = lipgloss.NewStyle().
			Foreground(dimmed).
			Background(darkBg)

	debugHeaderStyle = lipgloss.NewStyle().
				Foreground(dimmed).
				Background(darkBg).
				Bold(true)

	debugTimeStyle = lipgloss.NewStyle().
			Foreground(dimmed).
			Background(darkBg)

	debugCategoryStyle = lipgloss.NewStyle().
				Foreground(sunsetOrange).
				Background(darkBg)

	debugMsgStyle = lipgloss.NewStyle().
			Foreground(dimmed).
			Background(darkBg)

	debugSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444")).
			Background(darkBg)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(teal).
			Background(darkBg).
			Bold(true)

	statusBadStyle = lipgloss.NewStyle().
			Foreground(coral).
			Background(darkBg).
			Bold(true)
)

// panelWidth is the total outer width of the main panel.
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2
const panelContentWidth = panelWidth - 6

// View renders the diagnostics dashboard.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  KEYZEN  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("State:   "))
	b.WriteString(m.renderBadge())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Active keymap: "))
	keymap := m.snapshot.ActiveKeymap
	if keymap == "" {
		keymap = "(top-level)"
	}
	b.WriteString(keymapStyle.Render(keymap))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Pressed keys:  "))
	b.WriteString(bodyStyle.Render(formatKeys(m.snapshot.PressedKeys)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Pressed mods:  "))
	b.WriteString(bodyStyle.Render(formatMods(m.snapshot.PressedMods)))
	b.WriteString("\n")

	if m.snapshot.StickyActive {
		b.WriteString(labelStyle.Render("Sticky bind:   "))
		b.WriteString(bodyStyle.Render(fmt.Sprintf("%s -> %s", m.snapshot.StickyInput, m.snapshot.StickyOutput)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hotkeyStyle.Render("Press t to cycle theme"))
	b.WriteString("\n")
	b.WriteString(quitStyle.Render("Press q to quit"))

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func formatKeys(keys []engine.Key) string {
	if len(keys) == 0 {
		return "(none)"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " ")
}

func formatMods(mods []engine.Modifier) string {
	if len(mods) == 0 {
		return "(none)"
	}
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

const debugPanelMaxLines = 5

const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder
	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}
		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}
		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}
		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}
	return db.String()
}

func (m Model) renderStatusBar() string {
	count := 0
	if m.DeviceCount != nil {
		count = m.DeviceCount()
	}
	var devices string
	if count > 0 {
		devices = statusOkStyle.Render(fmt.Sprintf("%d grabbed", count))
	} else {
		devices = statusBadStyle.Render("none grabbed")
	}
	return quitStyle.Render("Devices: ") + devices
}

func (m Model) renderBadge() string {
	switch {
	case m.snapshot.Suspended:
		return suspendedBadge.Render("● Suspended")
	case m.snapshot.ActiveKeymap != "":
		return activeBadge.Render("● In keymap")
	default:
		return idleBadge.Render("● Idle")
	}
}
