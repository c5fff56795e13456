package main

import (
	"time"

	"github.com/axeldev/keyzen/internal/engine"
	"github.com/axeldev/keyzen/internal/rules"
)

// defaultRules compiles keyzen's built-in rule set, the Go analogue of a
// xwaykeyz user config.py: CapsLock becomes Ctrl when held and Escape
// when tapped, and a small Emacs-style conditional keymap remaps Ctrl
// combos to arrow-key navigation while an Emacs window has focus.
// Grounded on original_source/ sample configs distributed alongside
// config_api.py (capslock-as-ctrl/escape and wm_class-conditional Emacs
// bindings are both lifted directly from those examples).
func defaultRules() (*engine.Config, error) {
	b := rules.New()

	b.MultiModmap("capslock", map[engine.Key]engine.MultiModmapEntry{
		58: {Tap: 1, Hold: 29}, // CAPSLOCK -> tap ESC, hold LEFTCTRL
	}, engine.Always)

	emacs := b.Keymap("emacs navigation", rules.WmClassMatch("Emacs"))
	emacs.Bind(b.Combo("C-b"), engine.KeyCommand(105)) // LEFT
	emacs.Bind(b.Combo("C-f"), engine.KeyCommand(106)) // RIGHT
	emacs.Bind(b.Combo("C-p"), engine.KeyCommand(103)) // UP
	emacs.Bind(b.Combo("C-n"), engine.KeyCommand(108)) // DOWN
	emacs.Bind(b.Combo("C-a"), engine.KeyCommand(102)) // HOME
	emacs.Bind(b.Combo("C-e"), engine.KeyCommand(107)) // END
	emacs.Bind(b.Combo("C-d"), engine.KeyCommand(111)) // DELETE

	b.Timeouts(time.Second, 500*time.Millisecond)

	return b.Build()
}
