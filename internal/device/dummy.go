package device

import (
	"log"

	"github.com/axeldev/keyzen/internal/engine"
)

// modifierResetKeys and otherResetKeys are the keys Wakeup releases
// on startup, mirroring input.py:wakeup_output's explicit modifier_keys
// and keys_to_reset lists: whatever a previous keyzen process (or a crash)
// might have left asserted on a downstream app, a clean RELEASE burst at
// startup clears it.
var modifierResetKeys = []engine.Key{29, 97, 56, 100, 42, 54, 125, 126}

var otherResetKeys = []engine.Key{
	58,  // CAPSLOCK
	15,  // TAB
	28,  // ENTER
	1,   // ESC
	57,  // SPACE
	14,  // BACKSPACE
}

// Wakeup releases every modifier and commonly-stuck key on the virtual
// output device before any real input is processed. Uses
// SendKeyActionFast to avoid pacing 14 RELEASE events through the
// configured throttle delay, which original_source/ does not need to
// worry about (its defaults are usually zero) but this implementation's
// floored throttle would otherwise slow noticeably.
func Wakeup(out *engine.Output, logger *log.Logger) {
	for _, k := range modifierResetKeys {
		_ = out.SendKeyActionFast(k, engine.Release)
	}
	for _, k := range otherResetKeys {
		_ = out.SendKeyActionFast(k, engine.Release)
	}
	logger.Printf("device: startup modifier-reset injection complete (%d keys)", len(modifierResetKeys)+len(otherResetKeys))
}
