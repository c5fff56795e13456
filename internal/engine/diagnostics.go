package engine

import "fmt"

// Snapshot is a point-in-time view of engine state for diagnostics: the
// dump-diagnostics key (spec.md §4.8) and the TUI dashboard (SPEC_FULL.md
// §4) both render from this rather than reaching into Engine directly.
type Snapshot struct {
	PressedKeys   []Key
	PressedMods   []Modifier
	ActiveKeymap  string // "" means top-level
	Suspended     bool
	StickyActive  bool
	StickyInput   string
	StickyOutput  string
}

// Dump returns the current Snapshot, equivalent to xwaykeyz's
// dump_diagnostics(): a one-shot view triggered by the reserved dump key.
func (e *Engine) Dump() Snapshot {
	s := Snapshot{
		PressedKeys: e.Output.PressedKeys(),
		PressedMods: e.PressedMods(),
		Suspended:   e.IsSuspended(),
	}
	if km := e.ActiveKeymap(); km != nil {
		s.ActiveKeymap = km.Name
	}
	if sb, ok := e.sticky.Active(); ok {
		s.StickyActive = true
		s.StickyInput = sb.InputKey.String()
		s.StickyOutput = sb.OutputKey.String()
	}
	return s
}

func (s Snapshot) String() string {
	keymap := s.ActiveKeymap
	if keymap == "" {
		keymap = "(top-level)"
	}
	return fmt.Sprintf("keymap=%s suspended=%v sticky=%v pressed=%v", keymap, s.Suspended, s.StickyActive, s.PressedKeys)
}

// EmergencyEject releases every asserted output key immediately. The
// caller (internal/device, which intercepts the eject key before it ever
// reaches HandleEvent, per SPEC_FULL.md §3) is responsible for then
// ungrabbing every device and exiting.
func (e *Engine) EmergencyEject() error {
	return e.Output.Shutdown()
}
