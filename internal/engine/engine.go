// Package engine implements the event-driven, single-threaded key
// transformation pipeline: modmap/multi-modmap resolution, keymap/combo
// matching, the command executor, sticky modifiers, the suspend timer, and
// the repeat-output cache. It never touches the kernel directly — callers
// feed it events via HandleEvent and it emits output through the Writer
// boundary (output.go); this package never imports evdev.
package engine

import (
	"log"
	"time"
)

// Engine owns all mutable pipeline state. Unlike original_source/, which
// keeps this as module-level globals, every field here lives on the
// struct so multiple engines (e.g. under test) never share state.
type Engine struct {
	cfg    *Config
	Output *Output
	sticky *StickyTable
	cache  *RepeatCache

	pressed       map[Key]*Keystate
	activeKeymaps []*Keymap

	suspendDeadline    time.Time
	lastSuspendTimeout time.Duration
	lastReleasedMod    Key // not read: timed-out multi-purpose keys always resolve as hold, with no Shift+Shift exception

	now func() time.Time
	log *log.Logger

	querierFor func(deviceName string) WindowQuerier

	nextBindHint  bool
	escapeNextKey bool
}

// New builds an Engine from a compiled Config and an output Writer.
// querierFor resolves a device name to the WindowQuerier to use when a
// fresh KeyContext must be built (normally internal/wincontext's active
// provider, constant across devices, but pluggable per-device for tests).
func New(cfg *Config, w Writer, querierFor func(string) WindowQuerier, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(nilWriter{}, "", 0)
	}
	return &Engine{
		cfg:        cfg,
		Output:     NewOutput(w, cfg.PreDelay, cfg.PostDelay),
		sticky:     NewStickyTable(),
		cache:      NewRepeatCache(),
		pressed:    map[Key]*Keystate{},
		now:        time.Now,
		log:        logger,
		querierFor: querierFor,
	}
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

// NonePressed reports whether no key at all is currently tracked as down.
func (e *Engine) NonePressed() bool { return len(e.pressed) == 0 }

// PressedMods returns the modifiers currently down, resolved to their
// specific (left/right) identity. A multi-purpose key resolved to its hold
// role counts as its hold key's modifier identity; one still unresolved
// contributes nothing (its eventual role is still undecided).
func (e *Engine) PressedMods() []Modifier {
	var out []Modifier
	for _, ks := range e.pressed {
		key, ok := e.modifierKeyFor(ks)
		if !ok {
			continue
		}
		if m, ok := ModifierFromKey(key); ok {
			out = append(out, specificSide(m, key))
		}
	}
	return out
}

// modifierKeyFor returns the key ks currently contributes as a modifier
// identity, if any: its own key for a plain modifier keystate, or its hold
// key once a multi-purpose keystate has resolved to the hold role.
func (e *Engine) modifierKeyFor(ks *Keystate) (Key, bool) {
	if ks.IsMultiPurpose {
		if ks.Resolved && ks.ResolvedHold {
			return ks.HoldKey, true
		}
		return 0, false
	}
	if ks.IsModifier {
		return ks.Key, true
	}
	return 0, false
}

// isModifierRole reports whether ks currently behaves as a modifier for
// purposes of the suspend/spent/exerted-on-output bookkeeping in
// transform.go's on_mod_key-equivalent paths.
func (e *Engine) isModifierRole(ks *Keystate) bool {
	_, ok := e.modifierKeyFor(ks)
	return ok
}

func specificSide(generic Modifier, k Key) Modifier {
	for _, cand := range allModifiers {
		if cand.IsSpecific() {
			for _, ck := range cand.Keys() {
				if ck == k {
					return cand
				}
			}
		}
	}
	return generic
}

// ActiveKeymap returns the innermost (most recently entered) active
// keymap, or nil if the stack is empty (top-level).
func (e *Engine) ActiveKeymap() *Keymap {
	if len(e.activeKeymaps) == 0 {
		return nil
	}
	return e.activeKeymaps[len(e.activeKeymaps)-1]
}

// Shutdown releases every asserted output key. Call once before closing
// the underlying virtual device (spec.md §4.8).
func (e *Engine) Shutdown() error {
	return e.Output.Shutdown()
}
