package engine

import "time"

// Keystate tracks one currently-pressed key's life from PRESS to RELEASE.
// Grounded on xwaykeyz's models/keystate.py. The engine never populates
// Prior (it stays nil); Copy() deep-copies it when set so a later in-place
// update of the live Keystate can't leak into a snapshot of it.
type Keystate struct {
	Key        Key
	PressedAt  time.Time
	IsModifier bool

	// MultiPurpose fields, set only for keys bound by a MultiModmap entry.
	IsMultiPurpose bool
	TapKey         Key
	HoldKey        Key
	Resolved       bool // true once resolved to either tap or hold
	ResolvedHold   bool // true if resolved as the hold key

	// Spent marks a modifier Keystate whose RELEASE must be silently
	// swallowed because it was consumed by a combo (spec.md §4.4).
	Spent bool

	// Suspended marks a Keystate currently withheld from the output by the
	// table-wide suspend timer (spec.md §4.4's Suspension paragraph).
	Suspended bool

	// ExertedOnOutput reports whether this keystate's effective key is
	// currently asserted on the output device. A modifier's PRESS can be
	// withheld (suspended) or silently consumed by a combo, so its RELEASE
	// must check this before deciding whether anything needs lifting.
	ExertedOnOutput bool

	// PendingCache holds the dispatch decision made for this keystate's
	// PRESS, not yet committed to the engine's RepeatCache. It is promoted
	// on the key's first REPEAT (spec.md §4.9): the cache is deliberately
	// not populated on the PRESS itself.
	PendingCache    CachedOutput
	HasPendingCache bool

	// Ctx is the window context resolved at PRESS time. REPEAT and
	// RELEASE events for this key reuse it via KeyContext.Snapshot/
	// FromCache instead of re-querying the window-context provider.
	Ctx *KeyContext

	Prior *Keystate
}

// NewKeystate creates a fresh Keystate for a key going down.
func NewKeystate(k Key) *Keystate {
	return &Keystate{Key: k, PressedAt: time.Now(), IsModifier: IsKeyModifier(k)}
}

// NewMultiPurposeKeystate creates a Keystate for a key bound in a
// MultiModmap, not yet resolved to tap or hold.
func NewMultiPurposeKeystate(k, tap, hold Key) *Keystate {
	ks := NewKeystate(k)
	ks.IsMultiPurpose = true
	ks.TapKey = tap
	ks.HoldKey = hold
	return ks
}

// Copy returns a deep copy of ks, including a recursive copy of Prior.
func (ks *Keystate) Copy() *Keystate {
	if ks == nil {
		return nil
	}
	cp := *ks
	cp.Prior = ks.Prior.Copy()
	return &cp
}

// IsPressed always reports true for a live Keystate (it exists only while
// the key is down); kept as a method for symmetry with the original's
// is_pressed() which checked the embedded Action.
func (ks *Keystate) IsPressed() bool { return ks != nil }

// ResolveAsMomentary marks a multi-purpose key resolved as its tap key
// (released quickly enough, no interrupting key pressed).
func (ks *Keystate) ResolveAsMomentary() {
	ks.Resolved = true
	ks.ResolvedHold = false
}

// ResolveAsModifier marks a multi-purpose key resolved as its hold key
// (held past the timeout, or another key was pressed while it was down).
func (ks *Keystate) ResolveAsModifier() {
	ks.Resolved = true
	ks.ResolvedHold = true
}

// EffectiveKey returns the key this keystate currently outputs as: the
// raw key if not multi-purpose or not yet resolved, otherwise the
// resolved tap/hold key.
func (ks *Keystate) EffectiveKey() Key {
	if !ks.IsMultiPurpose || !ks.Resolved {
		return ks.Key
	}
	if ks.ResolvedHold {
		return ks.HoldKey
	}
	return ks.TapKey
}
