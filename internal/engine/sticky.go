package engine

// StickyBind is a temporary input-key -> output-key mapping installed by a
// BIND command: while it is active, the physical key InputKey is held
// silently on the input side and OutputKey is asserted on the output in
// its place, until InputKey's own physical RELEASE lifts OutputKey. Only
// one sticky bind may be active at a time (spec.md §4.7), mirroring
// xwaykeyz's single-entry `_sticky` dict guarded by auto_sticky().
type StickyBind struct {
	InputKey  Key
	OutputKey Key
}

// StickyTable tracks the single active sticky bind, if any.
type StickyTable struct {
	active *StickyBind
}

func NewStickyTable() *StickyTable { return &StickyTable{} }

// Active reports the current sticky bind, if one is installed.
func (t *StickyTable) Active() (StickyBind, bool) {
	if t.active == nil {
		return StickyBind{}, false
	}
	return *t.active, true
}

// TryBind installs a sticky bind from inkey to outkey. Returns false,
// refusing the request, if one is already active.
func (t *StickyTable) TryBind(inkey, outkey Key) bool {
	if t.active != nil {
		return false
	}
	t.active = &StickyBind{InputKey: inkey, OutputKey: outkey}
	return true
}

// Release tears down the active sticky bind unconditionally, if any.
func (t *StickyTable) Release() {
	t.active = nil
}

// Lift tears down the active sticky bind if its input key is key, and
// reports the output key it was bound to. Called on the physical RELEASE
// of a tracked key (spec.md §4.7 step 4); handleRelease uses the result
// to release the bound output key instead of key's own identity.
func (t *StickyTable) Lift(key Key) (Key, bool) {
	if t.active == nil || t.active.InputKey != key {
		return 0, false
	}
	outkey := t.active.OutputKey
	t.active = nil
	return outkey, true
}
