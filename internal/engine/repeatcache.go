package engine

// OutputKind tags what a cached repeat decision should replay.
type OutputKind int

const (
	OutputPassthrough OutputKind = iota
	OutputCombo
	OutputKeyOnly
	// OutputUncacheable marks a dispatch decision that must never be
	// stored for repeat (callables, nested keymaps, command lists, hints):
	// spec.md §4.9 limits cacheable output_type to passthrough/combo/key.
	OutputUncacheable
)

// CachedOutput is the memoized dispatch decision for a key's first REPEAT
// event: what it resolved to (passthrough, a synthesized combo, or a bare
// key), so that every subsequent REPEAT of the same physical key, under an
// unchanged modifier set, can skip the full combo-matcher walk. This is a
// performance-only addition named only in spec.md §4.9 — it has no
// counterpart in original_source/, so its shape is inferred from the
// spec's prose rather than grounded on a Python equivalent.
type CachedOutput struct {
	Kind  OutputKind
	Combo Combo
	Key   Key
}

// RepeatCache memoizes the dispatch decision made for a key's first REPEAT,
// keyed by (inkey, sorted modifier snapshot). A cache entry is valid only
// until any modifier changes, a different non-modifier key is pressed, the
// cached key itself is released, or a nested keymap is entered — all of
// which call Invalidate.
type RepeatCache struct {
	key       Key
	modsFp    string
	valid     bool
	out       CachedOutput
}

func NewRepeatCache() *RepeatCache { return &RepeatCache{} }

func modsFingerprint(mods []Modifier) string {
	c := Combo{Mods: mods}
	return c.Fingerprint()
}

// Lookup returns the cached decision if it is valid for the given key and
// currently-pressed modifier snapshot.
func (c *RepeatCache) Lookup(key Key, mods []Modifier) (CachedOutput, bool) {
	if !c.valid || c.key != key || c.modsFp != modsFingerprint(mods) {
		return CachedOutput{}, false
	}
	return c.out, true
}

// Store records the dispatch decision made for a key's first REPEAT.
func (c *RepeatCache) Store(key Key, mods []Modifier, out CachedOutput) {
	c.key = key
	c.modsFp = modsFingerprint(mods)
	c.out = out
	c.valid = true
}

// Invalidate drops the cached entry unconditionally.
func (c *RepeatCache) Invalidate() {
	c.valid = false
}

// InvalidateIfKeyReleased drops the cache if the released key is the one
// it is currently memoized for.
func (c *RepeatCache) InvalidateIfKeyReleased(key Key) {
	if c.valid && c.key == key {
		c.valid = false
	}
}
