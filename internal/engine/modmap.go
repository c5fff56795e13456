package engine

// Predicate decides whether a Modmap/Keymap applies given the current
// KeyContext. Represented as a small tagged value (regex-on-wm-class,
// its negation, or an arbitrary function) rather than a bare closure, so
// a dump can describe *what* a rule matched on (spec.md §4.8), mirroring
// xwaykeyz's wm_class_match/not_wm_class_match helpers.
type Predicate struct {
	describe string
	fn       func(*KeyContext) bool
}

func (p Predicate) String() string {
	if p.describe == "" {
		return "always"
	}
	return p.describe
}

func (p Predicate) Eval(kc *KeyContext) bool {
	if p.fn == nil {
		return true
	}
	return p.fn(kc)
}

// IsAlways reports whether p is unconditional. Predicate holds a func
// field, so it is not a comparable type (Go forbids == on struct types
// with func fields) — this is the supported way to test for the
// unconditional case instead of comparing against Always directly.
func (p Predicate) IsAlways() bool { return p.fn == nil }

// Always is the predicate satisfied unconditionally.
var Always = Predicate{describe: "always", fn: nil}

// NewPredicate builds a Predicate from an arbitrary function, labeled with
// describe for diagnostics dumps. Used by internal/rules to implement
// wm_class_match-style conditionals outside this package.
func NewPredicate(describe string, fn func(*KeyContext) bool) Predicate {
	return Predicate{describe: describe, fn: fn}
}

// Modmap remaps a physical key to a different key, optionally only while
// a predicate holds. Grounded on xwaykeyz's models/modmap.py:Modmap.
type Modmap struct {
	Name      string
	Mappings  map[Key]Key
	Condition Predicate
}

func NewModmap(name string, mappings map[Key]Key, cond Predicate) *Modmap {
	if cond.fn == nil && cond.describe == "" {
		cond = Always
	}
	return &Modmap{Name: name, Mappings: mappings, Condition: cond}
}

func (m *Modmap) Contains(k Key) bool {
	_, ok := m.Mappings[k]
	return ok
}

func (m *Modmap) Get(k Key) (Key, bool) {
	v, ok := m.Mappings[k]
	return v, ok
}

// MultiModmapEntry is the (tap, hold) pair a dual-role key resolves to.
// The original Python's multipurpose_modmap() stores a third, unused
// Action.RELEASE element ("why, we don't use this anywhere???" per its own
// comment) — dropped here since nothing ever reads it.
type MultiModmapEntry struct {
	Tap  Key
	Hold Key
}

// MultiModmap is a dual-role ("multipurpose") key table: each key resolves
// to Tap if released before the multi-purpose timeout elapses and no other
// key interrupts it, or to Hold if held past the timeout (or another key is
// pressed while it's held). Grounded on models/modmap.py:MultiModmap.
type MultiModmap struct {
	Name      string
	Mappings  map[Key]MultiModmapEntry
	Condition Predicate
}

func NewMultiModmap(name string, mappings map[Key]MultiModmapEntry, cond Predicate) *MultiModmap {
	if cond.fn == nil && cond.describe == "" {
		cond = Always
	}
	return &MultiModmap{Name: name, Mappings: mappings, Condition: cond}
}

func (m *MultiModmap) Contains(k Key) bool {
	_, ok := m.Mappings[k]
	return ok
}

func (m *MultiModmap) Get(k Key) (MultiModmapEntry, bool) {
	v, ok := m.Mappings[k]
	return v, ok
}
