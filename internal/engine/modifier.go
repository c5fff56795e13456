package engine

import "fmt"

// Modifier is a generic modifier identity (e.g. CONTROL) or a side-specific
// one (e.g. L_CONTROL). Grounded on xwaykeyz's models/modifier.py: a
// generic modifier owns both a left and a right Key; a specific modifier
// owns exactly one.
type Modifier struct {
	name    string
	left    Key
	right   Key
	generic bool
}

func (m Modifier) String() string { return m.name }

// IsSpecific reports whether m is bound to exactly one physical key side.
func (m Modifier) IsSpecific() bool { return !m.generic }

// Keys returns the physical keys this modifier covers: one for a specific
// modifier, two (left, right) for a generic one.
func (m Modifier) Keys() []Key {
	if m.generic {
		return []Key{m.left, m.right}
	}
	if m.left != 0 {
		return []Key{m.left}
	}
	return []Key{m.right}
}

// Key returns the key to assert on the output device for this modifier.
// For a specific modifier that's its one physical key; for a generic one
// (e.g. Control) it's the left side, by convention — output synthesis
// never needs to pick a side deliberately, since downstream apps treat
// either as equivalent.
func (m Modifier) Key() Key {
	if m.left != 0 {
		return m.left
	}
	return m.right
}

// ToLeft/ToRight narrow a generic modifier to its side-specific counterpart.
// Calling on an already-specific modifier returns it unchanged.
func (m Modifier) ToLeft() Modifier {
	if !m.generic {
		return m
	}
	return lookupBySide(m, true)
}

func (m Modifier) ToRight() Modifier {
	if !m.generic {
		return m
	}
	return lookupBySide(m, false)
}

func lookupBySide(m Modifier, left bool) Modifier {
	for _, cand := range allModifiers {
		if cand.generic || cand.family() != m.family() {
			continue
		}
		if left && cand.left != 0 {
			return cand
		}
		if !left && cand.right != 0 {
			return cand
		}
	}
	return m
}

// family groups L_X/R_X/X modifiers that share an underlying physical pair.
func (m Modifier) family() string {
	switch m.name {
	case "CONTROL", "L_CONTROL", "R_CONTROL":
		return "CONTROL"
	case "ALT", "L_ALT", "R_ALT":
		return "ALT"
	case "SHIFT", "L_SHIFT", "R_SHIFT":
		return "SHIFT"
	case "META", "L_META", "R_META":
		return "META"
	default:
		return m.name
	}
}

var (
	Control  = Modifier{name: "CONTROL", left: 29, right: 97, generic: true}
	LControl = Modifier{name: "L_CONTROL", left: 29}
	RControl = Modifier{name: "R_CONTROL", right: 97}

	Alt  = Modifier{name: "ALT", left: 56, right: 100, generic: true}
	LAlt = Modifier{name: "L_ALT", left: 56}
	RAlt = Modifier{name: "R_ALT", right: 100}

	Shift  = Modifier{name: "SHIFT", left: 42, right: 54, generic: true}
	LShift = Modifier{name: "L_SHIFT", left: 42}
	RShift = Modifier{name: "R_SHIFT", right: 54}

	Meta  = Modifier{name: "META", left: 125, right: 126, generic: true}
	LMeta = Modifier{name: "L_META", left: 125}
	RMeta = Modifier{name: "R_META", right: 126}

	Fn = Modifier{name: "FN", left: 464} // not a standard evdev code; placeholder binding
)

var allModifiers = []Modifier{
	Control, LControl, RControl,
	Alt, LAlt, RAlt,
	Shift, LShift, RShift,
	Meta, LMeta, RMeta,
	Fn,
}

var modifierAliases = map[string]Modifier{
	"CONTROL": Control, "CTRL": Control, "C": Control,
	"L_CONTROL": LControl, "LCONTROL": LControl, "LCTRL": LControl,
	"R_CONTROL": RControl, "RCONTROL": RControl, "RCTRL": RControl,

	"ALT": Alt, "A": Alt,
	"L_ALT": LAlt, "LALT": LAlt,
	"R_ALT": RAlt, "RALT": RAlt,

	"SHIFT": Shift, "S": Shift,
	"L_SHIFT": LShift, "LSHIFT": LShift,
	"R_SHIFT": RShift, "RSHIFT": RShift,

	"META": Meta, "SUPER": Meta, "WIN": Meta, "CMD": Meta, "M": Meta,
	"L_META": LMeta, "LSUPER": LMeta, "LWIN": LMeta, "LCOMMAND": LMeta, "LCMD": LMeta, "LMETA": LMeta,
	"R_META": RMeta, "RSUPER": RMeta, "RWIN": RMeta, "RCOMMAND": RMeta, "RCMD": RMeta, "RMETA": RMeta,

	"FN": Fn,
}

// NewModifier builds a custom single-key modifier (e.g. a "HYPER" modifier
// bound to F24), for use by internal/rules's AddModifier. Always specific
// (bound to one physical key), since a user-defined modifier has no
// inherent left/right pairing to generalize over.
func NewModifier(name string, key Key) Modifier {
	return Modifier{name: name, left: key}
}

// ModifierFromAlias resolves any recognized alias string to its Modifier.
func ModifierFromAlias(alias string) (Modifier, bool) {
	m, ok := modifierAliases[alias]
	return m, ok
}

// ModifierFromKey returns the modifier (generic form) that owns k, if any.
func ModifierFromKey(k Key) (Modifier, bool) {
	for _, m := range []Modifier{Control, Alt, Shift, Meta, Fn} {
		for _, mk := range m.Keys() {
			if mk == k {
				return m, true
			}
		}
	}
	return Modifier{}, false
}

// IsKeyModifier reports whether k is any modifier's physical key.
func IsKeyModifier(k Key) bool {
	_, ok := ModifierFromKey(k)
	return ok
}

func (m Modifier) GoString() string { return fmt.Sprintf("Modifier(%s)", m.name) }
