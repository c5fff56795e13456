package engine

import (
	"sort"
	"strings"
)

// Combo is a modifier set plus a triggering key, e.g. Ctrl+Shift+A.
// Combo is deliberately not used directly as a map key (its modifier set
// is a slice); Fingerprint gives the canonical, order-independent string
// used for matching and for the repeat cache (spec.md §4.9).
type Combo struct {
	Mods []Modifier
	Key  Key
}

// NewCombo builds a Combo from a key and zero or more modifiers.
func NewCombo(key Key, mods ...Modifier) Combo {
	c := Combo{Key: key, Mods: append([]Modifier(nil), mods...)}
	return c
}

// Fingerprint returns a canonical string representation independent of
// modifier order, suitable as a map key.
func (c Combo) Fingerprint() string {
	names := make([]string, len(c.Mods))
	for i, m := range c.Mods {
		names[i] = m.String()
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('+')
	}
	b.WriteString(c.Key.String())
	return b.String()
}

// Matches reports whether the given pressed-modifier set (by generic or
// specific identity) and key satisfy this combo. A generic modifier in the
// combo matches either physical side being held; a specific modifier
// requires that exact side.
func (c Combo) Matches(key Key, pressed []Modifier) bool {
	if key != c.Key {
		return false
	}
	if len(pressed) != len(c.Mods) {
		return false
	}
	for _, want := range c.Mods {
		found := false
		for _, have := range pressed {
			if modifierSatisfies(want, have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func modifierSatisfies(want, have Modifier) bool {
	if want == have {
		return true
	}
	if want.IsSpecific() {
		// A specific want (e.g. L_CONTROL) requires that exact side;
		// have is only ever generic here if nothing more specific was
		// resolved, which modifierSatisfies treats as no match.
		return false
	}
	return want.family() == have.family()
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, m.String())
	}
	parts = append(parts, c.Key.String())
	return strings.Join(parts, "-")
}
