package engine

// Keymap binds combos to commands, active only while its Condition holds.
// Keymaps nest: a Command of kind CmdKeymap pushes a child Keymap onto the
// active stack (transform.go), mirroring xwaykeyz's nested dict-of-dicts
// keymap(... conditional=...) structure.
type Keymap struct {
	Name      string
	Commands  map[string]mappedCommand // keyed by Combo.Fingerprint()
	Condition Predicate
}

type mappedCommand struct {
	combo   Combo
	command Command
}

func NewKeymap(name string, cond Predicate) *Keymap {
	if cond.fn == nil && cond.describe == "" {
		cond = Always
	}
	return &Keymap{Name: name, Commands: map[string]mappedCommand{}, Condition: cond}
}

// Bind registers combo -> cmd in this keymap.
func (k *Keymap) Bind(combo Combo, cmd Command) {
	k.Commands[combo.Fingerprint()] = mappedCommand{combo: combo, command: cmd}
}

// Lookup finds the command bound to a combo with the given key and
// currently-pressed modifier set. Returns false if nothing matches.
func (k *Keymap) Lookup(key Key, pressed []Modifier) (Command, Combo, bool) {
	for _, mc := range k.Commands {
		if mc.combo.Matches(key, pressed) {
			return mc.command, mc.combo, true
		}
	}
	return Command{}, Combo{}, false
}
