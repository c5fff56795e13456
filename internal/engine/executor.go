package engine

// execute runs a matched Command and reports the CachedOutput a
// subsequent REPEAT of the same combo could replay (spec.md §4.9). trigger
// is the input Combo whose match dispatched this command — needed by the
// BIND hint to install a sticky binding from the right input key
// (spec.md §4.7). Grounded on xwaykeyz's transform.py:handle_commands.
func (e *Engine) execute(cmd Command, kc *KeyContext, trigger Combo) (CachedOutput, error) {
	switch cmd.Kind {
	case CmdHint:
		return e.executeHint(cmd.Hint), nil

	case CmdCombo:
		combo := cmd.Combo
		if e.nextBindHint {
			e.nextBindHint = false
			e.autoSticky(combo, trigger)
		}
		e.Output.AllowSuspend()
		err := e.Output.SendCombo(combo)
		e.Output.DisallowSuspend()
		return CachedOutput{Kind: OutputCombo, Combo: combo}, err

	case CmdKey:
		if e.escapeNextKey {
			e.escapeNextKey = false
			err := e.Output.SendKey(cmd.Key)
			return CachedOutput{Kind: OutputKeyOnly, Key: cmd.Key}, err
		}
		err := e.Output.SendKey(cmd.Key)
		return CachedOutput{Kind: OutputKeyOnly, Key: cmd.Key}, err

	case CmdFunc:
		cmd.Func.invoke(kc)
		return CachedOutput{Kind: OutputUncacheable}, nil

	case CmdKeymap:
		e.enterKeymap(cmd.Keymap, cmd.Trigger)
		return CachedOutput{Kind: OutputUncacheable}, nil

	case CmdList:
		var out CachedOutput
		for _, sub := range cmd.List {
			var err error
			out, err = e.execute(sub, kc, trigger)
			if err != nil {
				return out, err
			}
		}
		// A list's outcome as a whole is never replayed verbatim on
		// repeat: only the final sub-command's output type is known to
		// the cache, and spec.md §4.9 excludes lists outright.
		return CachedOutput{Kind: OutputUncacheable}, nil
	}
	return CachedOutput{}, nil
}

func (e *Engine) executeHint(h Hint) CachedOutput {
	switch h {
	case HintBind:
		e.nextBindHint = true
	case HintEscapeNextKey:
		e.escapeNextKey = true
	case HintIgnoreKey:
		// No-op: the matched combo is intentionally absorbed.
	}
	return CachedOutput{Kind: OutputUncacheable}
}

// autoSticky implements spec.md §4.7's installation algorithm. inkey is
// taken from the triggering combo's first modifier, falling back to the
// triggering combo's own key when it carries no modifiers and is itself a
// modifier key (a standalone dual-purpose-free modifier rule, e.g. a bare
// Super-key binding). outkey is the target combo's first modifier.
func (e *Engine) autoSticky(target, trigger Combo) {
	inkey, ok := stickyInputKey(trigger)
	if !ok || len(target.Mods) == 0 {
		return
	}
	outkey := target.Mods[0].Key()

	if ks, tracked := e.pressed[inkey]; tracked && ks.ExertedOnOutput {
		coveredByOutput := false
		for _, m := range target.Mods {
			if m.Key() == inkey {
				coveredByOutput = true
				break
			}
		}
		if !coveredByOutput {
			_ = e.Output.SendKeyAction(inkey, Release)
			ks.ExertedOnOutput = false
		}
	}

	if !e.sticky.TryBind(inkey, outkey) {
		e.log.Println("refusing to engage second sticky bind over existing sticky bind")
		return
	}
	if !e.Output.IsModPressed(outkey) {
		_ = e.Output.SendKeyAction(outkey, Press)
	}
}

func stickyInputKey(trigger Combo) (Key, bool) {
	if len(trigger.Mods) > 0 {
		return trigger.Mods[0].Key(), true
	}
	if IsKeyModifier(trigger.Key) {
		return trigger.Key, true
	}
	return 0, false
}

// enterKeymap pushes km onto the active keymap stack at once, whatever the
// trigger. Every active keymap, of either trigger, is popped the next time
// NonePressed() becomes true (MaybeExitKeymaps), or one at a time by
// ExitKeymap.
func (e *Engine) enterKeymap(km *Keymap, trigger Trigger) {
	e.activeKeymaps = append(e.activeKeymaps, km)
	if trigger == TriggerOnRelease {
		// handled opportunistically: see MaybeExitKeymaps, called from
		// handleRelease once all keys are up.
	}
}

// ExitKeymap pops the innermost active keymap, if any.
func (e *Engine) ExitKeymap() {
	if len(e.activeKeymaps) == 0 {
		return
	}
	e.activeKeymaps = e.activeKeymaps[:len(e.activeKeymaps)-1]
}

// MaybeExitKeymaps pops every active keymap once no key is held at all,
// which is the natural end of a held-to-activate nested keymap.
func (e *Engine) MaybeExitKeymaps() {
	if e.NonePressed() {
		e.activeKeymaps = nil
	}
}
