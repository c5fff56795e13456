package engine

import "time"

// HandleEvent is the engine's single entry point: every key event read
// from a grabbed device (after the reserved-key interception that
// internal/device performs before calling in) is fed through here.
// Grounded on xwaykeyz's transform.py:on_event/on_key/transform_key, with
// Engine fields replacing that file's module-level globals.
func (e *Engine) HandleEvent(deviceName string, key Key, action Action) error {
	if err := e.checkSuspendExpiry(); err != nil {
		return err
	}

	if key.IsReserved() {
		// Should already have been intercepted upstream; refuse to
		// remap it if it somehow reaches here.
		return e.Output.SendKeyAction(key, action)
	}

	if action.IsRepeat() {
		return e.handleRepeat(deviceName, key)
	}
	if action.JustPressed() {
		return e.handlePress(deviceName, key)
	}
	return e.handleRelease(deviceName, key)
}

func (e *Engine) keyContextFor(deviceName string, cached *Keystate) *KeyContext {
	if cached != nil && cached.Ctx != nil {
		return FromCache(deviceName, cached.Ctx.Snapshot())
	}
	var q WindowQuerier
	if e.querierFor != nil {
		q = e.querierFor(deviceName)
	}
	return NewKeyContext(deviceName, q)
}

// applyModmap resolves a physical key through the first conditional Modmap
// whose condition holds and which binds key, falling back to the first
// Modmap whose condition holds (normally the unconditional default), and
// leaving key unchanged if none binds it.
func (e *Engine) applyModmap(key Key, kc *KeyContext) Key {
	for _, cm := range e.cfg.Modmaps {
		if !cm.Condition.IsAlways() && cm.Contains(key) && cm.Condition.Eval(kc) {
			return cm.Mappings[key]
		}
	}
	m := activeModmap(e.cfg.Modmaps, kc)
	if m == nil {
		return key
	}
	if out, ok := m.Get(key); ok {
		return out
	}
	return key
}

// applyMultiModmap returns the MultiModmapEntry bound to key, if any, with
// the same conditional-before-default precedence as applyModmap.
func (e *Engine) applyMultiModmap(key Key, kc *KeyContext) (MultiModmapEntry, bool) {
	for _, cm := range e.cfg.MultiModmaps {
		if !cm.Condition.IsAlways() && cm.Contains(key) && cm.Condition.Eval(kc) {
			return cm.Mappings[key], true
		}
	}
	m := activeMultiModmap(e.cfg.MultiModmaps, kc)
	if m == nil {
		return MultiModmapEntry{}, false
	}
	return m.Get(key)
}

func (e *Engine) handlePress(deviceName string, rawKey Key) error {
	kc := e.keyContextFor(deviceName, nil)
	key := e.applyModmap(rawKey, kc)

	// A press of any non-modifier key resolves every other held
	// multi-purpose key as its hold (modifier) role, and invalidates the
	// repeat cache (a different key interrupting the cached key's
	// context means any subsequently-cached repeat decision is stale).
	if !IsKeyModifier(key) {
		if err := e.resolveHeldMultiPurposeAsModifiers(); err != nil {
			return err
		}
		e.cache.Invalidate()
	}

	if entry, ok := e.applyMultiModmap(key, kc); ok {
		ks := NewMultiPurposeKeystate(key, entry.Tap, entry.Hold)
		ks.Ctx = kc
		e.pressed[rawKey] = ks
		// Defer dispatch until release (tap), until interrupted by
		// another key's PRESS (hold, resolveHeldMultiPurposeAsModifiers),
		// or until the multipurpose timeout fires (hold, resumeKeys) —
		// spec.md §4.4.
		ks.Suspended = true
		e.SuspendOrResuspend(e.cfg.MultiPurposeTimeout)
		return nil
	}

	ks := NewKeystate(key)
	ks.Ctx = kc

	if ks.IsModifier {
		// A modifier can itself be bound as a combo's key (e.g. a
		// standalone Super-key rule, spec.md end-to-end scenario S5):
		// probe it against the active keymaps, using only the other
		// currently-held modifiers, before falling back to the ordinary
		// suspend/passthrough modifier handling.
		mods := e.PressedMods()
		if cmd, combo, ok := e.lookupActive(key, mods, kc); ok {
			e.pressed[rawKey] = ks
			_, err := e.execute(cmd, kc, combo)
			if cmd.Kind == CmdCombo || cmd.Kind == CmdKey {
				e.markModifiersSpent()
				ks.Spent = true
			}
			return err
		}

		wasAlone := len(e.pressed) == 0
		e.pressed[rawKey] = ks
		e.cache.Invalidate()
		return e.pressModifier(ks, wasAlone)
	}

	e.pressed[rawKey] = ks
	out, err := e.dispatch(rawKey, key, kc)
	if err == nil && e.cfg.UseRepeatCache && out.Kind != OutputUncacheable {
		ks.PendingCache = out
		ks.HasPendingCache = true
	}
	return err
}

// pressModifier implements xwaykeyz's on_mod_key PRESS branch: a modifier
// pressed while nothing else is held (or while something is already
// suspended) is withheld from the output and joins the table-wide suspend
// timer; otherwise — another key is already asserted independently — it
// is pressed straight through.
func (e *Engine) pressModifier(ks *Keystate, wasAlone bool) error {
	if wasAlone || e.IsSuspended() {
		ks.Suspended = true
		e.SuspendOrResuspend(e.cfg.SuspendTimeout)
		return nil
	}
	if err := e.Output.SendKeyAction(ks.Key, Press); err != nil {
		return err
	}
	ks.ExertedOnOutput = true
	return nil
}

// resolveHeldMultiPurposeAsModifiers resolves every still-unresolved
// multi-purpose keystate to its hold role, pressing the hold key to the
// output unless it was already materialized by the suspend timer.
func (e *Engine) resolveHeldMultiPurposeAsModifiers() error {
	for _, ks := range e.pressed {
		if ks.IsMultiPurpose && !ks.Resolved {
			if err := e.resolveAsHeldModifier(ks); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveAsHeldModifier resolves ks to its hold role and, unless its hold
// key is already asserted on the output, emits its PRESS (spec.md §4.4:
// "its PRESS is emitted").
func (e *Engine) resolveAsHeldModifier(ks *Keystate) error {
	ks.ResolveAsModifier()
	ks.Suspended = false
	if ks.ExertedOnOutput {
		return nil
	}
	if err := e.Output.SendKeyAction(ks.HoldKey, Press); err != nil {
		return err
	}
	ks.ExertedOnOutput = true
	return nil
}

func (e *Engine) handleRepeat(deviceName string, rawKey Key) error {
	ks, tracked := e.pressed[rawKey]
	var key Key
	var kc *KeyContext
	if tracked {
		key = ks.EffectiveKey()
		kc = ks.Ctx
	} else {
		kc = e.keyContextFor(deviceName, nil)
		key = e.applyModmap(rawKey, kc)
	}

	mods := e.PressedMods()

	if e.cfg.UseRepeatCache {
		if cached, ok := e.cache.Lookup(key, mods); ok {
			return e.replay(cached)
		}
		// First REPEAT of this PRESS: promote the dispatch decision made
		// at PRESS time into the cache now, not before (spec.md §4.9).
		if tracked && ks.HasPendingCache {
			out := ks.PendingCache
			ks.HasPendingCache = false
			e.cache.Store(key, mods, out)
			return e.replay(out)
		}
	}

	if e.cfg.IgnoreRepeats {
		return e.Output.SendKeyAction(key, Repeat)
	}

	_, err := e.dispatch(rawKey, key, kc)
	return err
}

func (e *Engine) replay(out CachedOutput) error {
	switch out.Kind {
	case OutputCombo:
		return e.Output.SendCombo(out.Combo)
	default:
		return e.Output.SendKeyAction(out.Key, Repeat)
	}
}

// lookupActive scans the active keymap stack (or, if none is active, the
// first top-level keymap whose predicate holds) from innermost to
// top-level for a binding on (key, pressed). Returns the first match.
func (e *Engine) lookupActive(key Key, pressed []Modifier, kc *KeyContext) (Command, Combo, bool) {
	for i := len(e.activeKeymaps) - 1; i >= -1; i-- {
		var km *Keymap
		if i == -1 {
			if len(e.activeKeymaps) > 0 {
				break
			}
			km = e.topLevelKeymap(kc)
			if km == nil {
				break
			}
		} else {
			km = e.activeKeymaps[i]
			if !km.Condition.Eval(kc) {
				continue
			}
		}
		if cmd, combo, ok := km.Lookup(key, pressed); ok {
			return cmd, combo, true
		}
	}
	return Command{}, Combo{}, false
}

// dispatch is the combo matcher for ordinary (non-modifier) keys: it walks
// the active keymap stack via lookupActive. If nothing matches, the key
// passes through unchanged. The returned CachedOutput is the dispatch
// decision this call made, for the caller to promote into the repeat
// cache on the key's first REPEAT (spec.md §4.9).
func (e *Engine) dispatch(rawKey, key Key, kc *KeyContext) (CachedOutput, error) {
	mods := e.PressedMods()

	if cmd, combo, ok := e.lookupActive(key, mods, kc); ok {
		out, err := e.execute(cmd, kc, combo)
		if cmd.Kind == CmdCombo || cmd.Kind == CmdKey {
			e.markModifiersSpent()
			if ks, ok := e.pressed[rawKey]; ok {
				ks.Spent = true
			}
		}
		return out, err
	}

	if err := e.Output.SendKeyAction(key, Press); err != nil {
		return CachedOutput{}, err
	}
	return CachedOutput{Kind: OutputPassthrough, Key: key}, nil
}

func (e *Engine) topLevelKeymap(kc *KeyContext) *Keymap {
	for _, km := range e.cfg.Keymaps {
		if km.Condition.Eval(kc) {
			return km
		}
	}
	return nil
}

// markModifiersSpent flags every currently-held modifier keystate (plain
// or resolved-hold multi-purpose) not already independently exerted on
// the output as "spent": its eventual RELEASE must be swallowed rather
// than forwarded, since it was consumed by the combo that just fired
// rather than held for its own sake. A modifier the output already holds
// independently is left alone so its RELEASE still propagates (spec.md
// §4.5).
func (e *Engine) markModifiersSpent() {
	for _, ks := range e.pressed {
		if e.isModifierRole(ks) && !ks.ExertedOnOutput {
			ks.Spent = true
		}
	}
}

func (e *Engine) handleRelease(deviceName string, rawKey Key) error {
	ks, tracked := e.pressed[rawKey]
	if !tracked {
		// Unknown key (e.g. reserved or pre-existing press) — forward
		// as-is.
		return e.Output.SendKeyAction(rawKey, Release)
	}
	delete(e.pressed, rawKey)
	defer e.MaybeExitKeymaps()
	e.cache.InvalidateIfKeyReleased(ks.EffectiveKey())

	if outkey, ok := e.sticky.Lift(rawKey); ok {
		// The physical release of the sticky's input key lifts the bound
		// output key instead; the input key never reached the output
		// under its own identity while the bind was active (spec.md
		// §4.7 step 4).
		return e.Output.SendKeyAction(outkey, Release)
	}

	if ks.IsMultiPurpose && !ks.Resolved {
		ks.ResolveAsMomentary()
		ks.Suspended = false
		// Tap role: emit a full press+release of the tap key.
		if err := e.Output.SendKeyAction(ks.TapKey, Press); err != nil {
			return err
		}
		return e.Output.SendKeyAction(ks.TapKey, Release)
	}

	if e.isModifierRole(ks) {
		return e.releaseModifier(ks)
	}

	if ks.Spent {
		// Silently swallow: this key's press never reached the output
		// side under its own identity (it was consumed by a combo), so
		// its release shouldn't either.
		return nil
	}

	return e.Output.SendKeyAction(ks.EffectiveKey(), Release)
}

// releaseModifier implements xwaykeyz's on_mod_key RELEASE branch for a
// plain modifier keystate, or a multi-purpose keystate already resolved
// to its hold role. handleRelease has already removed ks from e.pressed,
// so resumeKeys (which only walks e.pressed) cannot materialize ks's own
// withheld press — that must happen here, before resumeKeys handles any
// other keystate the same table-wide timer was still holding.
func (e *Engine) releaseModifier(ks *Keystate) error {
	e.cache.Invalidate()
	key := ks.EffectiveKey()

	if ks.Spent {
		// Its press was silently consumed by a combo; its release is
		// swallowed the same way. markModifiersSpent never sets Spent on
		// a keystate already ExertedOnOutput, so there is nothing here
		// that still needs lifting.
		return nil
	}

	if ks.Suspended && !ks.ExertedOnOutput {
		// Its own press was withheld by the table-wide suspend timer and
		// never resolved by an interrupting key; this release is the
		// definitive signal that it was a bare tap, so materialize the
		// press before releasing it (spec.md §8's passthrough law: a
		// RELEASE must never reach the output without a prior PRESS).
		if err := e.Output.SendKeyAction(key, Press); err != nil {
			return err
		}
		ks.ExertedOnOutput = true
	}

	// Any other keystate the same table-wide timer was holding resolves
	// too: this release is as good a signal as the timeout firing.
	if err := e.resumeKeys(); err != nil {
		return err
	}

	if err := e.Output.SendKeyAction(key, Release); err != nil {
		return err
	}
	ks.ExertedOnOutput = false
	return nil
}

// SuspendOrResuspend arms (or lengthens) the suspend timer to expire
// timeout from now. Calling with a shorter timeout than one already
// pending is a no-op — the timer only ever lengthens (spec.md §4.4),
// matching xwaykeyz's resuspend_keys guard `if timeout < _last_suspend_timeout: return`.
func (e *Engine) SuspendOrResuspend(timeout time.Duration) {
	if e.lastSuspendTimeout != 0 && timeout < e.lastSuspendTimeout {
		return
	}
	wasSuspended := !e.suspendDeadline.IsZero()
	e.lastSuspendTimeout = timeout
	e.suspendDeadline = e.now().Add(timeout)
	if !wasSuspended {
		// Only the transition into suspension increments Output's
		// refcounted suspend depth: repeated lengthening (another key
		// joining the same suspend window) must not, or the single
		// DisallowSuspend in resumeKeys would never bring it back to 0.
		e.Output.AllowSuspend()
	}
}

// checkSuspendExpiry fires the suspend timer once its deadline has
// passed, materializing every still-suspended keystate via resumeKeys.
// Called at the top of every HandleEvent since the engine has no
// standalone timer callback (spec.md §4.4/§5: a single-threaded loop
// polls instead of scheduling a callback).
func (e *Engine) checkSuspendExpiry() error {
	if e.suspendDeadline.IsZero() {
		return nil
	}
	if e.now().Before(e.suspendDeadline) {
		return nil
	}
	return e.resumeKeys()
}

// resumeKeys cancels the suspend timer and materializes every keystate
// still marked Suspended: spent and suspended are cleared, a
// still-unresolved multi-purpose keystate falls back to its hold role,
// and if the keystate's effective key is not already asserted on the
// output its PRESS is emitted. Grounded on xwaykeyz's resume_keys().
func (e *Engine) resumeKeys() error {
	if !e.IsSuspended() {
		return nil
	}
	e.suspendDeadline = time.Time{}
	e.lastSuspendTimeout = 0
	e.Output.DisallowSuspend()

	for _, ks := range e.pressed {
		if !ks.Suspended {
			continue
		}
		ks.Spent = false
		ks.Suspended = false
		if ks.IsMultiPurpose && !ks.Resolved {
			ks.ResolveAsModifier()
		}
		if ks.ExertedOnOutput {
			continue
		}
		if err := e.Output.SendKeyAction(ks.EffectiveKey(), Press); err != nil {
			return err
		}
		ks.ExertedOnOutput = true
	}
	return nil
}

// IsSuspended reports whether the suspend timer is currently armed.
func (e *Engine) IsSuspended() bool { return !e.suspendDeadline.IsZero() }
