package engine

import (
	"time"

	"golang.org/x/exp/slices"
)

// Throttle floors: spec.md requires send_key_action to never go faster
// than this regardless of configuration, even when the configured delay
// is zero. The original Python's _THROTTLES has no such floor (only an
// upper clamp to 150ms) — this is a deliberate behavior change from
// original_source/, not a carried-over default.
const (
	MinPreDelay  = 1 * time.Millisecond
	MaxThrottle  = 150 * time.Millisecond
	MinPostDelay = 2 * time.Millisecond
)

// Writer is the kernel-facing boundary the Output synthesizer writes
// through. internal/uinput implements this against a real virtual
// keyboard device; tests substitute a recording fake.
type Writer interface {
	WriteKeyAction(k Key, a Action) error
	Sync() error
}

// Output owns the set of keys currently asserted on the virtual device and
// applies the configured pre/post throttle delays around every key action.
// Grounded on xwaykeyz's output.py:Output.
type Output struct {
	w Writer

	pressedKeys    map[Key]bool
	pressedMods    map[Key]bool
	preDelay       time.Duration
	postDelay      time.Duration
	suspendDepth   int
	suspendedMods  []Key
	sleeper        func(time.Duration)
}

func NewOutput(w Writer, preDelay, postDelay time.Duration) *Output {
	if preDelay < MinPreDelay {
		preDelay = MinPreDelay
	}
	if preDelay > MaxThrottle {
		preDelay = MaxThrottle
	}
	if postDelay < MinPostDelay {
		postDelay = MinPostDelay
	}
	if postDelay > MaxThrottle {
		postDelay = MaxThrottle
	}
	return &Output{
		w:           w,
		pressedKeys: map[Key]bool{},
		pressedMods: map[Key]bool{},
		preDelay:    preDelay,
		postDelay:   postDelay,
		sleeper:     time.Sleep,
	}
}

// IsModPressed reports whether k is currently asserted as a modifier on
// the output device.
func (o *Output) IsModPressed(k Key) bool {
	return o.pressedMods[k]
}

func (o *Output) PressedKeys() []Key {
	out := make([]Key, 0, len(o.pressedKeys))
	for k := range o.pressedKeys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SendKeyAction asserts or releases a single key, honoring the configured
// (floored) pre/post delays.
func (o *Output) SendKeyAction(k Key, a Action) error {
	o.sleeper(o.preDelay)
	if err := o.sendKeyActionFast(k, a); err != nil {
		return err
	}
	o.sleeper(o.postDelay)
	return nil
}

// SendKeyActionFast bypasses the throttle delays entirely — used for the
// bulk RELEASE burst sent by the startup wakeup injection (spec.md §4.3
// step 1), where pacing every individual key would be needlessly slow.
// A RELEASE of a key with no PRESS on record is still written: that burst
// exists to clear state this Output never saw asserted.
func (o *Output) SendKeyActionFast(k Key, a Action) error {
	if a == Release && !o.pressedKeys[k] {
		if err := o.w.WriteKeyAction(k, a); err != nil {
			return err
		}
		return o.w.Sync()
	}
	return o.sendKeyActionFast(k, a)
}

func (o *Output) sendKeyActionFast(k Key, a Action) error {
	if a == Release && !o.pressedKeys[k] {
		// No prior PRESS on record for k: emitting this RELEASE would
		// violate the "no output RELEASE without a prior unmatched output
		// PRESS" invariant (spec.md §8), so it's silently dropped here.
		return nil
	}
	if err := o.w.WriteKeyAction(k, a); err != nil {
		return err
	}
	if a.IsPressed() {
		o.pressedKeys[k] = true
		if IsKeyModifier(k) {
			o.pressedMods[k] = true
		}
	} else {
		delete(o.pressedKeys, k)
		delete(o.pressedMods, k)
	}
	return o.w.Sync()
}

// SendCombo presses every modifier in c, presses and releases c.Key, then
// releases the modifiers in reverse order.
func (o *Output) SendCombo(c Combo) error {
	for _, m := range c.Mods {
		if err := o.SendKeyAction(m.Key(), Press); err != nil {
			return err
		}
	}
	if err := o.SendKeyAction(c.Key, Press); err != nil {
		return err
	}
	if err := o.SendKeyAction(c.Key, Release); err != nil {
		return err
	}
	for i := len(c.Mods) - 1; i >= 0; i-- {
		if err := o.SendKeyAction(c.Mods[i].Key(), Release); err != nil {
			return err
		}
	}
	return nil
}

// SendKey presses then releases a single key with no modifiers.
func (o *Output) SendKey(k Key) error {
	if err := o.SendKeyAction(k, Press); err != nil {
		return err
	}
	return o.SendKeyAction(k, Release)
}

// AllowSuspend increments the suspend depth. At depth 1 it snapshots and
// releases every currently-asserted modifier key on the virtual device, so
// downstream apps don't see a modifier stuck down while combos are being
// synthesized. Refcounted so nested combo dispatch composes safely.
func (o *Output) AllowSuspend() {
	o.suspendDepth++
	if o.suspendDepth != 1 {
		return
	}
	o.suspendedMods = o.suspendedMods[:0]
	for k := range o.pressedMods {
		o.suspendedMods = append(o.suspendedMods, k)
		_ = o.SendKeyAction(k, Release)
	}
}

// DisallowSuspend decrements the suspend depth. At depth 0 it re-presses
// every modifier key that AllowSuspend released, restoring the downstream
// app's modifier state to what the physical keyboard still holds.
func (o *Output) DisallowSuspend() {
	if o.suspendDepth == 0 {
		return
	}
	o.suspendDepth--
	if o.suspendDepth != 0 {
		return
	}
	for _, k := range o.suspendedMods {
		_ = o.SendKeyAction(k, Press)
	}
	o.suspendedMods = nil
}

// Shutdown releases every key still asserted on the virtual device before
// the caller closes it, so no key is left stuck down for other
// applications (spec.md §4.8).
func (o *Output) Shutdown() error {
	for k := range o.pressedKeys {
		if err := o.w.WriteKeyAction(k, Release); err != nil {
			return err
		}
	}
	o.pressedKeys = map[Key]bool{}
	o.pressedMods = map[Key]bool{}
	return o.w.Sync()
}
