package engine

import (
	"testing"
	"time"
)

type fakeWriter struct {
	events []string
}

func (f *fakeWriter) WriteKeyAction(k Key, a Action) error {
	f.events = append(f.events, k.String()+":"+a.String())
	return nil
}

func (f *fakeWriter) Sync() error { return nil }

func newTestEngine() (*Engine, *fakeWriter) {
	cfg := DefaultConfig()
	w := &fakeWriter{}
	e := New(cfg, w, nil, nil)
	e.now = func() time.Time { return time.Unix(0, 0) }
	return e, w
}

func TestPassthroughUnmappedKey(t *testing.T) {
	e, w := newTestEngine()
	keyA, _ := KeyByName("A")

	if err := e.HandleEvent("dev0", keyA, Press); err != nil {
		t.Fatal(err)
	}
	if err := e.HandleEvent("dev0", keyA, Release); err != nil {
		t.Fatal(err)
	}

	want := []string{"A:press", "A:release"}
	if len(w.events) != len(want) || w.events[0] != want[0] || w.events[1] != want[1] {
		t.Errorf("got %v, want %v", w.events, want)
	}
}

func TestModmapRemapsKey(t *testing.T) {
	e, w := newTestEngine()
	capsLock, _ := KeyByName("CAPSLOCK")
	esc, _ := KeyByName("ESC")
	e.cfg.Modmaps = []*Modmap{NewModmap("caps-to-esc", map[Key]Key{capsLock: esc}, Always)}

	if err := e.HandleEvent("dev0", capsLock, Press); err != nil {
		t.Fatal(err)
	}
	if len(w.events) != 1 || w.events[0] != "ESC:press" {
		t.Errorf("expected ESC:press, got %v", w.events)
	}
}

func TestComboDispatchAndSpentModifierSwallowed(t *testing.T) {
	e, w := newTestEngine()
	ctrl, _ := KeyByName("LEFTCTRL")
	a, _ := KeyByName("A")
	b, _ := KeyByName("B")

	km := NewKeymap("top", Always)
	km.Bind(NewCombo(a, Control), KeyCommand(b))
	e.cfg.Keymaps = []*Keymap{km}

	if err := e.HandleEvent("dev0", ctrl, Press); err != nil {
		t.Fatal(err)
	}
	w.events = nil // the lone modifier press is withheld by the suspend timer; start from a clean slate

	if err := e.HandleEvent("dev0", a, Press); err != nil {
		t.Fatal(err)
	}
	foundB := false
	for _, ev := range w.events {
		if ev == "B:press" {
			foundB = true
		}
	}
	if !foundB {
		t.Fatalf("expected combo to emit B:press, got %v", w.events)
	}

	w.events = nil
	if err := e.HandleEvent("dev0", ctrl, Release); err != nil {
		t.Fatal(err)
	}
	for _, ev := range w.events {
		if ev == "LEFTCTRL:release" {
			t.Errorf("spent modifier release should have been swallowed, got %v", w.events)
		}
	}
}

func TestMultiPurposeTapVsHold(t *testing.T) {
	e, _ := newTestEngine()
	capsLock, _ := KeyByName("CAPSLOCK")
	esc, _ := KeyByName("ESC")
	e.cfg.MultiModmaps = []*MultiModmap{
		NewMultiModmap("caps-dual", map[Key]MultiModmapEntry{
			capsLock: {Tap: esc, Hold: 29 /* LEFTCTRL */},
		}, Always),
	}

	w := e.Output.w.(*fakeWriter)

	// Tap: press then release quickly, nothing else pressed.
	if err := e.HandleEvent("dev0", capsLock, Press); err != nil {
		t.Fatal(err)
	}
	if len(w.events) != 0 {
		t.Fatalf("multi-purpose press should defer output, got %v", w.events)
	}
	if err := e.HandleEvent("dev0", capsLock, Release); err != nil {
		t.Fatal(err)
	}
	want := []string{"ESC:press", "ESC:release"}
	if len(w.events) != 2 || w.events[0] != want[0] || w.events[1] != want[1] {
		t.Errorf("expected tap resolution %v, got %v", want, w.events)
	}
}

func TestMultiPurposeResolvesHoldWhenInterrupted(t *testing.T) {
	e, _ := newTestEngine()
	capsLock, _ := KeyByName("CAPSLOCK")
	esc, _ := KeyByName("ESC")
	ctrlKey, _ := KeyByName("LEFTCTRL")
	j, _ := KeyByName("J")
	e.cfg.MultiModmaps = []*MultiModmap{
		NewMultiModmap("caps-dual", map[Key]MultiModmapEntry{
			capsLock: {Tap: esc, Hold: ctrlKey},
		}, Always),
	}

	if err := e.HandleEvent("dev0", capsLock, Press); err != nil {
		t.Fatal(err)
	}
	if err := e.HandleEvent("dev0", j, Press); err != nil {
		t.Fatal(err)
	}

	ks := e.pressed[capsLock]
	if ks == nil || !ks.Resolved || !ks.ResolvedHold {
		t.Fatalf("expected capslock resolved as hold after interruption, got %+v", ks)
	}
}

func TestSuspendTimerOnlyLengthens(t *testing.T) {
	e, _ := newTestEngine()
	fakeNow := time.Unix(1000, 0)
	e.now = func() time.Time { return fakeNow }

	e.SuspendOrResuspend(500 * time.Millisecond)
	firstDeadline := e.suspendDeadline

	e.SuspendOrResuspend(100 * time.Millisecond) // shorter: must be a no-op
	if e.suspendDeadline != firstDeadline {
		t.Errorf("shorter resuspend must not shrink the deadline: got %v, want %v", e.suspendDeadline, firstDeadline)
	}

	e.SuspendOrResuspend(900 * time.Millisecond) // longer: must extend
	if !e.suspendDeadline.After(firstDeadline) {
		t.Errorf("longer resuspend must extend the deadline")
	}
}

func TestStickyRefusesSecondConcurrentBind(t *testing.T) {
	ctrl, _ := KeyByName("LEFTCTRL")
	shift, _ := KeyByName("LEFTSHIFT")
	alt, _ := KeyByName("LEFTALT")
	meta, _ := KeyByName("LEFTMETA")

	st := NewStickyTable()
	if ok := st.TryBind(ctrl, shift); !ok {
		t.Fatal("first bind should succeed")
	}
	if ok := st.TryBind(alt, meta); ok {
		t.Fatal("second concurrent bind should be refused")
	}
	st.Release()
	if ok := st.TryBind(alt, meta); !ok {
		t.Fatal("bind should succeed again after release")
	}
}

// TestMultiPurposeHoldResolutionEmitsOutput reproduces end-to-end scenario
// S4: two dual-role keys resolve to LCTRL/LALT hold and must each press
// their hold key to the output before the interrupting key's own combo
// fires (review finding 1/2 — previously only internal flags flipped and
// no PRESS ever reached the output).
func TestMultiPurposeHoldResolutionEmitsOutput(t *testing.T) {
	e, w := newTestEngine()
	a, _ := KeyByName("A")
	b, _ := KeyByName("B")
	c, _ := KeyByName("C")
	ctrlKey, _ := KeyByName("LEFTCTRL")
	altKey, _ := KeyByName("LEFTALT")
	del, _ := KeyByName("DELETE")
	e.cfg.MultiModmaps = []*MultiModmap{
		NewMultiModmap("dual-role", map[Key]MultiModmapEntry{
			a: {Tap: a, Hold: ctrlKey},
			b: {Tap: b, Hold: altKey},
		}, Always),
	}
	km := NewKeymap("top", Always)
	km.Bind(NewCombo(c, Control, Alt), KeyCommand(del))
	e.cfg.Keymaps = []*Keymap{km}

	mustHandle := func(key Key, action Action) {
		if err := e.HandleEvent("dev0", key, action); err != nil {
			t.Fatal(err)
		}
	}
	mustHandle(a, Press)
	mustHandle(b, Press)
	mustHandle(c, Press)

	wantInOrder := []string{"LEFTCTRL:press", "LEFTALT:press", "DELETE:press"}
	idx := 0
	for _, ev := range w.events {
		if idx < len(wantInOrder) && ev == wantInOrder[idx] {
			idx++
		}
	}
	if idx != len(wantInOrder) {
		t.Fatalf("expected %v in order, got %v", wantInOrder, w.events)
	}

	ksA := e.pressed[a]
	ksB := e.pressed[b]
	if ksA == nil || !ksA.ExertedOnOutput || !ksA.ResolvedHold {
		t.Errorf("A should be resolved-hold and exerted on output, got %+v", ksA)
	}
	if ksB == nil || !ksB.ExertedOnOutput || !ksB.ResolvedHold {
		t.Errorf("B should be resolved-hold and exerted on output, got %+v", ksB)
	}

	// Releasing A must now emit a real RELEASE for LEFTCTRL: its PRESS
	// really reached the output, so Testable Property #2 requires a
	// matching RELEASE, not a swallow.
	w.events = nil
	mustHandle(a, Release)
	foundRelease := false
	for _, ev := range w.events {
		if ev == "LEFTCTRL:release" {
			foundRelease = true
		}
	}
	if !foundRelease {
		t.Errorf("expected LEFTCTRL:release after releasing resolved-hold A, got %v", w.events)
	}
}

// TestStandaloneModifierTapIsPassthrough covers review finding 3: a bare
// modifier pressed and released with nothing else held and no combo ever
// matching it must still reach the output as a PRESS followed by a
// RELEASE — the table-wide suspend timer may not swallow it outright.
func TestStandaloneModifierTapIsPassthrough(t *testing.T) {
	e, w := newTestEngine()
	ctrl, _ := KeyByName("LEFTCTRL")

	if err := e.HandleEvent("dev0", ctrl, Press); err != nil {
		t.Fatal(err)
	}
	if len(w.events) != 0 {
		t.Fatalf("a lone modifier press should be withheld pending suspension, got %v", w.events)
	}
	if err := e.HandleEvent("dev0", ctrl, Release); err != nil {
		t.Fatal(err)
	}
	want := []string{"LEFTCTRL:press", "LEFTCTRL:release"}
	if len(w.events) != 2 || w.events[0] != want[0] || w.events[1] != want[1] {
		t.Errorf("expected pass-through tap %v, got %v", want, w.events)
	}
}

// TestStickyBindInstallsAndLifts reproduces end-to-end scenario S5:
// LMETA bound via (BIND, LCTRL+SPACE) installs a sticky bind from LMETA
// to LCTRL, which a later LMETA release must lift instead of forwarding
// LMETA's own release (review finding 4 — autoSticky previously bound
// the target combo's modifier to itself and was never consulted on
// release).
func TestStickyBindInstallsAndLifts(t *testing.T) {
	e, w := newTestEngine()
	meta, _ := KeyByName("LEFTMETA")
	space, _ := KeyByName("SPACE")
	ctrlKey, _ := KeyByName("LEFTCTRL")

	km := NewKeymap("top", Always)
	km.Bind(NewCombo(meta), ListCommand(
		HintCommand(HintBind),
		ComboCommand(NewCombo(space, Control)),
	))
	e.cfg.Keymaps = []*Keymap{km}

	if err := e.HandleEvent("dev0", meta, Press); err != nil {
		t.Fatal(err)
	}
	foundCtrlPress := false
	for _, ev := range w.events {
		if ev == "LEFTCTRL:press" {
			foundCtrlPress = true
		}
	}
	if !foundCtrlPress {
		t.Fatalf("expected sticky bind to press LEFTCTRL, got %v", w.events)
	}
	if _, ok := e.sticky.Active(); !ok {
		t.Fatal("expected a sticky bind to be installed")
	}

	w.events = nil
	if err := e.HandleEvent("dev0", meta, Release); err != nil {
		t.Fatal(err)
	}
	if len(w.events) != 1 || w.events[0] != "LEFTCTRL:release" {
		t.Errorf("expected sticky release of LEFTCTRL, got %v", w.events)
	}
	if _, ok := e.sticky.Active(); ok {
		t.Error("sticky bind should be cleared after lift")
	}
	_ = ctrlKey
}

// TestCommandListExecutesInOrder covers review finding 5: a Keymap
// binding may resolve to a list<Command>, every element of which the
// executor must run in order.
func TestCommandListExecutesInOrder(t *testing.T) {
	e, w := newTestEngine()
	f, _ := KeyByName("F")
	x, _ := KeyByName("X")
	y, _ := KeyByName("Y")

	km := NewKeymap("top", Always)
	km.Bind(NewCombo(f), ListCommand(KeyCommand(x), KeyCommand(y)))
	e.cfg.Keymaps = []*Keymap{km}

	if err := e.HandleEvent("dev0", f, Press); err != nil {
		t.Fatal(err)
	}
	idxX, idxY := -1, -1
	for i, ev := range w.events {
		if ev == "X:press" {
			idxX = i
		}
		if ev == "Y:press" {
			idxY = i
		}
	}
	if idxX == -1 || idxY == -1 || idxX > idxY {
		t.Errorf("expected X:press before Y:press, got %v", w.events)
	}
}

func TestRepeatCacheInvalidatesOnModifierChange(t *testing.T) {
	c := NewRepeatCache()
	a, _ := KeyByName("A")
	c.Store(a, []Modifier{Control}, CachedOutput{Kind: OutputKeyOnly, Key: a})

	if _, ok := c.Lookup(a, []Modifier{Control}); !ok {
		t.Fatal("expected cache hit for unchanged modifiers")
	}
	if _, ok := c.Lookup(a, []Modifier{Shift}); ok {
		t.Fatal("expected cache miss after modifier change")
	}
}

func TestReservedKeysNeverRemapped(t *testing.T) {
	e, w := newTestEngine()
	e.cfg.Modmaps = []*Modmap{NewModmap("all", map[Key]Key{KeyDumpDiagnostics: 30}, Always)}

	if err := e.HandleEvent("dev0", KeyDumpDiagnostics, Press); err != nil {
		t.Fatal(err)
	}
	if len(w.events) != 1 || w.events[0] != "F15:press" {
		t.Errorf("expected reserved key to pass through unmapped, got %v", w.events)
	}
}
