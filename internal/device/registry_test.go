package device

import (
	"io"
	"log"
	"path/filepath"
	"strconv"
	"testing"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestWantedRespectsOnlyFilter(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Only = []string{"/dev/input/event3"}

	if !r.Wanted("/dev/input/event3", "Some Keyboard") {
		t.Error("expected event3 to be wanted")
	}
	if r.Wanted("/dev/input/event4", "Other Keyboard") {
		t.Error("expected event4 to be excluded when Only is set")
	}
}

func TestWantedRespectsAvoidFilter(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Avoid = []string{"Some Keyboard"}

	if r.Wanted("/dev/input/event3", "Some Keyboard") {
		t.Error("expected avoided device to be excluded")
	}
	if !r.Wanted("/dev/input/event4", "Other Keyboard") {
		t.Error("expected non-avoided device to be wanted")
	}
}

func TestWantedRejectsVirtualDevice(t *testing.T) {
	r := NewRegistry(testLogger())
	if r.Wanted("/dev/input/event9", "keyzen (virtual)") {
		t.Error("expected keyzen's own virtual device never to be grabbed")
	}
}

func TestDiscoverSortsNumerically(t *testing.T) {
	// Discover depends on /dev/input existing; skip if unavailable in the
	// test sandbox rather than failing the suite outright.
	paths, err := Discover()
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	prev := -1
	for _, p := range paths {
		m := eventFileRe.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			t.Fatalf("unexpected path %q", p)
		}
		n, _ := strconv.Atoi(m[1])
		if n <= prev {
			t.Errorf("paths not sorted numerically: %v", paths)
		}
		prev = n
	}
}
