// Package device discovers, grabs, and reads from the kernel's
// /dev/input/event* nodes, and watches for hotplug changes. It is the
// evdev-facing half of the kernel boundary named in spec.md §6 (the other
// half is internal/uinput); together with cmd/keyzen's -list-devices
// listing they are the only code that imports github.com/holoplot/go-evdev.
// Grounded on the teacher's
// internal/hotkey/hotkey_linux.go (device discovery/open/read loop) and
// original_source/src/xwaykeyz/devices.py (registry, grab backoff,
// keyboard-capability detection).
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/axeldev/keyzen/internal/engine"
)

var eventFileRe = regexp.MustCompile(`^event(\d+)$`)

// Discover lists every /dev/input/event* node, sorted numerically by
// event number (mirroring the teacher's FindKeyboard glob-then-sort).
func Discover() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("device: read /dev/input: %w", err)
	}
	var paths []string
	var nums []int
	for _, e := range entries {
		m := eventFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		paths = append(paths, filepath.Join("/dev/input", fmt.Sprintf("event%d", n)))
	}
	return paths, nil
}

// IsKeyboard reports whether dev has the capability profile of a real
// keyboard: it can emit Q/W/E/R/T/Y and A/Z/SPACE, and does not report
// EV_REL (which would mean it's a mouse/trackpad sharing the node).
// Grounded on the teacher's isKeyboard() and devices.py's QWERTY/
// A_Z_SPACE capability lists.
func IsKeyboard(dev *evdev.InputDevice) bool {
	types := dev.CapableTypes()
	for _, t := range types {
		if t == evdev.EV_REL {
			return false
		}
	}
	keys := dev.CapableEvents(evdev.EV_KEY)
	has := func(code evdev.EvCode) bool {
		for _, k := range keys {
			if k == code {
				return true
			}
		}
		return false
	}
	required := []evdev.EvCode{16, 17, 18, 19, 20, 21, 30, 44, 57} // Q W E R T Y A Z SPACE
	for _, r := range required {
		if !has(r) {
			return false
		}
	}
	return true
}

// IsVirtual reports whether the device's name matches keyzen's own
// virtual output device (so the registry never grabs its own output),
// mirroring devices.py:DeviceFilter.is_virtual_device.
func IsVirtual(name string) bool {
	return strings.Contains(name, "(virtual)")
}

// Event is a translated key event ready for engine.Engine.HandleEvent.
type Event struct {
	DeviceName string
	Key        engine.Key
	Action     engine.Action
}
