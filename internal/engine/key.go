package engine

import "fmt"

// Key identifies a keyboard key by its Linux input-event-code value
// (linux/input-event-codes.h). The engine never talks to the kernel
// directly; internal/device and internal/uinput translate between Key
// and evdev.EvCode at the boundary named in spec.md §6.
type Key uint16

// F15/F16 are reserved: dump-diagnostics and emergency-eject. A press of
// either is never remapped itself (HandleEvent passes it straight through);
// nothing stops a modmap or combo from producing them as output.
const (
	KeyDumpDiagnostics Key = 185 // KEY_F15
	KeyEmergencyEject  Key = 186 // KEY_F16
)

var keyNames = map[Key]string{
	1: "ESC", 2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	12: "MINUS", 13: "EQUAL", 14: "BACKSPACE", 15: "TAB",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T", 21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	26: "LEFTBRACE", 27: "RIGHTBRACE", 28: "ENTER", 29: "LEFTCTRL",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G", 35: "H", 36: "J", 37: "K", 38: "L",
	39: "SEMICOLON", 40: "APOSTROPHE", 41: "GRAVE", 42: "LEFTSHIFT", 43: "BACKSLASH",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B", 49: "N", 50: "M",
	51: "COMMA", 52: "DOT", 53: "SLASH", 54: "RIGHTSHIFT", 56: "LEFTALT", 57: "SPACE",
	58: "CAPSLOCK",
	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5", 64: "F6",
	65: "F7", 66: "F8", 67: "F9", 68: "F10",
	87: "F11", 88: "F12",
	96: "KPENTER", 97: "RIGHTCTRL", 100: "RIGHTALT",
	102: "HOME", 103: "UP", 104: "PAGEUP", 105: "LEFT", 106: "RIGHT",
	107: "END", 108: "DOWN", 109: "PAGEDOWN", 110: "INSERT", 111: "DELETE",
	125: "LEFTMETA", 126: "RIGHTMETA", 127: "COMPOSE",
	183: "F13", 184: "F14", 185: "F15", 186: "F16", 187: "F17", 188: "F18",
	189: "F19", 190: "F20", 191: "F21", 192: "F22", 193: "F23", 194: "F24",
}

// String returns the key's bare name, e.g. "A", "LEFTSHIFT", "F15".
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KEY(%d)", uint16(k))
}

// IsReserved reports whether k is one of the two diagnostic keys that
// may never be remapped (spec.md §4.8).
func (k Key) IsReserved() bool {
	return k == KeyDumpDiagnostics || k == KeyEmergencyEject
}

var namesToKeys = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[name] = k
	}
	return m
}()

// KeyByName resolves a bare key name ("A", "LEFTSHIFT") to its Key value.
// Accepts an optional "KEY_" prefix for convenience when copy-pasting from
// kernel headers.
func KeyByName(name string) (Key, bool) {
	const prefix = "KEY_"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		name = name[len(prefix):]
	}
	k, ok := namesToKeys[name]
	return k, ok
}
