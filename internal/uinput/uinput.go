// Package uinput creates the virtual keyboard keyzen emits remapped
// events through. It is the one half of the kernel-facing boundary named
// in spec.md §6 (the other is internal/device); internal/engine never
// imports evdev directly.
package uinput

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"

	"github.com/axeldev/keyzen/internal/engine"
)

// DeviceName is reported to userspace tools (e.g. libinput list-devices)
// for the virtual keyboard keyzen creates, grounded on xwaykeyz's
// output.py VIRT_DEVICE_PREFIX constant.
const DeviceName = "keyzen (virtual)"

// mouseButtonCodes and touchpadButtonCodes mirror output.py's _MOUSE_BUTTONS and
// _TOUCHPAD_BUTTONS code ranges, included in the virtual device's
// capability set so combos that emit e.g. BTN_LEFT behave correctly.
var mouseButtonCodes = []evdev.EvCode{
	256, 257, 258, 259, 260, 261, 262, 263, 264, 265, 266, 267, 268, 269,
	270, 271, 272, 273, 274, 275, 276,
}

var touchpadButtonCodes = []evdev.EvCode{
	325, 326, 327, 328, 329, 330, 331, 332, 333, 334, 335, 336, 337, 338, 339,
}

// Device wraps an evdev virtual keyboard and implements engine.Writer.
type Device struct {
	dev *evdev.InputDevice
}

// Create opens /dev/uinput and registers a virtual keyboard with the full
// kernel key range (minus joystick buttons) plus mouse/touchpad buttons,
// matching output.py:real_uinput()'s capability set.
func Create() (*Device, error) {
	keyCodes := make([]evdev.EvCode, 0, 768)
	for code := evdev.EvCode(1); code < 768; code++ {
		if code >= 288 && code < 300 {
			continue // BTN_JOYSTICK range, excluded like the original
		}
		keyCodes = append(keyCodes, code)
	}
	keyCodes = append(keyCodes, mouseButtonCodes...)
	keyCodes = append(keyCodes, touchpadButtonCodes...)

	dev, err := evdev.CreateDevice(DeviceName, evdev.InputID{
		BusType: 0x03,
		Vendor:  0x4b5a, // "KZ"
		Product: 0x0001,
		Version: 0x0001,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyCodes,
		evdev.EV_REL: {0, 1, 6, 8, 9},
	})
	if err != nil {
		return nil, fmt.Errorf("uinput: create virtual device: %w", err)
	}
	return &Device{dev: dev}, nil
}

// WriteKeyAction implements engine.Writer.
func (d *Device) WriteKeyAction(k engine.Key, a engine.Action) error {
	return d.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  evdev.EvCode(k),
		Value: int32(a),
	})
}

// Sync implements engine.Writer, flushing an EV_SYN/SYN_REPORT so
// listening applications see a coherent event rather than a partial one.
func (d *Device) Sync() error {
	return d.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_SYN,
		Code:  0,
		Value: 0,
	})
}

// Close releases the virtual device.
func (d *Device) Close() error {
	return d.dev.Close()
}
