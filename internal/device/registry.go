package device

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// GrabError wraps a failure to exclusively grab a device, mirroring
// devices.py:DeviceGrabError.
type GrabError struct {
	Path string
	Err  error
}

func (e *GrabError) Error() string { return fmt.Sprintf("device: grab %s: %v", e.Path, e.Err) }
func (e *GrabError) Unwrap() error { return e.Err }

// grabRetries/grabInitialDelay/grabBackoffFactor mirror devices.py's
// DeviceRegistry.grab(): 9 attempts, starting at 200ms, doubling each
// time (waits of 200ms up to 51.2s, about 102s in total before giving up).
const (
	grabRetries        = 9
	grabInitialDelay   = 200 * time.Millisecond
	grabBackoffFactor  = 2
)

// Grabbed is one successfully grabbed keyboard device and its read loop.
type Grabbed struct {
	Path   string
	Name   string
	dev    *evdev.InputDevice
	cancel context.CancelFunc
}

// Registry tracks every currently-grabbed device and enforces the devices
// Only/Avoid filters from config.
type Registry struct {
	mu      sync.Mutex
	devices map[string]*Grabbed
	Only    []string
	Avoid   []string
	logger  *log.Logger
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{devices: map[string]*Grabbed{}, logger: logger}
}

// Wanted reports whether the registry's Only/Avoid filters accept a device
// with the given path/name.
func (r *Registry) Wanted(path, name string) bool {
	if IsVirtual(name) {
		return false
	}
	match := func(list []string) bool {
		for _, s := range list {
			if s == path || s == name {
				return true
			}
		}
		return false
	}
	if len(r.Only) > 0 {
		return match(r.Only)
	}
	if match(r.Avoid) {
		return false
	}
	return true
}

// Count reports how many devices are currently grabbed.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Contains reports whether path is already grabbed.
func (r *Registry) Contains(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.devices[path]
	return ok
}

// Grab opens and exclusively grabs the device at path, retrying with
// exponential backoff (another process may be racing to open it right
// after a hotplug event). Returns a *GrabError after exhausting retries.
func (r *Registry) Grab(ctx context.Context, path string) (*Grabbed, error) {
	delay := grabInitialDelay
	var lastErr error
	for attempt := 0; attempt < grabRetries; attempt++ {
		dev, err := evdev.Open(path)
		if err == nil {
			if !IsKeyboard(dev) {
				dev.Close()
				return nil, fmt.Errorf("device: %s is not a keyboard", path)
			}
			if err := dev.Grab(); err != nil {
				dev.Close()
				lastErr = err
			} else {
				name, _ := dev.Name()
				g := &Grabbed{Path: path, Name: name, dev: dev}
				r.mu.Lock()
				r.devices[path] = g
				r.mu.Unlock()
				return g, nil
			}
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= grabBackoffFactor
	}
	return nil, &GrabError{Path: path, Err: lastErr}
}

// Ungrab releases and closes the device at path, if grabbed.
func (r *Registry) Ungrab(path string) error {
	r.mu.Lock()
	g, ok := r.devices[path]
	if ok {
		delete(r.devices, path)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if g.cancel != nil {
		g.cancel()
	}
	g.dev.Ungrab()
	return g.dev.Close()
}

// UngrabAll releases every grabbed device, used on shutdown and by the
// emergency-eject path (spec.md §4.8).
func (r *Registry) UngrabAll() {
	r.mu.Lock()
	paths := make([]string, 0, len(r.devices))
	for p := range r.devices {
		paths = append(paths, p)
	}
	r.mu.Unlock()
	for _, p := range paths {
		_ = r.Ungrab(p)
	}
}

// Autodetect grabs every currently-present keyboard device matching the
// Only/Avoid filters. Unlike a one-shot scan, it logs and continues
// running if nothing is found — spec.md §7 requires the engine stay up
// with zero devices grabbed, mirroring devices.py:DeviceRegistry.autodetect().
func (r *Registry) Autodetect(ctx context.Context) []*Grabbed {
	paths, err := Discover()
	if err != nil {
		r.logger.Printf("device: autodetect: %v", err)
		return nil
	}
	var grabbed []*Grabbed
	for _, path := range paths {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		name, _ := dev.Name()
		isKbd := IsKeyboard(dev)
		dev.Close()
		if !isKbd || !r.Wanted(path, name) || r.Contains(path) {
			continue
		}
		g, err := r.Grab(ctx, path)
		if err != nil {
			r.logger.Printf("device: %v", err)
			continue
		}
		grabbed = append(grabbed, g)
	}
	if len(grabbed) == 0 {
		r.logger.Printf("device: no keyboards grabbed yet; waiting for hotplug (check group membership / udev rules)")
	}
	return grabbed
}
