package device

import (
	"context"
	"errors"
	"os"
	"syscall"

	evdev "github.com/holoplot/go-evdev"

	"github.com/axeldev/keyzen/internal/engine"
)

// Interceptor is called for every EV_KEY event before it is forwarded to
// the main event channel. If it returns true, the event is considered
// handled (e.g. the reserved dump/eject keys, spec.md §4.8) and is not
// forwarded. Grounded on input.py:receive_input, which checks
// EMERGENCY_EJECT_KEY/DUMP_DIAGNOSTICS_KEY before calling on_event.
type Interceptor func(deviceName string, key engine.Key, action engine.Action) (handled bool)

// Listen reads events from g until ctx is canceled or the device is
// closed, sending translated key events to out. Mirrors the teacher's
// internal/hotkey/hotkey_linux.go Start() read loop: ReadOne in a loop,
// swallowing the errors that mean "device went away" rather than
// treating them as fatal (original_source/input.py:receive_input also
// swallows OSError errno 19, ENODEV).
func Listen(ctx context.Context, g *Grabbed, intercept Interceptor, out chan<- Event) error {
	errCh := make(chan error, 1)
	go func() {
		for {
			ev, err := g.dev.ReadOne()
			if err != nil {
				if errors.Is(err, os.ErrClosed) || os.IsNotExist(err) || errors.Is(err, syscall.ENODEV) {
					errCh <- nil
					return
				}
				errCh <- err
				return
			}
			if ev.Type != evdev.EV_KEY {
				continue
			}
			key := engine.Key(ev.Code)
			action := engine.Action(ev.Value)
			if intercept != nil && intercept(g.Name, key, action) {
				continue
			}
			select {
			case out <- Event{DeviceName: g.Name, Key: key, Action: action}:
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
