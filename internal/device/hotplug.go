package device

import (
	"context"
	"log"
	"time"

	"golang.org/x/sys/unix"
)

// WatchHotplug watches /dev/input for CREATE/ATTRIB/DELETE events and
// calls onChange after a debounce window once things settle, coalescing
// a burst of udev activity into a single rescan. Grounded on
// input.py:watch_dev_input/_inotify_handler (0.5s debounce).
//
// Uses golang.org/x/sys/unix directly for the inotify syscalls, the same
// "talk to the kernel without a wrapper library" idiom the gdamore/tcell
// example in the retrieval pack uses for raw termios access.
func WatchHotplug(ctx context.Context, debounce time.Duration, onChange func(), logger *log.Logger) error {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	_, err = unix.InotifyAddWatch(fd, "/dev/input", unix.IN_CREATE|unix.IN_ATTRIB|unix.IN_DELETE)
	if err != nil {
		return err
	}

	buf := make([]byte, 4096)
	var timer *time.Timer
	reset := make(chan struct{}, 1)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reset:
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, onChange)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			logger.Printf("device: inotify read: %v", err)
			return err
		}
		if n > 0 {
			select {
			case reset <- struct{}{}:
			default:
			}
		}
	}
}
