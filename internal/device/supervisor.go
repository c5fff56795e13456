package device

import (
	"context"
	"log"
	"time"
)

// Supervisor logs errors surfaced by per-device listener goroutines as they
// arrive, and also drains any queued errors on a 5-second ticker, after
// spec.md §5's 5-second supervisor and input.py:supervisor(). It does not
// watch the hotplug rescan goroutines.
func Supervisor(ctx context.Context, errs <-chan error, logger *log.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drain(errs, logger)
		case err := <-errs:
			if err != nil {
				logger.Printf("device: listener error: %v", err)
			}
		}
	}
}

func drain(errs <-chan error, logger *log.Logger) {
	for {
		select {
		case err := <-errs:
			if err != nil {
				logger.Printf("device: listener error: %v", err)
			}
		default:
			return
		}
	}
}
