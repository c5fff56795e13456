package device

import (
	"fmt"
	"log"
	"os"
)

// CheckPermissions verifies /dev/input exists, is a directory, and can be
// opened for reading (write access, which grab needs on most distros' udev
// rules, is not checked), logging a clear diagnostic instead of letting autodetection fail with a bare
// "no devices found". Grounded on devices.py:check_input_permissions —
// the original exits; here the caller decides whether to keep running
// (spec.md §7 requires the engine keep running with zero devices and
// recover once permissions are fixed, e.g. via a udev reload).
func CheckPermissions(logger *log.Logger) error {
	info, err := os.Stat("/dev/input")
	if err != nil {
		return fmt.Errorf("device: /dev/input: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("device: /dev/input is not a directory")
	}
	f, err := os.Open("/dev/input")
	if err != nil {
		logger.Printf("device: cannot read /dev/input: %v (are you in the 'input' group?)", err)
		return err
	}
	f.Close()
	return nil
}
