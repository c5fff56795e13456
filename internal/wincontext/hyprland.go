//go:build linux

package wincontext

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/axeldev/keyzen/internal/engine"
)

// HyprlandProvider queries Hyprland's plain-text command socket
// (.socket.sock under $XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE)
// for the active window's class and title. Unlike sway's length-prefixed
// binary framing, Hyprland's command socket is a single write-then-read-
// until-EOF request/response, so no header parsing is needed here.
type HyprlandProvider struct {
	sockPath string
}

func NewHyprlandProvider() (*HyprlandProvider, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return nil, fmt.Errorf("wincontext: HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/run/user/0"
	}
	return &HyprlandProvider{
		sockPath: filepath.Join(runtimeDir, "hypr", sig, ".socket.sock"),
	}, nil
}

func (p *HyprlandProvider) SupportedEnvironments() []string { return []string{"wayland/hyprland"} }

func (p *HyprlandProvider) Query() engine.WindowInfo {
	conn, err := net.DialTimeout("unix", p.sockPath, 2*time.Second)
	if err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("activewindow")); err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	out, err := io.ReadAll(conn)
	if err != nil && len(out) == 0 {
		return engine.WindowInfo{Err: err.Error()}
	}
	return parseHyprlandActiveWindow(string(out))
}

// parseHyprlandActiveWindow reads the "key: value" lines hyprctl's
// activewindow command prints, pulling out "class" and "title".
func parseHyprlandActiveWindow(out string) engine.WindowInfo {
	info := engine.WindowInfo{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "class":
			info.WMClass = val
		case "title":
			info.WMName = val
		}
	}
	if info.WMClass == "" && info.WMName == "" {
		info.Err = "wincontext: no active hyprland window"
	}
	return info
}
