//go:build linux

package wincontext

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/axeldev/keyzen/internal/engine"
)

// X11Provider queries the X server for the focused window's WM_CLASS and
// title via _NET_ACTIVE_WINDOW, grounded on the xgbutil usage shown in the
// retrieval pack's BurntSushi-xgbutil examples (xgbutil.NewConn(),
// keybind-style property access) and extended with the ewmh/xprop
// subpackages xgbutil ships for exactly this lookup.
type X11Provider struct {
	conn *xgbutil.XUtil
}

// NewX11Provider connects to the X server named by $DISPLAY.
func NewX11Provider() (*X11Provider, error) {
	conn, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("wincontext: x11 connect: %w", err)
	}
	return &X11Provider{conn: conn}, nil
}

func (p *X11Provider) SupportedEnvironments() []string { return []string{"x11/"} }

func (p *X11Provider) Query() engine.WindowInfo {
	active, err := ewmh.ActiveWindowGet(p.conn)
	if err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	class, err := xprop.GetProperty(p.conn, active, "WM_CLASS")
	wmClass := ""
	if err == nil {
		strs, parseErr := xprop.PropValStrs(class, nil)
		if parseErr == nil && len(strs) > 0 {
			wmClass = strs[len(strs)-1]
		}
	}
	name, nameErr := ewmh.WmNameGet(p.conn, active)
	if nameErr != nil {
		name, _ = icccmWmName(p.conn, active)
	}
	return engine.WindowInfo{WMClass: wmClass, WMName: name}
}

func icccmWmName(conn *xgbutil.XUtil, win xproto.Window) (string, error) {
	prop, err := xprop.GetProperty(conn, win, "WM_NAME")
	if err != nil {
		return "", err
	}
	return xprop.PropValStr(prop)
}
