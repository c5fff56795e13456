//go:build linux

package wincontext

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/axeldev/keyzen/internal/engine"
)

// sway's i3-ipc wire framing: a 6-byte magic string, a little-endian
// uint32 payload length, a little-endian uint32 message type, then the
// JSON payload. Hand-rolled here rather than pulling in an i3ipc client
// library (none is present in the retrieval pack) — the framing itself is
// the same "raw socket wire protocol" idiom the pack's
// bnema-libwldevices-go Wayland client uses for its own hand-rolled
// protocol decoding.
const (
	swayMagic      = "i3-ipc"
	swayMsgGetTree = uint32(4)
)

// SwayProvider queries a running Sway compositor over its IPC socket
// (named by $SWAYSOCK) for the focused window's app_id/class and title.
// Grounded on original_source/src/xwaykeyz/lib/window_context.py's
// Wl_sway_WindowContext, which used the Python i3ipc library against the
// same socket and protocol.
type SwayProvider struct {
	sockPath string
}

func NewSwayProvider() (*SwayProvider, error) {
	sock := os.Getenv("SWAYSOCK")
	if sock == "" {
		return nil, fmt.Errorf("wincontext: SWAYSOCK not set")
	}
	return &SwayProvider{sockPath: sock}, nil
}

func (p *SwayProvider) SupportedEnvironments() []string { return []string{"wayland/sway"} }

type swayNode struct {
	Focused bool         `json:"focused"`
	AppID   string       `json:"app_id"`
	Name    string       `json:"name"`
	WinProp *swayWinProp `json:"window_properties"`
	Nodes   []swayNode   `json:"nodes"`
	Floats  []swayNode   `json:"floating_nodes"`
}

type swayWinProp struct {
	Class string `json:"class"`
}

func (p *SwayProvider) Query() engine.WindowInfo {
	conn, err := net.DialTimeout("unix", p.sockPath, 2*time.Second)
	if err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	defer conn.Close()

	if err := swaySend(conn, swayMsgGetTree, nil); err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	_, payload, err := swayRecv(conn)
	if err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}

	var root swayNode
	if err := json.Unmarshal(payload, &root); err != nil {
		return engine.WindowInfo{Err: err.Error()}
	}
	if focused, ok := findFocused(root); ok {
		class := focused.AppID
		if class == "" && focused.WinProp != nil {
			class = focused.WinProp.Class
		}
		return engine.WindowInfo{WMClass: class, WMName: focused.Name}
	}
	return engine.WindowInfo{Err: "wincontext: no focused sway node"}
}

func findFocused(n swayNode) (swayNode, bool) {
	if n.Focused {
		return n, true
	}
	for _, child := range append(append([]swayNode{}, n.Nodes...), n.Floats...) {
		if f, ok := findFocused(child); ok {
			return f, true
		}
	}
	return swayNode{}, false
}

func swaySend(conn net.Conn, msgType uint32, payload []byte) error {
	var buf bytes.Buffer
	buf.WriteString(swayMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	binary.Write(&buf, binary.LittleEndian, msgType)
	buf.Write(payload)
	_, err := conn.Write(buf.Bytes())
	return err
}

func swayRecv(conn net.Conn) (uint32, []byte, error) {
	header := make([]byte, len(swayMagic)+8)
	if _, err := readFull(conn, header); err != nil {
		return 0, nil, err
	}
	length := binary.LittleEndian.Uint32(header[len(swayMagic) : len(swayMagic)+4])
	msgType := binary.LittleEndian.Uint32(header[len(swayMagic)+4:])
	payload := make([]byte, length)
	if _, err := readFull(conn, payload); err != nil {
		return 0, nil, err
	}
	return msgType, payload, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
