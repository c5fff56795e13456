package engine

// WindowInfo is the window-context snapshot a Provider (internal/wincontext)
// returns: the focused window's WM class/name, or an error string if the
// provider could not determine it.
type WindowInfo struct {
	WMClass string
	WMName  string
	Err     string
}

// WindowQuerier is queried lazily, at most once per KeyContext, the first
// time wm_class/wm_name is actually needed by a predicate.
type WindowQuerier interface {
	Query() WindowInfo
}

// KeyContext carries everything a Predicate or Func might need to know
// about the event that is currently being transformed: which device it
// came from, and the focused window at the time. Grounded on xwaykeyz's
// lib/key_context.py.
//
// REPEAT and RELEASE events reuse the window context captured at PRESS
// time via FromCache rather than re-querying — querying a compositor is
// not free, and the window that was focused when a combo's modifier went
// down is the window the combo is "about", even if focus changes while
// it's held.
type KeyContext struct {
	DeviceName string
	querier    WindowQuerier

	queried bool
	info    WindowInfo
}

func NewKeyContext(deviceName string, q WindowQuerier) *KeyContext {
	return &KeyContext{DeviceName: deviceName, querier: q}
}

// FromCache builds a KeyContext that reuses an already-resolved WindowInfo
// instead of querying again.
func FromCache(deviceName string, cached WindowInfo) *KeyContext {
	return &KeyContext{DeviceName: deviceName, queried: true, info: cached}
}

func (kc *KeyContext) query() {
	if kc.queried {
		return
	}
	kc.queried = true
	if kc.querier != nil {
		kc.info = kc.querier.Query()
	}
}

func (kc *KeyContext) WMClass() string {
	kc.query()
	return kc.info.WMClass
}

func (kc *KeyContext) WMName() string {
	kc.query()
	return kc.info.WMName
}

func (kc *KeyContext) WindowContextError() string {
	kc.query()
	return kc.info.Err
}

// Snapshot returns the resolved WindowInfo, querying if not already done.
// Used to build the cached context for a key's REPEAT/RELEASE events.
func (kc *KeyContext) Snapshot() WindowInfo {
	kc.query()
	return kc.info
}
