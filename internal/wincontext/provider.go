// Package wincontext implements the window-context providers spec.md §6
// names only at the interface boundary: X11, and a handful of Wayland
// compositor-specific backends (Sway/i3-IPC, Hyprland socket, a D-Bus
// helper covering GNOME Shell and KDE Plasma). None of this is part of
// the core engine's scope (spec.md §1/§6 explicitly carve window-context
// acquisition out as a pluggable capability); internal/engine only ever
// depends on the engine.WindowQuerier interface.
package wincontext

import "github.com/axeldev/keyzen/internal/engine"

// Provider resolves the currently focused window's class/name. Grounded
// on original_source/src/xwaykeyz/lib/window_context.py's abstract
// WindowContextProviderInterface.
type Provider interface {
	// SupportedEnvironments names the session_type/compositor pairs this
	// provider can serve, e.g. "wayland/sway".
	SupportedEnvironments() []string
	Query() engine.WindowInfo
}

// querierAdapter adapts a Provider to engine.WindowQuerier so the engine
// package never needs to know about Provider.
type querierAdapter struct{ p Provider }

func (a querierAdapter) Query() engine.WindowInfo { return a.p.Query() }

// AsQuerier wraps a Provider for use as an engine.WindowQuerier.
func AsQuerier(p Provider) engine.WindowQuerier { return querierAdapter{p: p} }

// Select picks the provider matching sessionType/compositor (e.g.
// "x11"/"" or "wayland"/"sway") from the given candidates, the first
// whose SupportedEnvironments lists the env string "sessionType/compositor".
func Select(candidates []Provider, sessionType, compositor string) Provider {
	env := sessionType + "/" + compositor
	for _, p := range candidates {
		for _, e := range p.SupportedEnvironments() {
			if e == env {
				return p
			}
		}
	}
	return nil
}
