package wincontext

import (
	"testing"

	"github.com/axeldev/keyzen/internal/engine"
)

type stubProvider struct {
	envs []string
}

func (s stubProvider) SupportedEnvironments() []string { return s.envs }
func (s stubProvider) Query() engine.WindowInfo        { return engine.WindowInfo{} }

func TestSelectMatchesExactEnvironment(t *testing.T) {
	x11 := &stubProvider{envs: []string{"x11/"}}
	sway := &stubProvider{envs: []string{"wayland/sway"}}

	got := Select([]Provider{x11, sway}, "wayland", "sway")
	if got != Provider(sway) {
		t.Fatalf("expected sway provider selected, got %#v", got)
	}

	got = Select([]Provider{x11, sway}, "x11", "")
	if got != Provider(x11) {
		t.Fatalf("expected x11 provider selected, got %#v", got)
	}
}

func TestSelectReturnsNilWhenNoMatch(t *testing.T) {
	hypr := stubProvider{envs: []string{"wayland/hyprland"}}
	if got := Select([]Provider{hypr}, "x11", ""); got != nil {
		t.Fatalf("expected no match, got %#v", got)
	}
}

func TestParseHyprlandActiveWindow(t *testing.T) {
	out := "class: firefox\ntitle: Mozilla Firefox\naddress: 0x1234\n"
	info := parseHyprlandActiveWindow(out)
	if info.WMClass != "firefox" || info.WMName != "Mozilla Firefox" {
		t.Fatalf("unexpected parse result: %+v", info)
	}
}

func TestParseHyprlandActiveWindowEmpty(t *testing.T) {
	info := parseHyprlandActiveWindow("")
	if info.Err == "" {
		t.Fatal("expected error on empty hyprland output")
	}
}

func TestFindFocusedNestedNode(t *testing.T) {
	root := swayNode{
		Nodes: []swayNode{
			{Name: "outer", Nodes: []swayNode{
				{Name: "inner", Focused: true, AppID: "foot"},
			}},
		},
	}
	found, ok := findFocused(root)
	if !ok || found.AppID != "foot" {
		t.Fatalf("expected to find focused inner node, got %+v ok=%v", found, ok)
	}
}

func TestFindFocusedNoneFocused(t *testing.T) {
	root := swayNode{Nodes: []swayNode{{Name: "a"}, {Name: "b"}}}
	if _, ok := findFocused(root); ok {
		t.Fatal("expected no focused node")
	}
}
