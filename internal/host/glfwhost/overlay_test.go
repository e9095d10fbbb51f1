package glfwhost

import (
	"testing"

	"GopherStage/internal/host"
)

type fakeOverlay struct {
	wants bool
	seen  []host.PointerKind
}

func (o *fakeOverlay) HandlePointer(ev host.PointerEvent) { o.seen = append(o.seen, ev.Kind) }
func (o *fakeOverlay) WantsPointer() bool                 { return o.wants }
func (o *fakeOverlay) Draw()                              {}

func TestOverlayClaimsPointerOverIt(t *testing.T) {
	gui := &fakeOverlay{wants: true}
	if !claimedByOverlay([]Overlay{gui}, host.PointerEvent{Kind: host.PointerDown}) {
		t.Error("Expected a press over the overlay to be claimed")
	}
	if !claimedByOverlay([]Overlay{gui}, host.PointerEvent{Kind: host.PointerWheel}) {
		t.Error("Expected a wheel over the overlay to be claimed")
	}
	if len(gui.seen) != 2 {
		t.Errorf("Expected the overlay to see 2 events, got %d", len(gui.seen))
	}
}

func TestOverlayNeverClaimsRelease(t *testing.T) {
	gui := &fakeOverlay{wants: true}
	if claimedByOverlay([]Overlay{gui}, host.PointerEvent{Kind: host.PointerUp}) {
		t.Error("Expected releases to reach the scene")
	}
	if len(gui.seen) != 1 || gui.seen[0] != host.PointerUp {
		t.Errorf("Expected the overlay to see the release, got %v", gui.seen)
	}
}

func TestOverlayPassesPointerElsewhere(t *testing.T) {
	idle := &fakeOverlay{}
	other := &fakeOverlay{}
	if claimedByOverlay([]Overlay{idle, other}, host.PointerEvent{Kind: host.PointerMove}) {
		t.Error("Expected an event away from every overlay to pass through")
	}
	if len(idle.seen) != 1 || len(other.seen) != 1 {
		t.Error("Expected every overlay to track the pointer")
	}
	if claimedByOverlay(nil, host.PointerEvent{Kind: host.PointerDown}) {
		t.Error("Expected no overlays to claim nothing")
	}
}
