package sfx

import (
	"testing"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/vmhost"
)

func TestSetTickAndUndo(t *testing.T) {
	c := cart.New()
	host := &vmhost.Fake{}
	e := New(c, host)

	e.SetTick(0, LaneVolume, 15)
	if c.SFX[0].Ticks[0].Volume != 15 {
		t.Fatalf("tick volume not set")
	}
	if !e.CanUndo() {
		t.Fatalf("expected undo depth")
	}
	e.Undo()
	if c.SFX[0].Ticks[0].Volume != 0 {
		t.Errorf("tick volume after undo = %d, want 0", c.SFX[0].Ticks[0].Volume)
	}
}

func TestSelectSlotResetsHistory(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetTick(0, LaneVolume, 10)
	e.SelectSlot(1)
	if e.CanUndo() {
		t.Errorf("expected fresh history after switching slots")
	}
	if e.Slot() != 1 {
		t.Errorf("Slot() = %d, want 1", e.Slot())
	}
}

func TestSetLoop(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetLoop(LaneVolume, 2, 5)
	if c.SFX[0].VolumeLoop != (cart.Loop{Start: 2, Size: 5}) {
		t.Errorf("VolumeLoop = %+v", c.SFX[0].VolumeLoop)
	}
}

func TestPreviewNoteDelegatesToHost(t *testing.T) {
	c := cart.New()
	host := &vmhost.Fake{}
	e := New(c, host)
	e.SelectSlot(4)
	if err := e.PreviewNote(7, 3); err != nil {
		t.Fatalf("PreviewNote error: %v", err)
	}
	if host.PlayedIndex != 4 || host.PlayedNote != 7 || host.PlayedOct != 3 {
		t.Errorf("host did not receive expected args: %+v", host)
	}
}

func TestNoCommitWhenValueUnchanged(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetTick(0, LaneVolume, 0) // already 0
	if e.CanUndo() {
		t.Errorf("expected no commit for a no-op edit")
	}
}
