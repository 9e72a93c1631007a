package router

import (
	"testing"
	"time"
)

type countingEditor struct {
	ticks int
}

func (c *countingEditor) Tick(dt time.Duration) {
	c.ticks++
}

func TestSwitchModeChangesActive(t *testing.T) {
	code := &countingEditor{}
	sprite := &countingEditor{}
	r := New(code, sprite, nil, nil, nil, nil)

	if r.Active() != ModeCode {
		t.Fatalf("default active mode = %v, want ModeCode", r.Active())
	}
	r.SwitchMode(ModeSprite)
	if r.Active() != ModeSprite {
		t.Errorf("Active() = %v, want ModeSprite", r.Active())
	}
}

func TestSwitchToUnwiredModeIsNoOp(t *testing.T) {
	code := &countingEditor{}
	r := New(code, nil, nil, nil, nil, nil)
	r.SwitchMode(ModeMap)
	if r.Active() != ModeCode {
		t.Errorf("Active() = %v, want ModeCode (switch to nil editor should be ignored)", r.Active())
	}
}

func TestTickStepsAt60Hz(t *testing.T) {
	code := &countingEditor{}
	r := New(code, nil, nil, nil, nil, nil)

	stepped := r.Tick(time.Second)
	if stepped != maxCatchUpFrames {
		t.Errorf("Tick(1s) stepped %d frames, want clamp to %d", stepped, maxCatchUpFrames)
	}
	if code.ticks != maxCatchUpFrames {
		t.Errorf("editor ticked %d times, want %d", code.ticks, maxCatchUpFrames)
	}
}

func TestTickAccumulatesPartialFrames(t *testing.T) {
	code := &countingEditor{}
	r := New(code, nil, nil, nil, nil, nil)

	half := time.Second / 120 // half a frame
	r.Tick(half)
	if code.ticks != 0 {
		t.Fatalf("half a frame should not tick yet, got %d", code.ticks)
	}
	r.Tick(half)
	if code.ticks != 1 {
		t.Errorf("two half-frames should tick once, got %d", code.ticks)
	}
}

func TestHandleKeySwitchesMode(t *testing.T) {
	code := &countingEditor{}
	sprite := &countingEditor{}
	r := New(code, sprite, nil, nil, nil, nil)

	if !r.HandleKey("F2", DefaultHotkeys()) {
		t.Fatalf("expected F2 to be recognized")
	}
	if r.Active() != ModeSprite {
		t.Errorf("Active() = %v, want ModeSprite", r.Active())
	}
	if r.HandleKey("F9", DefaultHotkeys()) {
		t.Errorf("expected unknown key to be unrecognized")
	}
}

func TestFrameCountAccumulatesAcrossSwitches(t *testing.T) {
	code := &countingEditor{}
	sprite := &countingEditor{}
	r := New(code, sprite, nil, nil, nil, nil)

	r.Tick(time.Second / 60)
	r.SwitchMode(ModeSprite)
	r.Tick(time.Second / 60)

	if r.FrameCount() != 2 {
		t.Errorf("FrameCount() = %d, want 2", r.FrameCount())
	}
}
