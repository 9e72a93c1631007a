package music

import (
	"testing"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/vmhost"
)

func TestAssignAndSetNote(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetCursor(0, 0)
	e.AssignPattern(3)
	if !e.SetNote(cart.Row{Note: 1, Octave: 4}) {
		t.Fatalf("SetNote failed after assigning a pattern")
	}
	if c.Patterns[3][0][0].Note != 1 {
		t.Errorf("pattern row not written")
	}
}

func TestSetNoteFailsWithoutPattern(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	if e.SetNote(cart.Row{Note: 1}) {
		t.Errorf("expected SetNote to fail with no pattern assigned")
	}
}

func TestToggleMute(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	if e.Muted(0) {
		t.Fatalf("channel should start unmuted")
	}
	e.ToggleMute(0)
	if !e.Muted(0) {
		t.Errorf("expected channel 0 muted")
	}
}

func TestPlayFrameAdvancesRowOverTime(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.PlayFrame()
	if e.State() != PlayingFrame {
		t.Fatalf("expected PlayingFrame state")
	}
	e.Tick(e.rowPeriod)
	if e.PlayRow() != 1 {
		t.Errorf("PlayRow() = %d, want 1 after one row period", e.PlayRow())
	}
}

func TestPlayTrackAdvancesFrameAtPatternEnd(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.PlayTrack()
	for i := 0; i < cart.PatternRows; i++ {
		e.Tick(e.rowPeriod)
	}
	if e.Frame() != 1 {
		t.Errorf("Frame() = %d, want 1 after wrapping past the pattern end", e.Frame())
	}
}

func TestStopHaltsPlaybackAndStopsAudio(t *testing.T) {
	c := cart.New()
	host := &vmhost.Fake{}
	e := New(c, host)
	e.PlayFrame()
	e.Stop()
	if e.State() != Stopped {
		t.Errorf("expected Stopped state")
	}
	if !host.Stopped {
		t.Errorf("expected host.StopAudio to be called")
	}
}

func TestFollowPlayUpdatesCursorRow(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetFollow(true)
	e.PlayFrame()
	e.Tick(e.rowPeriod)
	row, _ := e.Cursor()
	if row != 1 {
		t.Errorf("Cursor row = %d, want 1 with follow-play enabled", row)
	}
}

func TestCopySelectionEncodesRows(t *testing.T) {
	c := cart.New()
	e := New(c, &vmhost.Fake{})
	e.SetCursor(0, 0)
	e.AssignPattern(0)
	e.SetNote(cart.Row{Note: 5})
	e.Select(0, 0, 0, 0)
	clip := e.CopySelection()
	if clip == "" {
		t.Errorf("expected non-empty clipboard encoding")
	}
}
