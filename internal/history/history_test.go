package history

import (
	"bytes"
	"testing"
)

func cloneRegion(b []byte) []byte {
	return append([]byte(nil), b...)
}

func TestUndoRestoresPriorState(t *testing.T) {
	region := []byte("hello")
	h := Create(region)

	copy(region, "HELLO")
	if !h.Add(region) {
		t.Fatalf("expected Add to commit a change")
	}

	if !h.Undo(region) {
		t.Fatalf("expected Undo to succeed")
	}
	if !bytes.Equal(region, []byte("hello")) {
		t.Errorf("Undo() = %q, want %q", region, "hello")
	}
}

func TestRedoReappliesUndoneChange(t *testing.T) {
	region := []byte("hello")
	h := Create(region)

	copy(region, "HELLO")
	h.Add(region)
	h.Undo(region)

	if !h.Redo(region) {
		t.Fatalf("expected Redo to succeed")
	}
	if !bytes.Equal(region, []byte("HELLO")) {
		t.Errorf("Redo() = %q, want %q", region, "HELLO")
	}
}

func TestAddWithNoChangeCommitsNothing(t *testing.T) {
	region := []byte("hello")
	h := Create(region)

	if h.Add(region) {
		t.Fatalf("expected Add to report no commit for an unchanged region")
	}
	if h.CanUndo() {
		t.Errorf("expected no undo depth after a no-op Add")
	}
}

func TestNewEditAfterUndoDropsFuture(t *testing.T) {
	region := []byte("aaaa")
	h := Create(region)

	copy(region, "bbbb")
	h.Add(region)
	h.Undo(region)

	copy(region, "cccc")
	h.Add(region)

	if h.CanRedo() {
		t.Errorf("expected future to be cleared after a new edit following Undo")
	}
}

func TestMultipleUndoRedoCycle(t *testing.T) {
	region := []byte("0000")
	h := Create(region)

	states := []string{"1000", "1100", "1110", "1111"}
	for _, s := range states {
		copy(region, s)
		h.Add(region)
	}

	for i := len(states) - 2; i >= 0; i-- {
		h.Undo(region)
		if string(region) != states[i] {
			t.Fatalf("after undo, region = %q, want %q", region, states[i])
		}
	}
	h.Undo(region)
	if !bytes.Equal(region, []byte("0000")) {
		t.Fatalf("after full undo, region = %q, want %q", region, "0000")
	}

	for _, s := range states {
		h.Redo(region)
		if string(region) != s {
			t.Fatalf("after redo, region = %q, want %q", region, s)
		}
	}
}

func TestUndoOnEmptyHistoryIsNoOp(t *testing.T) {
	region := []byte("hello")
	h := Create(region)
	if h.Undo(region) {
		t.Errorf("expected Undo on empty history to report no-op")
	}
	if !bytes.Equal(region, []byte("hello")) {
		t.Errorf("region mutated by no-op Undo")
	}
}

func TestSparseDeltaOnlyTouchesChangedBytes(t *testing.T) {
	region := cloneRegion([]byte("aaaaaaaaaa"))
	h := Create(region)

	region[3] = 'X'
	h.Add(region)

	if len(h.past) != 1 || len(h.past[0].runs) != 1 {
		t.Fatalf("expected a single one-byte run, got %+v", h.past)
	}
	if h.past[0].runs[0].Offset != 3 || len(h.past[0].runs[0].Bytes) != 1 {
		t.Errorf("unexpected run shape: %+v", h.past[0].runs[0])
	}
}
