package code

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestInsertAndUndo(t *testing.T) {
	c := cart.New()
	e := New(c)

	e.Insert("hello")
	if e.Buffer().Text() != "hello" {
		t.Fatalf("Text() = %q", e.Buffer().Text())
	}
	if !e.CanUndo() {
		t.Fatalf("expected undo depth after Insert")
	}
	if !e.Undo() {
		t.Fatalf("Undo failed")
	}
	if e.Buffer().Text() != "" {
		t.Errorf("Text() after undo = %q, want empty", e.Buffer().Text())
	}
}

func TestRedoReappliesInsert(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.Insert("abc")
	e.Undo()
	if !e.Redo() {
		t.Fatalf("Redo failed")
	}
	if e.Buffer().Text() != "abc" {
		t.Errorf("Text() after redo = %q, want %q", e.Buffer().Text(), "abc")
	}
}

func TestFindNextWrapsAround(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.Insert("foo bar foo")
	e.SetFindQuery("foo")
	e.Buffer().SetCursor(0)

	if !e.FindNext() {
		t.Fatalf("expected first match")
	}
	start, end := e.Buffer().Selection()
	if start != 0 || end != 3 {
		t.Fatalf("first match at [%d,%d), want [0,3)", start, end)
	}

	e.Buffer().SetCursor(end)
	if !e.FindNext() {
		t.Fatalf("expected second match")
	}
	start, end = e.Buffer().Selection()
	if start != 8 {
		t.Fatalf("second match start = %d, want 8", start)
	}

	e.Buffer().SetCursor(end)
	if !e.FindNext() {
		t.Fatalf("expected wraparound match")
	}
	start, _ = e.Buffer().Selection()
	if start != 0 {
		t.Fatalf("wraparound match start = %d, want 0", start)
	}
}

func TestGotoLine(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.Insert("one\ntwo\nthree")
	e.GotoLine(3)
	if line, _ := e.Buffer().LineColumn(e.Buffer().Cursor()); line != 3 {
		t.Errorf("GotoLine(3) landed on line %d", line)
	}
}

func TestOutlineListsFunctions(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.Insert("function init()\nend\nfunction tick()\nend\n")
	outline := e.Outline()
	if len(outline) != 2 {
		t.Fatalf("Outline() = %+v, want 2 entries", outline)
	}
}

func TestCaretBlinkToggles(t *testing.T) {
	c := cart.New()
	e := New(c)
	initial := e.CaretVisible()
	e.Tick(blinkInterval)
	if e.CaretVisible() == initial {
		t.Errorf("expected caret visibility to toggle after blinkInterval")
	}
}

func TestFlushWritesBackToCartridge(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.Insert("function main() end")
	if !e.Flush() {
		t.Fatalf("Flush failed")
	}
	if c.CodeLen() != len("function main() end") {
		t.Errorf("cartridge code length = %d, want %d", c.CodeLen(), len("function main() end"))
	}
}

func TestPopupLifecycle(t *testing.T) {
	c := cart.New()
	e := New(c)
	if e.Popup() != PopupNone {
		t.Fatalf("expected no popup initially")
	}
	e.OpenPopup(PopupFind)
	if e.Popup() != PopupFind {
		t.Errorf("Popup() = %v, want PopupFind", e.Popup())
	}
	e.ClosePopup()
	if e.Popup() != PopupNone {
		t.Errorf("Popup() after close = %v, want PopupNone", e.Popup())
	}
}
