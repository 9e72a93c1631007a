package textbuffer

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestInsertAtCursor(t *testing.T) {
	b := New()
	b.Insert("hello")
	if b.Text() != "hello" {
		t.Fatalf("Text() = %q, want %q", b.Text(), "hello")
	}
	if b.Cursor() != 5 {
		t.Errorf("Cursor() = %d, want 5", b.Cursor())
	}
}

func TestSelectionReplacementViaMoveRight(t *testing.T) {
	b := New()
	b.Insert("hello world")
	b.SetCursor(0)
	for i := 0; i < 5; i++ {
		b.MoveRight(true)
	}
	if !b.HasSelection() {
		t.Fatalf("expected an active selection")
	}
	if got := b.SelectedText(); got != "hello" {
		t.Fatalf("SelectedText() = %q, want %q", got, "hello")
	}
	b.Insert("HI")
	if b.Text() != "HI world" {
		t.Errorf("Text() after replace = %q, want %q", b.Text(), "HI world")
	}
}

func TestBackspaceDeletesOneChar(t *testing.T) {
	b := New()
	b.Insert("abc")
	b.Backspace()
	if b.Text() != "ab" {
		t.Errorf("Text() = %q, want %q", b.Text(), "ab")
	}
}

func TestBackspaceAtStartIsNoOp(t *testing.T) {
	b := New()
	b.Insert("abc")
	b.SetCursor(0)
	b.Backspace()
	if b.Text() != "abc" {
		t.Errorf("Text() = %q, want %q", b.Text(), "abc")
	}
}

func TestNewlinePreservesIndent(t *testing.T) {
	b := New()
	b.Insert("  if true then")
	b.Newline()
	b.Insert("x")
	if b.Text() != "  if true then\n  x" {
		t.Errorf("Text() = %q", b.Text())
	}
}

func TestTabInsertsSpacesWithNoSelection(t *testing.T) {
	b := New()
	b.Tab()
	if b.Text() != "  " {
		t.Errorf("Text() = %q, want two spaces", b.Text())
	}
}

func TestToggleCommentAddsAndRemovesMarker(t *testing.T) {
	b := New()
	b.Insert("print(1)")
	b.SetCursor(0)
	b.ToggleComment()
	if b.Text() != "--print(1)" {
		t.Fatalf("Text() after comment = %q", b.Text())
	}
	b.SetCursor(0)
	b.ToggleComment()
	if b.Text() != "print(1)" {
		t.Fatalf("Text() after uncomment = %q", b.Text())
	}
}

func TestPasteNormalizesCR(t *testing.T) {
	b := New()
	b.Paste("a\r\nb\rc")
	if b.Text() != "a\nbc" {
		t.Errorf("Text() = %q, want CR stripped", b.Text())
	}
}

func TestWordMotion(t *testing.T) {
	b := New()
	b.Insert("foo bar baz")
	b.SetCursor(len(b.Text()))
	b.WordLeft(false)
	if b.Cursor() != 8 {
		t.Errorf("WordLeft cursor = %d, want 8", b.Cursor())
	}
	b.WordLeft(false)
	if b.Cursor() != 7 {
		t.Errorf("WordLeft cursor = %d, want 7", b.Cursor())
	}
	b.WordRight(false)
	if b.Cursor() != 8 {
		t.Errorf("WordRight cursor = %d, want 8", b.Cursor())
	}
}

func TestHomeEnd(t *testing.T) {
	b := New()
	b.Insert("line one\nline two")
	b.Home(false)
	if b.Cursor() != 9 {
		t.Errorf("Home cursor = %d, want 9", b.Cursor())
	}
	b.End(false)
	if b.Cursor() != len(b.Text()) {
		t.Errorf("End cursor = %d, want %d", b.Cursor(), len(b.Text()))
	}
}

func TestMoveUpDownPreservesColumnMemory(t *testing.T) {
	b := New()
	b.Insert("abcdef\nab\nabcdef")
	b.SetCursor(6) // end of first line, col 6
	b.MoveDown(false)
	if _, col := b.LineColumn(b.Cursor()); col != 2 {
		t.Fatalf("after MoveDown onto short line, col = %d, want 2 (clamped)", col)
	}
	b.MoveDown(false)
	if _, col := b.LineColumn(b.Cursor()); col != 6 {
		t.Errorf("after MoveDown restoring column, col = %d, want 6", col)
	}
}

func TestLoadAndFlushRoundTrip(t *testing.T) {
	c := cart.New()
	c.SetCode([]byte("function main()\nend\n"))

	b := New()
	b.Load(c)
	if b.Text() != "function main()\nend\n" {
		t.Fatalf("Load() = %q", b.Text())
	}

	b.Insert("-- edited\n")
	b.SetCursor(0)

	out := cart.New()
	if !b.Flush(out) {
		t.Fatalf("Flush failed")
	}
	if out.CodeLen() != len(b.Text()) {
		t.Errorf("CodeLen() = %d, want %d", out.CodeLen(), len(b.Text()))
	}
}

func TestDeleteAtEndIsNoOp(t *testing.T) {
	b := New()
	b.Insert("abc")
	b.Delete()
	if b.Text() != "abc" {
		t.Errorf("Text() = %q, want unchanged", b.Text())
	}
}

func TestClearSelectionDropsAnchorOnly(t *testing.T) {
	b := New()
	b.Insert("abcdef")
	b.SetCursor(0)
	b.MoveRight(true)
	if !b.HasSelection() {
		t.Fatalf("expected selection")
	}
	cursorBefore := b.Cursor()
	b.ClearSelection()
	if b.HasSelection() {
		t.Errorf("expected selection cleared")
	}
	if b.Cursor() != cursorBefore {
		t.Errorf("ClearSelection moved the cursor")
	}
}
