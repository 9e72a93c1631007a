// Package code implements the code editor: text editing backed by
// textbuffer, undo/redo over paired text+cursor snapshots, syntax
// coloring and outline backed by syntax, and the EDIT/FIND/GOTO/OUTLINE
// popups.
//
// internal/history's sparse delta model assumes a fixed-size region (it
// powers the tile and map editors); code text grows and shrinks
// with every keystroke, so this package keeps its own small snapshot
// stack instead, pushing text and cursor together so undo/redo can never
// land the cursor outside the text it restores.
package code

import (
	"strings"
	"time"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/syntax"
	"tic-editor-core/internal/textbuffer"
)

// snapshot is one committed (text, cursor) pair.
type snapshot struct {
	text   string
	cursor int
}

// textHistory is an undo/redo stack of whole-buffer snapshots; text and
// cursor are pushed together atomically so undo/redo can't desync them.
type textHistory struct {
	baseline snapshot
	past     []snapshot
	future   []snapshot
}

func newTextHistory(s snapshot) *textHistory {
	return &textHistory{baseline: s}
}

// add commits s as a new undo point if it differs from the baseline.
func (h *textHistory) add(s snapshot) bool {
	if s.text == h.baseline.text {
		return false
	}
	h.past = append(h.past, h.baseline)
	h.future = nil
	h.baseline = s
	return true
}

func (h *textHistory) undo(current snapshot) (snapshot, bool) {
	if len(h.past) == 0 {
		return snapshot{}, false
	}
	last := len(h.past) - 1
	prev := h.past[last]
	h.past = h.past[:last]
	h.future = append(h.future, current)
	h.baseline = prev
	return prev, true
}

func (h *textHistory) redo(current snapshot) (snapshot, bool) {
	if len(h.future) == 0 {
		return snapshot{}, false
	}
	last := len(h.future) - 1
	next := h.future[last]
	h.future = h.future[:last]
	h.past = append(h.past, current)
	h.baseline = next
	return next, true
}

func (h *textHistory) canUndo() bool { return len(h.past) > 0 }
func (h *textHistory) canRedo() bool { return len(h.future) > 0 }

// Popup names the modal overlay currently shown over the editor, if any.
type Popup int

const (
	PopupNone Popup = iota
	PopupFind
	PopupGoto
	PopupOutline
)

const blinkInterval = 400 * time.Millisecond

// Editor is the code editor's full state.
type Editor struct {
	cart *cart.Cartridge
	buf  *textbuffer.Buffer
	hist *textHistory

	popup      Popup
	findQuery  string
	findCursor int // search start offset for FindNext

	blinkElapsed time.Duration
	caretVisible bool
}

// New returns a code editor bound to c, with its buffer loaded from c's
// current code region.
func New(c *cart.Cartridge) *Editor {
	buf := textbuffer.New()
	buf.Load(c)
	e := &Editor{
		cart:         c,
		buf:          buf,
		caretVisible: true,
	}
	e.hist = newTextHistory(snapshot{text: buf.Text(), cursor: buf.Cursor()})
	return e
}

// Buffer exposes the underlying text buffer for rendering and input
// routing.
func (e *Editor) Buffer() *textbuffer.Buffer {
	return e.buf
}

// Popup returns the currently active popup.
func (e *Editor) Popup() Popup {
	return e.popup
}

// OpenPopup switches to the given popup, seeding FIND's query from any
// active selection.
func (e *Editor) OpenPopup(p Popup) {
	e.popup = p
	if p == PopupFind && e.buf.HasSelection() {
		e.findQuery = e.buf.SelectedText()
	}
}

// ClosePopup dismisses whatever popup is open.
func (e *Editor) ClosePopup() {
	e.popup = PopupNone
}

// commit pushes the buffer's current text as a new undo checkpoint, if it
// differs from the last committed snapshot. Callers invoke this after
// every discrete edit operation, so one undo step covers one operation
// rather than one keystroke-byte.
func (e *Editor) commit() {
	e.hist.add(snapshot{text: e.buf.Text(), cursor: e.buf.Cursor()})
}

// Insert inserts s at the cursor (replacing any selection) and commits.
func (e *Editor) Insert(s string) {
	e.buf.Insert(s)
	e.commit()
}

// Newline, Backspace, Delete, Tab, ShiftTab, and ToggleComment mirror the
// corresponding textbuffer operations and commit an undo step.
func (e *Editor) Newline() {
	e.buf.Newline()
	e.commit()
}

func (e *Editor) Backspace() {
	e.buf.Backspace()
	e.commit()
}

func (e *Editor) Delete() {
	e.buf.Delete()
	e.commit()
}

func (e *Editor) Tab() {
	e.buf.Tab()
	e.commit()
}

func (e *Editor) ShiftTab() {
	e.buf.ShiftTab()
	e.commit()
}

func (e *Editor) ToggleComment() {
	e.buf.ToggleComment()
	e.commit()
}

// Undo and Redo restore a prior (text, cursor) snapshot as one atomic
// step, so the cursor always lands exactly where it was when that text
// was last current.
func (e *Editor) Undo() bool {
	current := snapshot{text: e.buf.Text(), cursor: e.buf.Cursor()}
	prev, ok := e.hist.undo(current)
	if !ok {
		return false
	}
	e.reload(prev)
	return true
}

func (e *Editor) Redo() bool {
	current := snapshot{text: e.buf.Text(), cursor: e.buf.Cursor()}
	next, ok := e.hist.redo(current)
	if !ok {
		return false
	}
	e.reload(next)
	return true
}

func (e *Editor) reload(s snapshot) {
	e.buf = textbuffer.New()
	e.buf.Insert(s.text)
	e.buf.SetCursor(s.cursor)
}

// CanUndo and CanRedo report whether Undo/Redo would succeed.
func (e *Editor) CanUndo() bool { return e.hist.canUndo() }
func (e *Editor) CanRedo() bool { return e.hist.canRedo() }

// Syntax returns the current syntax-coloring spans for the buffer text.
func (e *Editor) Syntax() []syntax.Span {
	return syntax.Parse(e.buf.Text())
}

// Outline returns the function outline for the buffer text.
func (e *Editor) Outline() []syntax.OutlineEntry {
	return syntax.GetOutline(e.buf.Text())
}

// SetFindQuery updates the FIND popup's search string.
func (e *Editor) SetFindQuery(q string) {
	e.findQuery = q
}

// FindQuery returns the FIND popup's current search string.
func (e *Editor) FindQuery() string {
	return e.findQuery
}

// FindNext searches forward (wrapping) from just past the cursor for the
// current query, moving the cursor and selecting the match if found.
// Reports whether a match was found.
func (e *Editor) FindNext() bool {
	if e.findQuery == "" {
		return false
	}
	text := e.buf.Text()
	start := e.buf.Cursor()
	if i := strings.Index(text[start:], e.findQuery); i >= 0 {
		e.selectRange(start+i, start+i+len(e.findQuery))
		return true
	}
	if i := strings.Index(text, e.findQuery); i >= 0 {
		e.selectRange(i, i+len(e.findQuery))
		return true
	}
	return false
}

// selectRange selects [start, end) by anchoring at start and extending to
// end one step at a time, since SetCursor always clears any selection.
func (e *Editor) selectRange(start, end int) {
	e.buf.SetCursor(start)
	e.buf.SetSelectionAnchor()
	for i := start; i < end; i++ {
		e.buf.MoveRight(true)
	}
}

// GotoLine moves the cursor to the start of the given 1-based line
// number, clamping to the document's bounds.
func (e *Editor) GotoLine(line int) {
	if line < 1 {
		line = 1
	}
	text := e.buf.Text()
	offset := 0
	current := 1
	for current < line {
		i := strings.IndexByte(text[offset:], '\n')
		if i < 0 {
			offset = len(text)
			break
		}
		offset += i + 1
		current++
	}
	e.buf.SetCursor(offset)
}

// GotoOutlineEntry moves the cursor to the given outline entry's line.
func (e *Editor) GotoOutlineEntry(entry syntax.OutlineEntry) {
	e.GotoLine(entry.Line)
}

// Tick advances the caret blink timer. Implements router.Editor.
func (e *Editor) Tick(dt time.Duration) {
	e.blinkElapsed += dt
	if e.blinkElapsed >= blinkInterval {
		e.blinkElapsed -= blinkInterval
		e.caretVisible = !e.caretVisible
	}
}

// CaretVisible reports whether the caret should currently be drawn.
func (e *Editor) CaretVisible() bool {
	return e.caretVisible
}

// Flush writes the buffer's text back into the bound cartridge.
func (e *Editor) Flush() bool {
	return e.buf.Flush(e.cart)
}
