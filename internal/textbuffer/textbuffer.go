// Package textbuffer implements the code editor's text model: a
// char-addressed cursor with column memory, a selection anchor, a scroll
// window, and the editing operations (insert, newline, backspace, tab,
// word motion, home/end, toggle-comment, replace-selection, CR
// normalization, paste). Token/line positions reuse the Line/Column
// addressing convention from internal/corelx's lexer.
package textbuffer

import (
	"strings"

	"tic-editor-core/internal/cart"
)

// Buffer is the code editor's live text state, backed by a cartridge's
// code region. It does not own the underlying cart.Cartridge; callers
// call Load to pull text in and Flush to push edits back out.
type Buffer struct {
	text []byte // always a valid UTF-8/ASCII byte slice, no embedded NUL

	cursor    int // byte offset of the caret
	selAnchor int // byte offset of the other end of the selection; -1 means no selection
	colMemory int // remembered column for vertical motion across short lines

	scrollLine int // first visible line
	scrollCol  int // first visible column
}

// New returns an empty buffer with no selection.
func New() *Buffer {
	return &Buffer{selAnchor: -1}
}

// Load replaces the buffer's text with c's code region (stripping the
// trailing NUL padding) and resets cursor/selection/scroll state.
func (b *Buffer) Load(c *cart.Cartridge) {
	n := c.CodeLen()
	b.text = append([]byte(nil), c.Code[:n]...)
	b.cursor = 0
	b.selAnchor = -1
	b.colMemory = 0
	b.scrollLine = 0
	b.scrollCol = 0
}

// Flush writes the buffer's text back into c's code region. It reports
// false (leaving c untouched) if the text no longer fits, mirroring
// cart.Cartridge.SetCode's capacity policy.
func (b *Buffer) Flush(c *cart.Cartridge) bool {
	return c.SetCode(b.text)
}

// Text returns the buffer's current contents.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Len returns the buffer's length in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Cursor returns the caret's byte offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// HasSelection reports whether a non-empty selection is active.
func (b *Buffer) HasSelection() bool {
	return b.selAnchor >= 0 && b.selAnchor != b.cursor
}

// Selection returns the selection's [start, end) byte range in document
// order. If there is no selection, start == end == Cursor().
func (b *Buffer) Selection() (start, end int) {
	if !b.HasSelection() {
		return b.cursor, b.cursor
	}
	if b.selAnchor < b.cursor {
		return b.selAnchor, b.cursor
	}
	return b.cursor, b.selAnchor
}

// ClearSelection drops the selection anchor without moving the cursor.
func (b *Buffer) ClearSelection() {
	b.selAnchor = -1
}

// SetSelectionAnchor begins (or re-anchors) a selection at the cursor's
// current position.
func (b *Buffer) SetSelectionAnchor() {
	if b.selAnchor < 0 {
		b.selAnchor = b.cursor
	}
}

func (b *Buffer) clampCursor() {
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor > len(b.text) {
		b.cursor = len(b.text)
	}
}

// lineStart returns the byte offset of the start of the line containing
// offset.
func (b *Buffer) lineStart(offset int) int {
	i := strings.LastIndexByte(string(b.text[:offset]), '\n')
	return i + 1
}

// lineEnd returns the byte offset just past the last character of the
// line containing offset (i.e. the index of the '\n', or len(text)).
func (b *Buffer) lineEnd(offset int) int {
	rest := string(b.text[offset:])
	i := strings.IndexByte(rest, '\n')
	if i < 0 {
		return len(b.text)
	}
	return offset + i
}

// column returns offset's distance from its line's start.
func (b *Buffer) column(offset int) int {
	return offset - b.lineStart(offset)
}

// normalizeCR strips carriage returns from pasted or inserted text so the
// buffer never stores CRLF line endings.
func normalizeCR(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return strings.ReplaceAll(s, "\r", "")
}

// deleteSelection removes the active selection, if any, moving the
// cursor to its start. Returns true if a selection was removed.
func (b *Buffer) deleteSelection() bool {
	if !b.HasSelection() {
		return false
	}
	start, end := b.Selection()
	b.text = append(b.text[:start], b.text[end:]...)
	b.cursor = start
	b.selAnchor = -1
	return true
}

// Insert replaces the active selection (if any) with s, otherwise inserts
// s at the cursor. The cursor ends just past the inserted text.
func (b *Buffer) Insert(s string) {
	s = normalizeCR(s)
	b.deleteSelection()
	b.text = append(b.text[:b.cursor], append([]byte(s), b.text[b.cursor:]...)...)
	b.cursor += len(s)
	b.colMemory = b.column(b.cursor)
}

// Newline inserts a line break, auto-indenting to match the indentation
// of the current line.
func (b *Buffer) Newline() {
	if b.HasSelection() {
		b.deleteSelection()
	}
	start := b.lineStart(b.cursor)
	indent := 0
	for start+indent < len(b.text) && (b.text[start+indent] == ' ' || b.text[start+indent] == '\t') {
		indent++
	}
	b.Insert("\n" + string(b.text[start:start+indent]))
}

// Backspace deletes the selection, or one character before the cursor if
// there is no selection.
func (b *Buffer) Backspace() {
	if b.deleteSelection() {
		return
	}
	if b.cursor == 0 {
		return
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	b.colMemory = b.column(b.cursor)
}

// Delete deletes the selection, or one character at (after) the cursor if
// there is no selection.
func (b *Buffer) Delete() {
	if b.deleteSelection() {
		return
	}
	if b.cursor >= len(b.text) {
		return
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
}

// tabWidth is the number of spaces one Tab inserts.
const tabWidth = 2

// Tab inserts spaces at the cursor, or, if a selection spans multiple
// lines, indents every selected line instead of replacing the selection.
func (b *Buffer) Tab() {
	if !b.HasSelection() {
		b.Insert(strings.Repeat(" ", tabWidth))
		return
	}
	start, end := b.Selection()
	if b.lineStart(start) == b.lineStart(end) {
		b.Insert(strings.Repeat(" ", tabWidth))
		return
	}
	b.indentLines(start, end, true)
}

// ShiftTab removes up to tabWidth leading spaces from every line touched
// by the selection (or the cursor's line, with no selection).
func (b *Buffer) ShiftTab() {
	start, end := b.cursor, b.cursor
	if b.HasSelection() {
		start, end = b.Selection()
	}
	b.indentLines(start, end, false)
}

func (b *Buffer) indentLines(start, end int, add bool) {
	lineStart := b.lineStart(start)
	lineEndOfSel := b.lineEnd(end)

	var out []byte
	out = append(out, b.text[:lineStart]...)

	pos := lineStart
	for pos <= lineEndOfSel && pos <= len(b.text) {
		eol := b.lineEnd(pos)
		line := b.text[pos:eol]
		if add {
			out = append(out, append([]byte(strings.Repeat(" ", tabWidth)), line...)...)
		} else {
			trim := 0
			for trim < tabWidth && trim < len(line) && line[trim] == ' ' {
				trim++
			}
			out = append(out, line[trim:]...)
		}
		if eol < len(b.text) {
			out = append(out, '\n')
		}
		pos = eol + 1
	}
	out = append(out, b.text[min(lineEndOfSel+1, len(b.text)):]...)

	delta := len(out) - len(b.text)
	b.text = out
	if b.cursor > lineStart {
		b.cursor += delta
	}
	b.clampCursor()
	b.selAnchor = -1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ToggleComment prefixes (or removes a prefix from) every line touched by
// the selection/cursor with "--", the cartridge script comment marker.
func (b *Buffer) ToggleComment() {
	const marker = "--"
	start, end := b.cursor, b.cursor
	if b.HasSelection() {
		start, end = b.Selection()
	}
	lineStart := b.lineStart(start)
	lineEndOfSel := b.lineEnd(end)

	allCommented := true
	pos := lineStart
	for pos <= lineEndOfSel && pos <= len(b.text) {
		eol := b.lineEnd(pos)
		line := string(b.text[pos:eol])
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, marker) {
			allCommented = false
		}
		pos = eol + 1
	}

	var out []byte
	out = append(out, b.text[:lineStart]...)
	pos = lineStart
	for pos <= lineEndOfSel && pos <= len(b.text) {
		eol := b.lineEnd(pos)
		line := string(b.text[pos:eol])
		if allCommented {
			i := strings.Index(line, marker)
			if i >= 0 {
				line = line[:i] + line[i+len(marker):]
			}
		} else {
			line = marker + line
		}
		out = append(out, []byte(line)...)
		if eol < len(b.text) {
			out = append(out, '\n')
		}
		pos = eol + 1
	}
	out = append(out, b.text[min(lineEndOfSel+1, len(b.text)):]...)

	delta := len(out) - len(b.text)
	b.text = out
	if b.cursor > lineStart {
		b.cursor += delta
	}
	b.clampCursor()
	b.selAnchor = -1
}

// MoveLeft and MoveRight move the cursor by one byte, clearing any
// selection unless extend is true (in which case the selection grows).
func (b *Buffer) MoveLeft(extend bool) {
	b.startOrExtend(extend)
	if b.cursor > 0 {
		b.cursor--
	}
	b.colMemory = b.column(b.cursor)
	b.endExtend(extend)
}

func (b *Buffer) MoveRight(extend bool) {
	b.startOrExtend(extend)
	if b.cursor < len(b.text) {
		b.cursor++
	}
	b.colMemory = b.column(b.cursor)
	b.endExtend(extend)
}

func (b *Buffer) startOrExtend(extend bool) {
	if extend {
		b.SetSelectionAnchor()
	}
}

func (b *Buffer) endExtend(extend bool) {
	if !extend {
		b.selAnchor = -1
	}
}

// MoveUp and MoveDown move the cursor one line, restoring colMemory
// (the last horizontally-chosen column) rather than clamping to the new
// line's length every time, so moving through a short line and back
// returns to the original column.
func (b *Buffer) MoveUp(extend bool) {
	b.startOrExtend(extend)
	ls := b.lineStart(b.cursor)
	if ls == 0 {
		b.endExtend(extend)
		return
	}
	prevEnd := ls - 1
	prevStart := b.lineStart(prevEnd)
	col := b.colMemory
	if prevEnd-prevStart < col {
		col = prevEnd - prevStart
	}
	b.cursor = prevStart + col
	b.endExtend(extend)
}

func (b *Buffer) MoveDown(extend bool) {
	b.startOrExtend(extend)
	le := b.lineEnd(b.cursor)
	if le >= len(b.text) {
		b.endExtend(extend)
		return
	}
	nextStart := le + 1
	nextEnd := b.lineEnd(nextStart)
	col := b.colMemory
	if nextEnd-nextStart < col {
		col = nextEnd - nextStart
	}
	b.cursor = nextStart + col
	b.endExtend(extend)
}

// Home moves the cursor to the start of the current line; End moves it to
// the end.
func (b *Buffer) Home(extend bool) {
	b.startOrExtend(extend)
	b.cursor = b.lineStart(b.cursor)
	b.colMemory = 0
	b.endExtend(extend)
}

func (b *Buffer) End(extend bool) {
	b.startOrExtend(extend)
	b.cursor = b.lineEnd(b.cursor)
	b.colMemory = b.column(b.cursor)
	b.endExtend(extend)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// WordLeft moves the cursor back over one run of characters: a run of
// word characters if the character before the cursor is one, otherwise a
// run of non-word characters.
func (b *Buffer) WordLeft(extend bool) {
	b.startOrExtend(extend)
	i := b.cursor
	word := i > 0 && isWordByte(b.text[i-1])
	for i > 0 && isWordByte(b.text[i-1]) == word {
		i--
	}
	b.cursor = i
	b.colMemory = b.column(b.cursor)
	b.endExtend(extend)
}

// WordRight moves the cursor forward over one run of characters: a run of
// word characters if the character at the cursor is one, otherwise a run
// of non-word characters.
func (b *Buffer) WordRight(extend bool) {
	b.startOrExtend(extend)
	i := b.cursor
	word := i < len(b.text) && isWordByte(b.text[i])
	for i < len(b.text) && isWordByte(b.text[i]) == word {
		i++
	}
	b.cursor = i
	b.colMemory = b.column(b.cursor)
	b.endExtend(extend)
}

// Paste inserts s (with every carriage return stripped) at the cursor, replacing
// any selection.
func (b *Buffer) Paste(s string) {
	b.Insert(s)
}

// SelectedText returns the currently selected text, or "" if there is no
// selection.
func (b *Buffer) SelectedText() string {
	start, end := b.Selection()
	return string(b.text[start:end])
}

// LineColumn returns the 1-based line and 0-based column of offset,
// matching internal/corelx's lexer's Line/Column token addressing.
func (b *Buffer) LineColumn(offset int) (line, col int) {
	line = 1 + strings.Count(string(b.text[:offset]), "\n")
	col = b.column(offset)
	return line, col
}

// SetCursor moves the cursor to offset, clamped to the buffer's bounds,
// clearing any selection.
func (b *Buffer) SetCursor(offset int) {
	b.cursor = offset
	b.clampCursor()
	b.colMemory = b.column(b.cursor)
	b.selAnchor = -1
}

// ScrollLine and ScrollCol report the buffer's current scroll window
// origin.
func (b *Buffer) ScrollLine() int { return b.scrollLine }
func (b *Buffer) ScrollCol() int  { return b.scrollCol }

// SetScroll updates the scroll window origin, clamping to non-negative
// values.
func (b *Buffer) SetScroll(line, col int) {
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	b.scrollLine = line
	b.scrollCol = col
}

// EnsureVisible adjusts the scroll window so the cursor's line/column lies
// within a viewport of the given width and height (in characters/lines).
func (b *Buffer) EnsureVisible(width, height int) {
	line, col := b.LineColumn(b.cursor)
	row := line - 1
	if row < b.scrollLine {
		b.scrollLine = row
	}
	if height > 0 && row >= b.scrollLine+height {
		b.scrollLine = row - height + 1
	}
	if col < b.scrollCol {
		b.scrollCol = col
	}
	if width > 0 && col >= b.scrollCol+width {
		b.scrollCol = col - width + 1
	}
}
