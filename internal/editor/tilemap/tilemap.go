// Package tilemap implements the map editor: draw/drag/select/fill tools
// over the 240x136 world map, clipboard paste-preview, and the grid
// overlay toggle. Undo/redo runs over the map's entire fixed-size byte
// region via internal/history.
package tilemap

import (
	"time"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/clipboard"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/history"
)

// Tool names one of the map editor's tools.
type Tool int

const (
	ToolDraw Tool = iota
	ToolSelect
	ToolFill
)

// Rect is an inclusive rectangular cell region in map coordinates.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Normalized returns r with X0<=X1 and Y0<=Y1.
func (r Rect) Normalized() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Editor is the map editor's state for one cartridge.
type Editor struct {
	cart *cart.Cartridge
	hist *history.History

	tool      Tool
	brush     byte
	showGrid  bool
	scrollX   int
	scrollY   int

	sel    Rect
	hasSel bool

	pasteBuf   []byte // row-major snapshot of a copied region
	pasteW     int
	pasteH     int
	hasPasteBuf bool

	logger *debug.Logger
}

// SetLogger attaches the shared logger used to report PreparePaste decode
// failures.
func (e *Editor) SetLogger(l *debug.Logger) {
	e.logger = l
}

// New returns a map editor bound to c.
func New(c *cart.Cartridge) *Editor {
	e := &Editor{cart: c, showGrid: true}
	e.hist = history.Create(e.cart.Map[:])
	return e
}

// Tick implements router.Editor; the map editor has no time-based state.
func (e *Editor) Tick(dt time.Duration) {}

func cellIndex(x, y int) int { return y*cart.MapWidth + x }

func inBounds(x, y int) bool {
	return x >= 0 && x < cart.MapWidth && y >= 0 && y < cart.MapHeight
}

// SetTool changes the active tool.
func (e *Editor) SetTool(t Tool) { e.tool = t }
func (e *Editor) Tool() Tool     { return e.tool }

// SetBrush changes the tile id painted by Draw/Fill.
func (e *Editor) SetBrush(id byte) { e.brush = id }
func (e *Editor) Brush() byte      { return e.brush }

// ToggleGrid flips the grid overlay.
func (e *Editor) ToggleGrid()      { e.showGrid = !e.showGrid }
func (e *Editor) GridVisible() bool { return e.showGrid }

func (e *Editor) commit() {
	e.hist.Add(e.cart.Map[:])
}

// Apply performs the active tool's action at map cell (x, y). Out-of-
// bounds coordinates are ignored.
func (e *Editor) Apply(x, y int) {
	if !inBounds(x, y) {
		return
	}
	switch e.tool {
	case ToolDraw:
		e.cart.Map[cellIndex(x, y)] = e.brush
		e.commit()
	case ToolFill:
		e.fill(x, y, e.brush)
		e.commit()
	case ToolSelect:
		if !e.hasSel {
			e.sel = Rect{X0: x, Y0: y, X1: x, Y1: y}
			e.hasSel = true
		} else {
			e.sel.X1, e.sel.Y1 = x, y
		}
	}
}

// fill performs a 4-connected flood fill. Filling a region whose origin
// already equals the brush value is a deliberate no-op rather than
// repainting the whole connected region: without this guard, painting
// with the tile already under the cursor would otherwise walk and
// rewrite the entire matching region for no visible effect.
func (e *Editor) fill(x, y int, brush byte) {
	target := e.cart.Map[cellIndex(x, y)]
	if target == brush {
		return
	}
	stack := [][2]int{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p[0], p[1]
		if !inBounds(px, py) {
			continue
		}
		idx := cellIndex(px, py)
		if e.cart.Map[idx] != target {
			continue
		}
		e.cart.Map[idx] = brush
		stack = append(stack,
			[2]int{px + 1, py}, [2]int{px - 1, py},
			[2]int{px, py + 1}, [2]int{px, py - 1},
		)
	}
}

// ClearSelection drops the active selection.
func (e *Editor) ClearSelection() { e.hasSel = false }

// HasSelection reports whether a selection is active.
func (e *Editor) HasSelection() bool { return e.hasSel }

// SelectionRect returns the active selection, normalized.
func (e *Editor) SelectionRect() Rect {
	return e.sel.Normalized()
}

// CopySelection encodes the active selection as a clipboard hex string,
// or "" if there is no selection.
func (e *Editor) CopySelection() string {
	if !e.hasSel {
		return ""
	}
	r := e.sel.Normalized()
	w, h := r.X1-r.X0+1, r.Y1-r.Y0+1
	buf := make([]byte, 0, w*h)
	for y := r.Y0; y <= r.Y1; y++ {
		for x := r.X0; x <= r.X1; x++ {
			buf = append(buf, e.cart.Map[cellIndex(x, y)])
		}
	}
	return clipboard.Encode(buf)
}

// PreparePaste decodes clip and stores it as the pending paste buffer of
// the given width, ready to be stamped with PasteAt. Returns false if
// clip does not decode or its length isn't a multiple of width.
func (e *Editor) PreparePaste(clip string, width int) bool {
	data, err := clipboard.Decode(clip)
	if err != nil || width <= 0 || len(data)%width != 0 {
		if e.logger != nil {
			e.logger.LogMapf(debug.LogLevelWarning, "PreparePaste refused: width %d, decode err: %v", width, err)
		}
		e.hasPasteBuf = false
		return false
	}
	e.pasteBuf = data
	e.pasteW = width
	e.pasteH = len(data) / width
	e.hasPasteBuf = true
	return true
}

// HasPendingPaste reports whether PreparePaste succeeded and PasteAt has
// not yet been called.
func (e *Editor) HasPendingPaste() bool { return e.hasPasteBuf }

// PastePreviewSize returns the dimensions of the pending paste buffer.
func (e *Editor) PastePreviewSize() (w, h int) { return e.pasteW, e.pasteH }

// PasteAt stamps the pending paste buffer with its top-left corner at
// (x, y), clipping to the map bounds, and commits one undo step.
func (e *Editor) PasteAt(x, y int) {
	if !e.hasPasteBuf {
		return
	}
	for row := 0; row < e.pasteH; row++ {
		for col := 0; col < e.pasteW; col++ {
			px, py := x+col, y+row
			if !inBounds(px, py) {
				continue
			}
			e.cart.Map[cellIndex(px, py)] = e.pasteBuf[row*e.pasteW+col]
		}
	}
	e.commit()
}

// Scroll returns the top-left visible cell.
func (e *Editor) Scroll() (x, y int) { return e.scrollX, e.scrollY }

// SetScroll updates the visible top-left cell, clamped to the map's
// bounds.
func (e *Editor) SetScroll(x, y int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > cart.MapWidth-1 {
		x = cart.MapWidth - 1
	}
	if y > cart.MapHeight-1 {
		y = cart.MapHeight - 1
	}
	e.scrollX, e.scrollY = x, y
}

// Undo and Redo operate on the whole map region.
func (e *Editor) Undo() bool { return e.hist.Undo(e.cart.Map[:]) }
func (e *Editor) Redo() bool { return e.hist.Redo(e.cart.Map[:]) }

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }
