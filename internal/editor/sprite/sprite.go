// Package sprite implements the sprite editor: draw/pick/select/fill
// tools over the active tile, flip/rotate/erase transforms, palette
// editing, and sheet navigation. Undo/redo uses internal/history directly
// against one tile's fixed 32-byte region, since a single tile (unlike
// code text) never changes size.
package sprite

import (
	"time"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/history"
	"tic-editor-core/internal/spritesheet"
)

// Tool names one of the sprite editor's drawing tools.
type Tool int

const (
	ToolDraw Tool = iota
	ToolPick
	ToolSelect
	ToolFill
)

// Selection is an inclusive rectangular pixel region within the active
// tile, used by copy/paste and the flip/rotate transforms' bounding box.
type Selection struct {
	X0, Y0, X1, Y1 int
}

// Normalized returns the selection with X0<=X1 and Y0<=Y1.
func (s Selection) Normalized() Selection {
	if s.X0 > s.X1 {
		s.X0, s.X1 = s.X1, s.X0
	}
	if s.Y0 > s.Y1 {
		s.Y0, s.Y1 = s.Y1, s.Y0
	}
	return s
}

// Editor is the sprite editor's state for one cartridge.
type Editor struct {
	cart *cart.Cartridge

	bank       int
	tileIndex  int
	tool       Tool
	color      uint8
	palEditIdx int // palette entry index when in palette-edit mode

	sel       Selection
	hasSel    bool

	hist   *history.History
	logger *debug.Logger
}

// SetLogger attaches the shared logger used to report out-of-range
// SetTile/EnterPaletteEdit requests.
func (e *Editor) SetLogger(l *debug.Logger) {
	e.logger = l
}

// New returns a sprite editor bound to c, starting at bank 0 tile 0.
func New(c *cart.Cartridge) *Editor {
	e := &Editor{cart: c}
	e.hist = history.Create(e.activeTile()[:])
	return e
}

func (e *Editor) activeTile() *cart.Tile {
	return &e.cart.Tiles[e.bank][e.tileIndex]
}

// Tick implements router.Editor; the sprite editor has no time-based
// state of its own.
func (e *Editor) Tick(dt time.Duration) {}

// SetTile switches the active bank/tile, resetting undo history to the
// newly active tile's current contents; undo history is bounded per
// region, so each tile keeps its own.
func (e *Editor) SetTile(bank, index int) {
	if bank < 0 || bank >= cart.BanksPerSheet {
		if e.logger != nil {
			e.logger.LogSpritef(debug.LogLevelWarning, "SetTile refused: bank %d out of range", bank)
		}
		return
	}
	if index < 0 || index >= cart.TilesPerBank {
		if e.logger != nil {
			e.logger.LogSpritef(debug.LogLevelWarning, "SetTile refused: index %d out of range", index)
		}
		return
	}
	e.bank, e.tileIndex = bank, index
	e.hist = history.Create(e.activeTile()[:])
	e.hasSel = false
}

// Bank and TileIndex report the active tile's coordinates.
func (e *Editor) Bank() int      { return e.bank }
func (e *Editor) TileIndex() int { return e.tileIndex }

// SetTool changes the active drawing tool.
func (e *Editor) SetTool(t Tool) { e.tool = t }
func (e *Editor) Tool() Tool     { return e.tool }

// SetColor changes the active palette index used by Draw/Fill.
func (e *Editor) SetColor(c uint8) { e.color = c & 0x0F }
func (e *Editor) Color() uint8     { return e.color }

// commit pushes the active tile's current bytes as a new undo point.
func (e *Editor) commit() {
	e.hist.Add(e.activeTile()[:])
}

// Apply performs the active tool's action at pixel (x, y) within the
// active tile and commits an undo step. Pick switches the active color
// rather than mutating the tile.
func (e *Editor) Apply(x, y int) {
	tile := e.activeTile()
	switch e.tool {
	case ToolDraw:
		spritesheet.SetPixel(tile, x, y, e.color)
		e.commit()
	case ToolPick:
		e.color = spritesheet.Pixel(tile, x, y)
	case ToolFill:
		spritesheet.Fill(tile, x, y, e.color)
		e.commit()
	case ToolSelect:
		if !e.hasSel {
			e.sel = Selection{X0: x, Y0: y, X1: x, Y1: y}
			e.hasSel = true
		} else {
			e.sel.X1, e.sel.Y1 = x, y
		}
	}
}

// ClearSelection drops the active selection.
func (e *Editor) ClearSelection() { e.hasSel = false }

// HasSelection reports whether a selection is active.
func (e *Editor) HasSelection() bool { return e.hasSel }

// SelectionRect returns the active selection normalized, or the whole
// tile if none is active.
func (e *Editor) SelectionRect() Selection {
	if !e.hasSel {
		return Selection{X0: 0, Y0: 0, X1: 7, Y1: 7}
	}
	return e.sel.Normalized()
}

// FlipHorizontal and FlipVertical mirror the active tile and commit.
func (e *Editor) FlipHorizontal() {
	spritesheet.Flip(e.activeTile(), true, false)
	e.commit()
}

func (e *Editor) FlipVertical() {
	spritesheet.Flip(e.activeTile(), false, true)
	e.commit()
}

// Rotate90 rotates the active tile 90 degrees clockwise and commits.
func (e *Editor) Rotate90() {
	spritesheet.Rotate90(e.activeTile())
	e.commit()
}

// Erase clears the active tile and commits.
func (e *Editor) Erase() {
	spritesheet.Erase(e.activeTile())
	e.commit()
}

// Undo and Redo operate on the active tile's history.
func (e *Editor) Undo() bool {
	return e.hist.Undo(e.activeTile()[:])
}

func (e *Editor) Redo() bool {
	return e.hist.Redo(e.activeTile()[:])
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// EnterPaletteEdit and ExitPaletteEdit toggle the palette editing
// sub-mode, tracking which entry is being edited.
func (e *Editor) EnterPaletteEdit(index int) {
	if index < 0 || index >= cart.PaletteSize {
		if e.logger != nil {
			e.logger.LogSpritef(debug.LogLevelWarning, "EnterPaletteEdit refused: index %d out of range", index)
		}
		return
	}
	e.palEditIdx = index
}

// SetPaletteColor writes rgb into the palette entry currently selected
// for editing.
func (e *Editor) SetPaletteColor(rgb cart.RGB) {
	e.cart.Palette[e.palEditIdx] = rgb
}

// PaletteEditIndex returns the palette entry index currently being
// edited.
func (e *Editor) PaletteEditIndex() int {
	return e.palEditIdx
}
