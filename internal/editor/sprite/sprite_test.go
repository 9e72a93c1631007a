package sprite

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestDrawAndUndo(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetColor(5)
	e.Apply(0, 0)

	if got := c.Tiles[0][0][0] & 0x0F; got != 5 {
		t.Fatalf("pixel not drawn: byte = %#x", c.Tiles[0][0][0])
	}
	if !e.CanUndo() {
		t.Fatalf("expected undo depth after draw")
	}
	e.Undo()
	if got := c.Tiles[0][0][0] & 0x0F; got != 0 {
		t.Errorf("pixel after undo = %d, want 0", got)
	}
}

func TestPickSetsActiveColorWithoutMutating(t *testing.T) {
	c := cart.New()
	c.Tiles[0][0][0] = 0x7 // pixel(0,0) = 7
	e := New(c)
	e.SetTool(ToolPick)
	e.Apply(0, 0)
	if e.Color() != 7 {
		t.Errorf("Color() = %d, want 7", e.Color())
	}
	if c.Tiles[0][0][0] != 0x7 {
		t.Errorf("pick tool mutated the tile")
	}
}

func TestFillCommitsOneUndoStep(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolFill)
	e.SetColor(3)
	e.Apply(0, 0)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := (c.Tiles[0][0][(y*8+x)/2] >> uint((x%2)*4)) & 0x0F; got != 3 {
				t.Fatalf("pixel (%d,%d) = %d, want 3", x, y, got)
			}
		}
	}
	if e.hist.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1 (one commit for the whole fill)", e.hist.Depth())
	}
}

func TestSetTileResetsHistoryPerTile(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetColor(1)
	e.Apply(0, 0)
	if !e.CanUndo() {
		t.Fatalf("expected undo depth on tile 0")
	}
	e.SetTile(0, 1)
	if e.CanUndo() {
		t.Errorf("expected fresh history on switching to a different tile")
	}
}

func TestFlipHorizontal(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetColor(9)
	e.Apply(0, 0)
	e.FlipHorizontal()

	tile := &c.Tiles[0][0]
	if got := tile[7/2] >> 4 & 0x0F; got != 9 {
		t.Errorf("expected flipped pixel at x=7 to carry color 9")
	}
}

func TestEraseClearsTileAndCommits(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetColor(1)
	e.Apply(0, 0)
	e.Erase()
	for _, b := range c.Tiles[0][0] {
		if b != 0 {
			t.Fatalf("tile not fully erased: %v", c.Tiles[0][0])
		}
	}
}

func TestSelectToolTracksRectangle(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolSelect)
	e.Apply(1, 1)
	e.Apply(5, 6)
	if !e.HasSelection() {
		t.Fatalf("expected an active selection")
	}
	rect := e.SelectionRect()
	if rect.X0 != 1 || rect.Y0 != 1 || rect.X1 != 5 || rect.Y1 != 6 {
		t.Errorf("SelectionRect() = %+v, want {1 1 5 6}", rect)
	}
}

func TestPaletteEdit(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.EnterPaletteEdit(2)
	e.SetPaletteColor(cart.RGB{R: 1, G: 2, B: 3})
	if c.Palette[2] != (cart.RGB{R: 1, G: 2, B: 3}) {
		t.Errorf("palette entry not updated: %+v", c.Palette[2])
	}
}
