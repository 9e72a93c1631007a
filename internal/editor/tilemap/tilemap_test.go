package tilemap

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestDrawSetsTile(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetBrush(9)
	e.Apply(3, 4)
	if got := c.Map[4*cart.MapWidth+3]; got != 9 {
		t.Errorf("Map cell = %d, want 9", got)
	}
}

func TestDrawOutOfBoundsIgnored(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetBrush(9)
	e.Apply(-1, 0)
	e.Apply(cart.MapWidth, 0)
	for _, v := range c.Map {
		if v != 0 {
			t.Fatalf("out-of-bounds draw mutated the map")
		}
	}
}

func TestFillNoOpWhenBrushMatchesOrigin(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolFill)
	e.SetBrush(0) // map starts all-zero
	e.Apply(10, 10)
	if e.CanUndo() {
		t.Errorf("expected no commit from a no-op fill")
	}
}

func TestFillFloodsConnectedRegion(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolFill)
	e.SetBrush(5)
	e.Apply(0, 0)
	if c.Map[0] != 5 || c.Map[cart.MapCells-1] != 5 {
		t.Fatalf("fill did not cover the whole (uniform) map")
	}
}

func TestSelectCopyPasteRoundTrip(t *testing.T) {
	c := cart.New()
	c.Map[0] = 1
	c.Map[1] = 2
	c.Map[cart.MapWidth] = 3
	c.Map[cart.MapWidth+1] = 4

	e := New(c)
	e.SetTool(ToolSelect)
	e.Apply(0, 0)
	e.Apply(1, 1)

	clip := e.CopySelection()
	if clip == "" {
		t.Fatalf("expected non-empty clip")
	}

	dst := cart.New()
	de := New(dst)
	if !de.PreparePaste(clip, 2) {
		t.Fatalf("PreparePaste failed")
	}
	de.PasteAt(5, 5)

	if dst.Map[5*cart.MapWidth+5] != 1 {
		t.Errorf("pasted cell (5,5) = %d, want 1", dst.Map[5*cart.MapWidth+5])
	}
	if dst.Map[6*cart.MapWidth+6] != 4 {
		t.Errorf("pasted cell (6,6) = %d, want 4", dst.Map[6*cart.MapWidth+6])
	}
}

func TestUndoRestoresMap(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetTool(ToolDraw)
	e.SetBrush(7)
	e.Apply(0, 0)
	if !e.Undo() {
		t.Fatalf("Undo failed")
	}
	if c.Map[0] != 0 {
		t.Errorf("Map[0] after undo = %d, want 0", c.Map[0])
	}
}

func TestScrollClampsToBounds(t *testing.T) {
	c := cart.New()
	e := New(c)
	e.SetScroll(-5, cart.MapHeight+100)
	x, y := e.Scroll()
	if x != 0 {
		t.Errorf("scroll x = %d, want clamped to 0", x)
	}
	if y != cart.MapHeight-1 {
		t.Errorf("scroll y = %d, want clamped to %d", y, cart.MapHeight-1)
	}
}

func TestToggleGrid(t *testing.T) {
	c := cart.New()
	e := New(c)
	initial := e.GridVisible()
	e.ToggleGrid()
	if e.GridVisible() == initial {
		t.Errorf("ToggleGrid did not change visibility")
	}
}
