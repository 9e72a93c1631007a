package world

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestSizeMatchesDownsampleFactor(t *testing.T) {
	c := cart.New()
	o := New(c, 8)
	w, h := o.Size()
	wantW := (cart.MapWidth + 7) / 8
	wantH := (cart.MapHeight + 7) / 8
	if w != wantW || h != wantH {
		t.Errorf("Size() = (%d,%d), want (%d,%d)", w, h, wantW, wantH)
	}
}

func TestPixelReflectsDominantTile(t *testing.T) {
	c := cart.New()
	// Fill an 8x8 block at block (0,0) mostly with tile 3, one cell tile 9.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c.Map[y*cart.MapWidth+x] = 3
		}
	}
	c.Map[0] = 9
	o := New(c, 8)
	if got := o.Pixel(0, 0); got != 3 {
		t.Errorf("Pixel(0,0) = %d, want 3 (dominant tile)", got)
	}
}

func TestRecenterClampsToMapBounds(t *testing.T) {
	c := cart.New()
	o := New(c, 4)
	x, y := o.Recenter(0, 0, 20, 20)
	if x != 0 || y != 0 {
		t.Errorf("Recenter near origin = (%d,%d), want clamped to (0,0)", x, y)
	}
}
