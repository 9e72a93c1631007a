package spritesheet

import (
	"testing"

	"tic-editor-core/internal/cart"
)

func TestSetPixelThenPixelRoundTrips(t *testing.T) {
	var tile cart.Tile
	SetPixel(&tile, 0, 0, 0xA)
	SetPixel(&tile, 1, 0, 0xB)
	SetPixel(&tile, 7, 7, 0xC)

	if got := Pixel(&tile, 0, 0); got != 0xA {
		t.Errorf("Pixel(0,0) = %x, want %x", got, 0xA)
	}
	if got := Pixel(&tile, 1, 0); got != 0xB {
		t.Errorf("Pixel(1,0) = %x, want %x", got, 0xB)
	}
	if got := Pixel(&tile, 7, 7); got != 0xC {
		t.Errorf("Pixel(7,7) = %x, want %x", got, 0xC)
	}
}

func TestPixelsSharingAByteAreIndependent(t *testing.T) {
	var tile cart.Tile
	SetPixel(&tile, 0, 0, 0xF)
	SetPixel(&tile, 1, 0, 0x0)
	if tile[0] != 0x0F {
		t.Fatalf("packed byte = %#x, want %#x", tile[0], 0x0F)
	}
	SetPixel(&tile, 0, 0, 0x0)
	if Pixel(&tile, 1, 0) != 0 {
		t.Errorf("writing pixel 0 changed neighboring pixel 1")
	}
}

func TestFlipHorizontal(t *testing.T) {
	var tile cart.Tile
	SetPixel(&tile, 0, 0, 5)
	Flip(&tile, true, false)
	if got := Pixel(&tile, 7, 0); got != 5 {
		t.Errorf("after horizontal flip, Pixel(7,0) = %d, want 5", got)
	}
	if got := Pixel(&tile, 0, 0); got != 0 {
		t.Errorf("after horizontal flip, Pixel(0,0) = %d, want 0", got)
	}
}

func TestRotate90(t *testing.T) {
	var tile cart.Tile
	SetPixel(&tile, 0, 0, 9)
	Rotate90(&tile)
	if got := Pixel(&tile, 7, 0); got != 9 {
		t.Errorf("after rotate90, Pixel(7,0) = %d, want 9", got)
	}
}

func TestEraseClearsAllPixels(t *testing.T) {
	var tile cart.Tile
	for i := range tile {
		tile[i] = 0xFF
	}
	Erase(&tile)
	for i := range tile {
		if tile[i] != 0 {
			t.Fatalf("byte %d = %#x after Erase, want 0", i, tile[i])
		}
	}
}

func TestFillFloodsConnectedRegion(t *testing.T) {
	var tile cart.Tile // all zero
	Fill(&tile, 0, 0, 3)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := Pixel(&tile, x, y); got != 3 {
				t.Fatalf("Pixel(%d,%d) = %d, want 3", x, y, got)
			}
		}
	}
}

func TestFillRespectsBoundary(t *testing.T) {
	var tile cart.Tile
	// Vertical wall of color 1 down the middle column.
	for y := 0; y < 8; y++ {
		SetPixel(&tile, 4, y, 1)
	}
	Fill(&tile, 0, 0, 2)
	if got := Pixel(&tile, 3, 0); got != 2 {
		t.Errorf("left side not filled: Pixel(3,0) = %d", got)
	}
	if got := Pixel(&tile, 5, 0); got != 0 {
		t.Errorf("fill leaked past wall: Pixel(5,0) = %d, want 0", got)
	}
}

func TestFillNoOpWhenSameColor(t *testing.T) {
	var tile cart.Tile
	SetPixel(&tile, 2, 2, 7)
	Fill(&tile, 0, 0, 0) // origin already 0
	if Pixel(&tile, 2, 2) != 7 {
		t.Errorf("unrelated pixel disturbed by no-op fill")
	}
}
