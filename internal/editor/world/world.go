// Package world implements the map editor's world-overview panel: a
// zoomed-out thumbnail of the whole map (one pixel per cellsPerPixel x
// cellsPerPixel block of cells, valued by the block's most frequent tile
// id) with click-to-recenter.
package world

import "tic-editor-core/internal/cart"

// Overview renders a reduced view of the map and reports recenter clicks.
type Overview struct {
	cart *cart.Cartridge

	// cellsPerPixel is the thumbnail's downsampling factor: each
	// thumbnail pixel summarizes a cellsPerPixel x cellsPerPixel block of
	// map cells via its most frequent tile id.
	cellsPerPixel int
}

// New returns a world overview for c, downsampling by factor cellsPerPixel
// (must be >= 1; values <1 are treated as 1).
func New(c *cart.Cartridge, cellsPerPixel int) *Overview {
	if cellsPerPixel < 1 {
		cellsPerPixel = 1
	}
	return &Overview{cart: c, cellsPerPixel: cellsPerPixel}
}

// Size returns the thumbnail's pixel dimensions.
func (o *Overview) Size() (w, h int) {
	w = (cart.MapWidth + o.cellsPerPixel - 1) / o.cellsPerPixel
	h = (cart.MapHeight + o.cellsPerPixel - 1) / o.cellsPerPixel
	return w, h
}

// Pixel returns the dominant tile id within the map block that thumbnail
// pixel (px, py) summarizes.
func (o *Overview) Pixel(px, py int) byte {
	counts := make(map[byte]int)
	x0, y0 := px*o.cellsPerPixel, py*o.cellsPerPixel
	for y := y0; y < y0+o.cellsPerPixel && y < cart.MapHeight; y++ {
		for x := x0; x < x0+o.cellsPerPixel && x < cart.MapWidth; x++ {
			counts[o.cart.Map[y*cart.MapWidth+x]]++
		}
	}
	var best byte
	bestCount := -1
	// Deterministic tie-break: lowest tile id wins, so rendering is
	// reproducible across runs rather than depending on map iteration
	// order.
	for id := 0; id < 256; id++ {
		if c, ok := counts[byte(id)]; ok && c > bestCount {
			best = byte(id)
			bestCount = c
		}
	}
	return best
}

// Recenter translates a click at thumbnail pixel (px, py) into the map
// cell coordinates the primary map editor should scroll to, so the
// clicked block is centered in its viewport of the given size.
func (o *Overview) Recenter(px, py, viewportW, viewportH int) (cellX, cellY int) {
	cellX = px*o.cellsPerPixel - viewportW/2
	cellY = py*o.cellsPerPixel - viewportH/2
	if cellX < 0 {
		cellX = 0
	}
	if cellY < 0 {
		cellY = 0
	}
	if cellX > cart.MapWidth-1 {
		cellX = cart.MapWidth - 1
	}
	if cellY > cart.MapHeight-1 {
		cellY = cart.MapHeight - 1
	}
	return cellX, cellY
}
