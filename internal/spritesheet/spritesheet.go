// Package spritesheet provides pixel-level read/write access to a bank of
// 8x8 4-bit tiles, used by the sprite editor's draw/pick/fill tools and the
// map editor's tile picker. Pixel packing follows the PPU's tile decode
// convention: two pixels per byte, the even (left) pixel in the low
// nibble, the odd (right) pixel in the high nibble.
package spritesheet

import "tic-editor-core/internal/cart"

const tileDim = 8

// Pixel reads the color index (0-15) at (x, y) within tile.
func Pixel(tile *cart.Tile, x, y int) uint8 {
	idx := y*tileDim + x
	b := tile[idx/2]
	if idx%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

// SetPixel writes color index v (low 4 bits used) at (x, y) within tile.
func SetPixel(tile *cart.Tile, x, y int, v uint8) {
	idx := y*tileDim + x
	v &= 0x0F
	if idx%2 == 0 {
		tile[idx/2] = (tile[idx/2] &^ 0x0F) | v
	} else {
		tile[idx/2] = (tile[idx/2] &^ 0xF0) | (v << 4)
	}
}

// Flip mirrors tile in place. horizontal flips left-right, vertical flips
// top-bottom; both may be requested together.
func Flip(tile *cart.Tile, horizontal, vertical bool) {
	src := *tile
	for y := 0; y < tileDim; y++ {
		for x := 0; x < tileDim; x++ {
			sx, sy := x, y
			if horizontal {
				sx = tileDim - 1 - x
			}
			if vertical {
				sy = tileDim - 1 - y
			}
			SetPixel(tile, x, y, Pixel(&src, sx, sy))
		}
	}
}

// Rotate90 rotates tile 90 degrees clockwise in place.
func Rotate90(tile *cart.Tile) {
	src := *tile
	for y := 0; y < tileDim; y++ {
		for x := 0; x < tileDim; x++ {
			SetPixel(tile, x, y, Pixel(&src, y, tileDim-1-x))
		}
	}
}

// Erase clears every pixel in tile to color index 0.
func Erase(tile *cart.Tile) {
	for i := range tile {
		tile[i] = 0
	}
}

// Fill performs a 4-connected flood fill starting at (x, y), replacing
// every pixel reachable through pixels equal to the origin's color with
// replacement. It is a no-op if replacement already equals the origin
// color, matching the map editor's "filling with the same value does
// nothing" rule (see internal/editor/tilemap).
func Fill(tile *cart.Tile, x, y int, replacement uint8) {
	target := Pixel(tile, x, y)
	replacement &= 0x0F
	if target == replacement {
		return
	}
	stack := [][2]int{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p[0], p[1]
		if px < 0 || px >= tileDim || py < 0 || py >= tileDim {
			continue
		}
		if Pixel(tile, px, py) != target {
			continue
		}
		SetPixel(tile, px, py, replacement)
		stack = append(stack,
			[2]int{px + 1, py}, [2]int{px - 1, py},
			[2]int{px, py + 1}, [2]int{px, py - 1},
		)
	}
}
