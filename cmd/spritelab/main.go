// Command spritelab is a standalone sprite editor over one cartridge's
// tile bank, adapted from cmd/sprite_editor's Fyne canvas approach but
// driving internal/editor/sprite instead of drawing directly into an
// image.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/editor/sprite"
	"tic-editor-core/internal/spritesheet"
)

const pixelSize = 20

func main() {
	cartPath := flag.String("cart", "", "Path to a cartridge file (blank starts a new one)")
	flag.Parse()

	logger := debug.NewLogger(2000)
	logger.SetComponentEnabled(debug.ComponentSprite, true)
	logger.SetComponentEnabled(debug.ComponentCode, true)
	logger.SetComponentEnabled(debug.ComponentSystem, true)
	logger.SetMinLevel(debug.LogLevelWarning)
	cart.SetLogger(logger)

	c := cart.New()
	if *cartPath != "" {
		data, err := os.ReadFile(*cartPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spritelab: error reading cartridge: %v\n", err)
			os.Exit(1)
		}
		c = cart.Load(data)
	}

	ed := sprite.New(c)
	ed.SetLogger(logger)

	myApp := app.New()
	window := myApp.NewWindow("tic-editor-core sprite lab")
	window.Resize(fyne.NewSize(8*pixelSize+220, 8*pixelSize+160))

	gridSize := 8 * pixelSize
	var spriteCanvas *canvas.Raster
	spriteCanvas = canvas.NewRaster(func(w, h int) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, gridSize, gridSize))
		bank, idx := ed.Bank(), ed.TileIndex()
		tile := &c.Tiles[bank][idx]
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				p := spritesheet.Pixel(tile, x, y)
				rgb := c.Palette[p]
				col := color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
				for dy := 0; dy < pixelSize; dy++ {
					for dx := 0; dx < pixelSize; dx++ {
						img.Set(x*pixelSize+dx, y*pixelSize+dy, col)
					}
				}
			}
		}
		return img
	})
	spriteCanvas.Resize(fyne.NewSize(float32(gridSize), float32(gridSize)))

	statusLabel := widget.NewLabel("tile 0:0")
	refreshStatus := func() {
		statusLabel.SetText(fmt.Sprintf("tile %d:%d  color %d", ed.Bank(), ed.TileIndex(), ed.Color()))
		spriteCanvas.Refresh()
	}

	paletteContainer := container.NewHBox()
	for i := 0; i < cart.PaletteSize; i++ {
		idx := uint8(i)
		rgb := c.Palette[idx]
		swatch := canvas.NewRectangle(color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
		swatch.SetMinSize(fyne.NewSize(24, 24))
		btn := widget.NewButton("", func() {
			ed.SetColor(idx)
			refreshStatus()
		})
		btn.Importance = widget.LowImportance
		paletteContainer.Add(container.NewStack(swatch, btn))
	}

	toolbar := container.NewHBox(
		widget.NewButton("Draw", func() { ed.SetTool(sprite.ToolDraw) }),
		widget.NewButton("Pick", func() { ed.SetTool(sprite.ToolPick) }),
		widget.NewButton("Fill", func() { ed.SetTool(sprite.ToolFill) }),
		widget.NewButton("Flip H", func() { ed.FlipHorizontal(); refreshStatus() }),
		widget.NewButton("Flip V", func() { ed.FlipVertical(); refreshStatus() }),
		widget.NewButton("Rotate", func() { ed.Rotate90(); refreshStatus() }),
		widget.NewButton("Erase", func() { ed.Erase(); refreshStatus() }),
		widget.NewButton("Undo", func() { ed.Undo(); refreshStatus() }),
		widget.NewButton("Redo", func() { ed.Redo(); refreshStatus() }),
		widget.NewButton("Save", func() {
			if *cartPath == "" {
				return
			}
			if err := os.WriteFile(*cartPath, cart.Save(c), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "spritelab: error saving cartridge: %v\n", err)
			}
		}),
	)

	content := container.NewBorder(
		toolbar,
		statusLabel,
		nil,
		paletteContainer,
		spriteCanvas,
	)

	window.SetContent(content)
	window.ShowAndRun()
}
