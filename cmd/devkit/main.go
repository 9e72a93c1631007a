// Command devkit is the Fyne-based cartridge workbench: one window with a
// tab per editor (code, sprites, map, world, sfx, music), adapted from
// cmd/corelx_devkit's AppTabs layout and file-dialog workflow, scaled down
// to the editor subsystem's scope (no CPU/PPU/APU stepping or build
// diagnostics, since cartridge execution is out of scope).
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/clipboard"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/editor/code"
	"tic-editor-core/internal/editor/music"
	"tic-editor-core/internal/editor/sfx"
	"tic-editor-core/internal/editor/sprite"
	"tic-editor-core/internal/editor/tilemap"
	"tic-editor-core/internal/editor/world"
	"tic-editor-core/internal/spritesheet"
	"tic-editor-core/internal/studio"
	"tic-editor-core/internal/vmhost"
)

const spritePixelSize = 18

type devkitState struct {
	window fyne.Window

	sys     fyneSystem
	cfgPath string
	cfg     studio.Config
	path    string

	cart   *cart.Cartridge
	vm     *vmhost.Fake
	logger *debug.Logger

	code   *code.Editor
	sprite *sprite.Editor
	tile   *tilemap.Editor
	world  *world.Overview
	sfx    *sfx.Editor
	music  *music.Editor

	sourceEntry  *widget.Entry
	spriteCanvas *canvas.Raster
	tileCanvas   *canvas.Raster
	worldCanvas  *canvas.Raster
	statusLabel  *widget.Label
}

func main() {
	openPath := ""
	if len(os.Args) > 1 {
		openPath = os.Args[1]
	}

	a := app.New()
	w := a.NewWindow("tic-editor-core devkit")
	w.Resize(fyne.NewSize(1000, 700))

	logger := debug.NewLogger(2000)
	for _, c := range []debug.Component{
		debug.ComponentCode, debug.ComponentSprite, debug.ComponentMap,
		debug.ComponentSFX, debug.ComponentMusic, debug.ComponentSystem,
	} {
		logger.SetComponentEnabled(c, true)
	}
	logger.SetMinLevel(debug.LogLevelWarning)
	cart.SetLogger(logger)
	clipboard.SetLogger(logger)

	s := &devkitState{window: w, sys: fyneSystem{window: w}, vm: &vmhost.Fake{}, logger: logger}
	s.cfgPath = studio.ConfigPath(s.sys)
	if cfg, err := studio.Load(s.sys, s.cfgPath); err == nil {
		s.cfg = cfg
	} else {
		s.cfg = studio.DefaultConfig()
	}
	s.newCartridge()

	if openPath == "" {
		openPath = s.cfg.LastCartPath
	}
	if openPath != "" {
		s.openPath(openPath)
	}

	s.initUI()
	w.SetCloseIntercept(func() {
		if err := studio.Save(s.sys, s.cfgPath, s.cfg); err != nil {
			fmt.Fprintf(os.Stderr, "devkit: warning: could not save config: %v\n", err)
		}
		w.Close()
	})
	w.ShowAndRun()
}

func (s *devkitState) newCartridge() {
	s.cart = cart.New()
	s.rebuildEditors()
}

func (s *devkitState) rebuildEditors() {
	s.code = code.New(s.cart)
	s.sprite = sprite.New(s.cart)
	s.sprite.SetLogger(s.logger)
	s.tile = tilemap.New(s.cart)
	s.tile.SetLogger(s.logger)
	s.world = world.New(s.cart, 4)
	s.sfx = sfx.New(s.cart, s.vm)
	s.sfx.SetLogger(s.logger)
	s.music = music.New(s.cart, s.vm)
	s.music.SetLogger(s.logger)
}

func (s *devkitState) openPath(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if s.window != nil {
			dialog.ShowError(err, s.window)
		}
		return
	}
	s.cart = cart.Load(data)
	s.rebuildEditors()
	s.path = path
	s.cfg.RememberCart(path)
}

func (s *devkitState) save() error {
	if s.path == "" {
		return fmt.Errorf("no cartridge path set")
	}
	if !s.cart.SetCode([]byte(s.sourceEntry.Text)) {
		return fmt.Errorf("code exceeds cartridge capacity")
	}
	return os.WriteFile(s.path, cart.Save(s.cart), 0o644)
}

func (s *devkitState) initUI() {
	s.sourceEntry = widget.NewMultiLineEntry()
	s.sourceEntry.Wrapping = fyne.TextWrapOff
	s.sourceEntry.SetText(s.code.Buffer().Text())
	// The devkit Code tab edits the cartridge's code region directly
	// through the widget's own text model; internal/editor/code.Editor's
	// char-addressed Buffer is for the SDL shell's caret-driven editing,
	// not a plain-text widget, so only its buffer's text is read here.
	codeTab := container.NewBorder(nil, nil, nil, nil, s.sourceEntry)

	spriteTab := s.buildSpriteTab()
	tileTab := s.buildTileTab()
	worldTab := s.buildWorldTab()
	sfxTab := s.buildSFXTab()
	musicTab := s.buildMusicTab()

	tabs := container.NewAppTabs(
		container.NewTabItem("Code", codeTab),
		container.NewTabItem("Sprites", spriteTab),
		container.NewTabItem("Map", tileTab),
		container.NewTabItem("World", worldTab),
		container.NewTabItem("SFX", sfxTab),
		container.NewTabItem("Music", musicTab),
	)

	s.statusLabel = widget.NewLabel("Ready")

	newBtn := widget.NewButton("New", func() {
		s.newCartridge()
		s.path = ""
		s.refreshAll()
		s.statusLabel.SetText("New cartridge")
	})
	openBtn := widget.NewButton("Open", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			s.openPath(rc.URI().Path())
			s.refreshAll()
			s.statusLabel.SetText("Opened " + s.path)
		}, s.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".tic"}))
		fd.Show()
	})
	saveBtn := widget.NewButton("Save", func() {
		if s.path == "" {
			s.saveAsDialog()
			return
		}
		if err := s.save(); err != nil {
			dialog.ShowError(err, s.window)
			s.statusLabel.SetText("Save failed")
			return
		}
		s.statusLabel.SetText("Saved " + s.path)
	})

	toolbar := container.NewHBox(newBtn, openBtn, saveBtn)
	content := container.NewBorder(toolbar, s.statusLabel, nil, nil, tabs)
	s.window.SetContent(content)
}

func (s *devkitState) saveAsDialog() {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if !s.cart.SetCode([]byte(s.sourceEntry.Text)) {
			dialog.ShowError(fmt.Errorf("code exceeds cartridge capacity"), s.window)
			return
		}
		if _, err := wc.Write(cart.Save(s.cart)); err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		s.path = wc.URI().Path()
		s.cfg.RememberCart(s.path)
		s.statusLabel.SetText("Saved " + s.path)
	}, s.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".tic"}))
	fd.SetFileName("cart.tic")
	fd.Show()
}

func (s *devkitState) refreshAll() {
	s.sourceEntry.SetText(s.code.Buffer().Text())
	if s.spriteCanvas != nil {
		s.spriteCanvas.Refresh()
	}
	if s.tileCanvas != nil {
		s.tileCanvas.Refresh()
	}
	if s.worldCanvas != nil {
		s.worldCanvas.Refresh()
	}
}

func (s *devkitState) buildSpriteTab() fyne.CanvasObject {
	gridSize := 8 * spritePixelSize
	s.spriteCanvas = canvas.NewRaster(func(w, h int) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, gridSize, gridSize))
		tile := &s.cart.Tiles[s.sprite.Bank()][s.sprite.TileIndex()]
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				rgb := s.cart.Palette[spritesheet.Pixel(tile, x, y)]
				col := color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
				for dy := 0; dy < spritePixelSize; dy++ {
					for dx := 0; dx < spritePixelSize; dx++ {
						img.Set(x*spritePixelSize+dx, y*spritePixelSize+dy, col)
					}
				}
			}
		}
		return img
	})
	s.spriteCanvas.Resize(fyne.NewSize(float32(gridSize), float32(gridSize)))

	tileIndexEntry := widget.NewEntry()
	tileIndexEntry.SetText("0")
	tileIndexEntry.OnSubmitted = func(text string) {
		if n, err := strconv.Atoi(text); err == nil {
			s.sprite.SetTile(s.sprite.Bank(), n)
			s.spriteCanvas.Refresh()
		}
	}

	toolbar := container.NewHBox(
		widget.NewLabel("Tile:"), tileIndexEntry,
		widget.NewButton("Draw", func() { s.sprite.SetTool(sprite.ToolDraw) }),
		widget.NewButton("Pick", func() { s.sprite.SetTool(sprite.ToolPick) }),
		widget.NewButton("Fill", func() { s.sprite.SetTool(sprite.ToolFill) }),
		widget.NewButton("Flip H", func() { s.sprite.FlipHorizontal(); s.spriteCanvas.Refresh() }),
		widget.NewButton("Flip V", func() { s.sprite.FlipVertical(); s.spriteCanvas.Refresh() }),
		widget.NewButton("Rotate", func() { s.sprite.Rotate90(); s.spriteCanvas.Refresh() }),
		widget.NewButton("Erase", func() { s.sprite.Erase(); s.spriteCanvas.Refresh() }),
		widget.NewButton("Undo", func() { s.sprite.Undo(); s.spriteCanvas.Refresh() }),
		widget.NewButton("Redo", func() { s.sprite.Redo(); s.spriteCanvas.Refresh() }),
	)

	paletteContainer := container.NewHBox()
	for i := 0; i < cart.PaletteSize; i++ {
		idx := uint8(i)
		rgb := s.cart.Palette[idx]
		swatch := canvas.NewRectangle(color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
		swatch.SetMinSize(fyne.NewSize(20, 20))
		btn := widget.NewButton("", func() { s.sprite.SetColor(idx) })
		btn.Importance = widget.LowImportance
		paletteContainer.Add(container.NewStack(swatch, btn))
	}

	return container.NewBorder(toolbar, paletteContainer, nil, nil, s.spriteCanvas)
}

func (s *devkitState) buildTileTab() fyne.CanvasObject {
	const visCols, visRows = 48, 32
	cellSize := 6
	canvasW, canvasH := visCols*cellSize, visRows*cellSize
	s.tileCanvas = canvas.NewRaster(func(w, h int) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
		scrollX, scrollY := s.tile.Scroll()
		for row := 0; row < visRows; row++ {
			for colIdx := 0; colIdx < visCols; colIdx++ {
				mx, my := scrollX+colIdx, scrollY+row
				var rgb cart.RGB
				if mx >= 0 && mx < cart.MapWidth && my >= 0 && my < cart.MapHeight {
					id := s.cart.Map[my*cart.MapWidth+mx]
					rgb = s.cart.Palette[id&0x0F]
				}
				px := color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
				baseX, baseY := colIdx*cellSize, row*cellSize
				for dy := 0; dy < cellSize; dy++ {
					for dx := 0; dx < cellSize; dx++ {
						img.Set(baseX+dx, baseY+dy, px)
					}
				}
			}
		}
		return img
	})
	s.tileCanvas.Resize(fyne.NewSize(float32(canvasW), float32(canvasH)))

	brushEntry := widget.NewEntry()
	brushEntry.SetText("0")
	brushEntry.OnSubmitted = func(text string) {
		if n, err := strconv.Atoi(text); err == nil {
			s.tile.SetBrush(byte(n))
		}
	}
	toolbar := container.NewHBox(
		widget.NewLabel("Brush:"), brushEntry,
		widget.NewButton("Draw", func() { s.tile.SetTool(tilemap.ToolDraw) }),
		widget.NewButton("Fill", func() { s.tile.SetTool(tilemap.ToolFill) }),
		widget.NewButton("Select", func() { s.tile.SetTool(tilemap.ToolSelect) }),
		widget.NewButton("Grid", func() { s.tile.ToggleGrid() }),
		widget.NewButton("Undo", func() { s.tile.Undo(); s.tileCanvas.Refresh() }),
		widget.NewButton("Redo", func() { s.tile.Redo(); s.tileCanvas.Refresh() }),
	)
	return container.NewBorder(toolbar, nil, nil, nil, s.tileCanvas)
}

func (s *devkitState) buildWorldTab() fyne.CanvasObject {
	w, h := s.world.Size()
	s.worldCanvas = canvas.NewRaster(func(cw, ch int) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				id := s.world.Pixel(x, y)
				rgb := s.cart.Palette[id&0x0F]
				img.Set(x, y, color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
			}
		}
		return img
	})
	s.worldCanvas.Resize(fyne.NewSize(float32(w), float32(h)))
	return container.NewBorder(widget.NewLabel("World overview"), nil, nil, nil, s.worldCanvas)
}

func (s *devkitState) buildSFXTab() fyne.CanvasObject {
	slotEntry := widget.NewEntry()
	slotEntry.SetText("0")
	slotEntry.OnSubmitted = func(text string) {
		if n, err := strconv.Atoi(text); err == nil {
			s.sfx.SelectSlot(n)
		}
	}
	previewBtn := widget.NewButton("Preview", func() {
		s.sfx.PreviewNote(int(s.cart.SFX[s.sfx.Slot()].Note), int(s.cart.SFX[s.sfx.Slot()].Octave))
	})
	stopBtn := widget.NewButton("Stop", func() { s.sfx.StopPreview() })
	return container.NewVBox(
		container.NewHBox(widget.NewLabel("Slot:"), slotEntry, previewBtn, stopBtn),
		widget.NewLabel("Envelope editing is driven by internal/editor/sfx; this tab exposes slot selection and preview only."),
	)
}

func (s *devkitState) buildMusicTab() fyne.CanvasObject {
	trackEntry := widget.NewEntry()
	trackEntry.SetText("0")
	trackEntry.OnSubmitted = func(text string) {
		if n, err := strconv.Atoi(text); err == nil {
			s.music.SetTrack(n)
		}
	}
	playFrameBtn := widget.NewButton("Play Frame", func() { s.music.PlayFrame() })
	playTrackBtn := widget.NewButton("Play Track", func() { s.music.PlayTrack() })
	stopBtn := widget.NewButton("Stop", func() { s.music.Stop() })
	return container.NewVBox(
		container.NewHBox(widget.NewLabel("Track:"), trackEntry, playFrameBtn, playTrackBtn, stopBtn),
	)
}
