// Package shell is the editor subsystem's SDL host loop: window, renderer,
// toolbar, status bar, and keyboard/mouse event routing into
// internal/router and the six per-mode editors. It plays the same role
// here that internal/ui.UI plays for cartridge playback, adapted from an
// emulator frame loop into an editor frame loop (no CPU/PPU/APU stepping,
// just Router.Tick and per-mode rendering of cartridge data).
package shell

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/clipboard"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/editor/code"
	"tic-editor-core/internal/editor/music"
	"tic-editor-core/internal/editor/sfx"
	"tic-editor-core/internal/editor/sprite"
	"tic-editor-core/internal/editor/tilemap"
	"tic-editor-core/internal/editor/world"
	"tic-editor-core/internal/router"
	"tic-editor-core/internal/spritesheet"
	"tic-editor-core/internal/vmhost"
)

// logEntryCapacity bounds the shared logger's ring buffer; editor sessions
// are short-lived compared to frame-by-frame CPU/PPU tracing, so a much
// smaller buffer suffices.
const logEntryCapacity = 2000

const (
	canvasWidth  = 320
	canvasHeight = 200
)

// Shell owns the SDL window and dispatches input/ticks/rendering across
// the editor subsystem.
type Shell struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	scale    int

	cart *cart.Cartridge

	router *router.Router
	code   *code.Editor
	sprite *sprite.Editor
	tile   *tilemap.Editor
	world  *world.Overview
	sfx    *sfx.Editor
	music  *music.Editor

	toolbar   *Toolbar
	statusBar *StatusBar

	logger *debug.Logger

	lastTick time.Time
}

// Logger returns the shell's shared logger, so a host can surface its
// entries (e.g. a future log viewer popup).
func (s *Shell) Logger() *debug.Logger {
	return s.logger
}

// NewLogger builds the logger shared by the cartridge model and every
// editor, with every component enabled at Warning so capacity refusals and
// decode failures are observed without the volume of a Debug/Trace level.
// Call it and wire it into cart.SetLogger/clipboard.SetLogger before
// cart.Load, so decode failures in a cartridge loaded at startup are
// captured too; New reuses whatever logger is already wired rather than
// replacing it.
func NewLogger() *debug.Logger {
	l := debug.NewLogger(logEntryCapacity)
	for _, c := range []debug.Component{
		debug.ComponentCode, debug.ComponentSprite, debug.ComponentMap,
		debug.ComponentSFX, debug.ComponentMusic, debug.ComponentHistory,
		debug.ComponentRouter, debug.ComponentSystem,
	} {
		l.SetComponentEnabled(c, true)
	}
	l.SetMinLevel(debug.LogLevelWarning)
	return l
}

// New creates the SDL window and wires the Router to one editor per mode,
// all bound to c. If logger is nil, New builds and wires a fresh one (via
// NewLogger) for the cartridge model and every editor; pass an existing
// logger to share entries logged before New was called, e.g. during
// cart.Load.
func New(c *cart.Cartridge, vm vmhost.Host, scale int, logger *debug.Logger) (*Shell, error) {
	if scale <= 0 {
		scale = 3
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("shell: init SDL: %w", err)
	}

	toolbarHeight := int32(24 * scale)
	statusHeight := int32(16 * scale)
	width := int32(canvasWidth * scale)
	height := int32(canvasHeight*scale) + toolbarHeight + statusHeight

	window, err := sdl.CreateWindow(
		"tic-editor-core",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		width,
		height,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("shell: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("shell: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(canvasWidth*scale),
		int32(canvasHeight*scale),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("shell: create texture: %w", err)
	}

	if logger == nil {
		logger = NewLogger()
	}
	cart.SetLogger(logger)
	clipboard.SetLogger(logger)

	codeEd := code.New(c)
	spriteEd := sprite.New(c)
	spriteEd.SetLogger(logger)
	tileEd := tilemap.New(c)
	tileEd.SetLogger(logger)
	worldEd := world.New(c, 1)
	sfxEd := sfx.New(c, vm)
	sfxEd.SetLogger(logger)
	musicEd := music.New(c, vm)
	musicEd.SetLogger(logger)

	r := router.New(codeEd, spriteEd, tileEd, worldEd, sfxEd, musicEd)

	return &Shell{
		window:    window,
		renderer:  renderer,
		texture:   texture,
		running:   true,
		scale:     scale,
		cart:      c,
		router:    r,
		code:      codeEd,
		sprite:    spriteEd,
		tile:      tileEd,
		world:     worldEd,
		sfx:       sfxEd,
		music:     musicEd,
		toolbar:   NewToolbar(scale),
		statusBar: NewStatusBar(scale),
		logger:    logger,
		lastTick:  sdlNow(),
	}, nil
}

// sdlNow exists so tests (which never run the SDL loop) don't need a real
// clock dependency baked into New.
func sdlNow() time.Time { return time.Now() }

// SetMode switches the active editor before the event loop starts,
// letting cmd/studio honor its -code/-sprites/-map/-surf flags.
func (s *Shell) SetMode(m router.Mode) {
	s.router.SwitchMode(m)
}

// Run drives the SDL event loop until the window is closed or Escape is
// pressed, ticking the active editor and rendering each frame.
func (s *Shell) Run() error {
	defer s.Cleanup()

	for s.running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if err := s.handleEvent(event); err != nil {
				return err
			}
		}

		now := sdlNow()
		dt := now.Sub(s.lastTick)
		s.lastTick = now
		s.router.Tick(dt)

		if err := s.render(); err != nil {
			return fmt.Errorf("shell: render: %w", err)
		}
		s.renderer.Present()
		sdl.Delay(1)
	}
	return nil
}

func (s *Shell) handleEvent(event sdl.Event) error {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.running = false
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			s.handleKeyDown(e.Keysym.Sym)
		}
	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN && e.Button == sdl.BUTTON_LEFT {
			s.handleClick(e.X, e.Y)
		}
	}
	return nil
}

func (s *Shell) handleKeyDown(key sdl.Keycode) {
	if key == sdl.K_ESCAPE {
		s.running = false
		return
	}
	if hk, ok := functionKeyName(key); ok {
		s.router.HandleKey(hk, router.DefaultHotkeys())
		return
	}

	ctrl := sdl.GetModState()&sdl.KMOD_CTRL != 0
	switch key {
	case sdl.K_z:
		if ctrl {
			s.undoActive()
		}
	case sdl.K_y:
		if ctrl {
			s.redoActive()
		}
	}
}

func functionKeyName(key sdl.Keycode) (string, bool) {
	switch key {
	case sdl.K_F1:
		return "F1", true
	case sdl.K_F2:
		return "F2", true
	case sdl.K_F3:
		return "F3", true
	case sdl.K_F4:
		return "F4", true
	case sdl.K_F5:
		return "F5", true
	case sdl.K_F6:
		return "F6", true
	default:
		return "", false
	}
}

func (s *Shell) undoActive() {
	switch s.router.Active() {
	case router.ModeCode:
		s.code.Undo()
	case router.ModeSprite:
		s.sprite.Undo()
	case router.ModeMap:
		s.tile.Undo()
	case router.ModeSFX:
		s.sfx.Undo()
	}
}

func (s *Shell) redoActive() {
	switch s.router.Active() {
	case router.ModeCode:
		s.code.Redo()
	case router.ModeSprite:
		s.sprite.Redo()
	case router.ModeMap:
		s.tile.Redo()
	case router.ModeSFX:
		s.sfx.Redo()
	}
}

// handleClick routes a canvas-area click to the active editor's tool, and
// a toolbar-area click to HandleClick's button dispatch.
func (s *Shell) handleClick(screenX, screenY int32) {
	toolbarHeight := s.toolbar.Height()
	if screenY < toolbarHeight {
		if label, ok := s.toolbar.HandleClick(screenX, screenY); ok {
			s.handleToolbarAction(label)
		}
		return
	}

	canvasY := screenY - toolbarHeight
	switch s.router.Active() {
	case router.ModeSprite:
		cell := s.scale * 8
		s.sprite.Apply(int(screenX)/cell, int(canvasY)/cell)
	case router.ModeMap:
		cell := s.scale * 2
		scrollX, scrollY := s.tile.Scroll()
		s.tile.Apply(scrollX+int(screenX)/cell, scrollY+int(canvasY)/cell)
	}
}

func (s *Shell) handleToolbarAction(label string) {
	switch label {
	case "Undo":
		s.undoActive()
	case "Redo":
		s.redoActive()
	}
}

// render paints the active editor's view into the window. Each mode keeps
// its own simple pixel-block renderer; there is no shared framebuffer the
// way a running cartridge has one, since these are editor views over
// cartridge data rather than emulated PPU output.
func (s *Shell) render() error {
	s.renderer.SetDrawColor(24, 24, 24, 255)
	s.renderer.Clear()

	toolbarHeight := s.toolbar.Height()
	statusHeight := s.statusBar.Height()
	outputW, outputH, _ := s.renderer.GetOutputSize()

	s.toolbar.Render(s.renderer, outputW, 0)

	switch s.router.Active() {
	case router.ModeSprite:
		s.renderSprite(toolbarHeight)
	case router.ModeMap:
		s.renderTilemap(toolbarHeight)
	case router.ModeWorld:
		s.renderWorld(toolbarHeight)
	}

	s.statusBar.Render(s.renderer, outputW, outputH-statusHeight, s.router.Active().String(), s.router.FrameCount())
	return nil
}

func (s *Shell) renderSprite(yOffset int32) {
	tileIdx := s.sprite.TileIndex()
	bank := s.sprite.Bank()
	tile := &s.cart.Tiles[bank][tileIdx]
	cell := int32(s.scale * 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			rect := &sdl.Rect{
				X: int32(x) * cell,
				Y: yOffset + int32(y)*cell,
				W: cell,
				H: cell,
			}
			color := s.cart.Palette[spritesheet.Pixel(tile, x, y)]
			s.renderer.SetDrawColor(color.R, color.G, color.B, 255)
			s.renderer.FillRect(rect)
		}
	}
}

func (s *Shell) renderTilemap(yOffset int32) {
	scrollX, scrollY := s.tile.Scroll()
	cell := int32(s.scale * 2)
	visCols := 64
	visRows := 40
	for row := 0; row < visRows; row++ {
		for col := 0; col < visCols; col++ {
			mx, my := scrollX+col, scrollY+row
			if mx < 0 || mx >= cart.MapWidth || my < 0 || my >= cart.MapHeight {
				continue
			}
			id := s.cart.Map[my*cart.MapWidth+mx]
			rect := &sdl.Rect{
				X: int32(col) * cell,
				Y: yOffset + int32(row)*cell,
				W: cell,
				H: cell,
			}
			paletteIdx := id & 0x0F
			color := s.cart.Palette[paletteIdx]
			s.renderer.SetDrawColor(color.R, color.G, color.B, 255)
			s.renderer.FillRect(rect)
		}
	}
}

func (s *Shell) renderWorld(yOffset int32) {
	w, h := s.world.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := s.world.Pixel(x, y)
			rect := &sdl.Rect{
				X: int32(x),
				Y: yOffset + int32(y),
				W: 1,
				H: 1,
			}
			color := s.cart.Palette[id&0x0F]
			s.renderer.SetDrawColor(color.R, color.G, color.B, 255)
			s.renderer.FillRect(rect)
		}
	}
}

// Cleanup releases SDL resources. Safe to call once, typically deferred
// from Run.
func (s *Shell) Cleanup() {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
}
