package shell

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Toolbar is the row of mode-independent action buttons (Undo/Redo/Save).
// HandleClick hit-tests the rects recorded by the most recent Render.
type Toolbar struct {
	height       int32
	scale        int
	buttonRects  []sdl.Rect
	buttonLabels []string
}

// NewToolbar returns a toolbar sized for scale.
func NewToolbar(scale int) *Toolbar {
	return &Toolbar{height: int32(24 * scale), scale: scale}
}

func (t *Toolbar) Height() int32 { return t.height }

// Render draws the toolbar background and its buttons, recording their
// rects for HandleClick.
func (t *Toolbar) Render(renderer *sdl.Renderer, width int32, yOffset int32) {
	bg := &sdl.Rect{X: 0, Y: yOffset, W: width, H: t.height}
	renderer.SetDrawColor(96, 96, 96, 255)
	renderer.FillRect(bg)

	buttonWidth := int32(40 * t.scale)
	buttonHeight := t.height - 4

	labels := []string{"Undo", "Redo", "Save"}
	t.buttonRects = t.buttonRects[:0]
	t.buttonLabels = t.buttonLabels[:0]

	x := int32(4 * t.scale)
	for _, label := range labels {
		rect := sdl.Rect{X: x, Y: yOffset + 2, W: buttonWidth, H: buttonHeight}
		t.buttonRects = append(t.buttonRects, rect)
		t.buttonLabels = append(t.buttonLabels, label)

		renderer.SetDrawColor(128, 128, 128, 255)
		renderer.FillRect(&rect)
		renderer.SetDrawColor(64, 64, 64, 255)
		renderer.DrawRect(&rect)

		x += buttonWidth + int32(4*t.scale)
	}
}

// HandleClick reports the button label at (x, y), if any.
func (t *Toolbar) HandleClick(x, y int32) (string, bool) {
	for i, rect := range t.buttonRects {
		if x >= rect.X && x < rect.X+rect.W && y >= rect.Y && y < rect.Y+rect.H {
			return t.buttonLabels[i], true
		}
	}
	return "", false
}

// StatusBar is the bottom strip showing the active mode and frame count.
type StatusBar struct {
	height int32
	scale  int
}

// NewStatusBar returns a status bar sized for scale.
func NewStatusBar(scale int) *StatusBar {
	return &StatusBar{height: int32(16 * scale), scale: scale}
}

func (s *StatusBar) Height() int32 { return s.height }

// Render draws the status bar background only; there is no TTF-backed
// text renderer wired into this package yet, so the label is available
// via Label for a caller that wants to draw it with its own renderer.
func (s *StatusBar) Render(renderer *sdl.Renderer, width int32, yOffset int32, mode string, frameCount uint64) {
	bg := &sdl.Rect{X: 0, Y: yOffset, W: width, H: s.height}
	renderer.SetDrawColor(48, 48, 48, 255)
	renderer.FillRect(bg)
	_ = s.Label(mode, frameCount)
}

// Label formats the status line text.
func (s *StatusBar) Label(mode string, frameCount uint64) string {
	return fmt.Sprintf("%s  frame %d", mode, frameCount)
}
