package shell

import (
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"tic-editor-core/internal/host"
)

// System is the production host.System, backed by SDL's clipboard and the
// OS filesystem clock (setClipboardText/hasClipboardText/getClipboardText,
// both backed by SDL_*ClipboardText).
type System struct{}

var _ host.System = System{}

func (System) ClipboardText() (string, error) {
	if !sdl.HasClipboardText() {
		return "", nil
	}
	return sdl.GetClipboardText()
}

func (System) SetClipboardText(s string) error {
	return sdl.SetClipboardText(s)
}

func (System) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &host.NotFoundError{Path: path}
	}
	return data, err
}

func (System) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (System) Now() time.Time {
	return time.Now()
}
