package main

import (
	"os"
	"time"

	"fyne.io/fyne/v2"

	"tic-editor-core/internal/host"
)

// fyneSystem is the devkit's host.System, backed by the window's own
// clipboard rather than SDL's, since devkit never initializes SDL.
type fyneSystem struct {
	window fyne.Window
}

var _ host.System = fyneSystem{}

func (s fyneSystem) ClipboardText() (string, error) {
	if s.window == nil || s.window.Clipboard() == nil {
		return "", nil
	}
	return s.window.Clipboard().Content(), nil
}

func (s fyneSystem) SetClipboardText(text string) error {
	if s.window == nil || s.window.Clipboard() == nil {
		return nil
	}
	s.window.Clipboard().SetContent(text)
	return nil
}

func (fyneSystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &host.NotFoundError{Path: path}
	}
	return data, err
}

func (fyneSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (fyneSystem) Now() time.Time {
	return time.Now()
}
