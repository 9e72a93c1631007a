// Package vmhost defines the boundary between the editor subsystem and the
// fantasy-computer VM that actually executes cartridges. Cartridge
// execution itself is out of scope here: Host exists only so editors can
// ask "is my code valid", "show me a live preview frame", and "play this
// sound", without this module depending on a concrete CPU/PPU/APU
// implementation. The interface shape is trimmed down to the handful of
// calls an editor subsystem actually needs from a VM backend.
package vmhost

import "tic-editor-core/internal/cart"

// Host is implemented by whatever embeds the editor subsystem: a full VM
// in production, vmhost.Fake in tests.
type Host interface {
	// LoadCartridge installs c as the active cartridge, replacing whatever
	// was running before.
	LoadCartridge(c *cart.Cartridge) error

	// CompileCheck reports whether source currently parses/compiles,
	// without running it. A non-nil error carries a human-readable
	// diagnostic for the code editor's status line.
	CompileCheck(source string) error

	// PreviewFrame renders one frame of the active cartridge's code
	// against the given map/sprite/palette state and returns packed RGB
	// pixels, width*height long. Used by the map/sprite editors' "preview"
	// toggle.
	PreviewFrame(c *cart.Cartridge, width, height int) []uint32

	// PlaySFX plays sfx slot index once, for the SFX editor's preview
	// button and the piano overlay.
	PlaySFX(c *cart.Cartridge, index int, note, octave int) error

	// StopAudio silences whatever PlaySFX started.
	StopAudio()
}

// Fake is a minimal in-memory Host for tests: it records calls and never
// actually executes anything.
type Fake struct {
	Loaded      *cart.Cartridge
	CompileErr  error
	LastSource  string
	PlayedIndex int
	PlayedNote  int
	PlayedOct   int
	Stopped     bool
}

var _ Host = (*Fake)(nil)

func (f *Fake) LoadCartridge(c *cart.Cartridge) error {
	f.Loaded = c
	return nil
}

func (f *Fake) CompileCheck(source string) error {
	f.LastSource = source
	return f.CompileErr
}

func (f *Fake) PreviewFrame(c *cart.Cartridge, width, height int) []uint32 {
	buf := make([]uint32, width*height)
	for i := range buf {
		buf[i] = 0xFF000000
	}
	return buf
}

func (f *Fake) PlaySFX(c *cart.Cartridge, index int, note, octave int) error {
	f.PlayedIndex = index
	f.PlayedNote = note
	f.PlayedOct = octave
	return nil
}

func (f *Fake) StopAudio() {
	f.Stopped = true
}
