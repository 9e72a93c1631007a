// Package cart holds the cartridge data model shared by every editor: tiles,
// map, palette, sfx, waveforms, music, code and cover. Every region is a
// fixed-size value so "may never grow past capacity" is a property of the
// type, not a runtime check, for everything except Code and Cover.
package cart

import "tic-editor-core/internal/debug"

// logger receives capacity-refusal and decode-failure notices. Logging is
// opt-in per component (see debug.Logger), so a cart used without SetLogger
// behaves exactly as before.
var logger *debug.Logger

// SetLogger attaches the shared logger used by SetCode, Load, and
// applyChunk to report conditions they otherwise swallow silently.
func SetLogger(l *debug.Logger) {
	logger = l
}

const (
	// BanksPerSheet is the number of independent 256-tile sprite banks
	// (foreground/background) that share one palette.
	BanksPerSheet = 2
	// TilesPerBank is the number of addressable 8x8 tiles in one bank.
	TilesPerBank = 256
	// TileBytes is an 8x8 tile packed at 4 bits per pixel (32 bytes).
	TileBytes = 32

	// MapWidth and MapHeight are the world dimensions in tiles.
	MapWidth  = 240
	MapHeight = 136
	MapCells  = MapWidth * MapHeight

	// PaletteSize is the number of RGB entries in the shared palette.
	PaletteSize = 16

	// SFXCount is the number of addressable sound-effect slots.
	SFXCount = 64
	// SFXTicks is the envelope length, in ticks, of one sfx slot.
	SFXTicks = 30

	// WaveformCount is the number of addressable 4-bit waveforms.
	WaveformCount = 16
	// WaveformSamples is the amplitude resolution of one waveform.
	WaveformSamples = 32

	// PatternRows is the number of rows in one music pattern.
	PatternRows = 64
	// ChannelsPerRow is the number of tracker channels.
	ChannelsPerRow = 4
	// PatternCount is the number of addressable patterns.
	PatternCount = 256
	// TrackCount is the number of addressable tracks.
	TrackCount = 8
	// FramesPerTrack is the number of frame columns in a track matrix.
	FramesPerTrack = 16

	// CodeSize is the capacity of the code region, including the
	// terminating NUL.
	CodeSize = 0x10000
)

// Tile is one 8x8 glyph, 4 bits per pixel, row-major.
type Tile [TileBytes]byte

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// Loop describes the loop region of an SFX envelope: bytes [Start,
// Start+Size) repeat once playback reaches the end of the envelope.
type Loop struct {
	Start uint8
	Size  uint8
}

// SFXTick is one column of an SFX envelope.
type SFXTick struct {
	Wave   uint8
	Volume uint8
	Arp    uint8
	Pitch  int8
}

// SFX is one sound-effect slot: a 30-tick envelope plus loop regions,
// speed/octave/note defaults, and stereo routing bits.
type SFX struct {
	Ticks       [SFXTicks]SFXTick
	VolumeLoop  Loop
	ArpLoop     Loop
	PitchLoop   Loop
	Speed       int8
	Octave      uint8
	Note        uint8
	StereoLeft  bool
	StereoRight bool
}

// Waveform is one 4-bit amplitude curve used by SFX ticks.
type Waveform [WaveformSamples]byte

// Row is one channel's note/command data within a pattern.
type Row struct {
	Note    byte
	Octave  byte
	SFX     byte
	Command byte
	Param1  byte
	Param2  byte
}

// Pattern is 64 rows x 4 channels of tracker data.
type Pattern [PatternRows][ChannelsPerRow]Row

// Track is a frame->channel->pattern-id matrix plus per-track playback
// parameters. A pattern id of -1 means "no pattern" for that cell.
type Track struct {
	Frames   [FramesPerTrack][ChannelsPerRow]int16
	Tempo    int
	Speed    int
	RowsTrim uint8
}

// Cartridge is the single document shared by every editor.
type Cartridge struct {
	Tiles   [BanksPerSheet][TilesPerBank]Tile
	Map     [MapCells]byte
	Palette [PaletteSize]RGB

	SFX       [SFXCount]SFX
	Waveforms [WaveformCount]Waveform

	Patterns [PatternCount]Pattern
	Tracks   [TrackCount]Track

	// Code is a NUL-terminated C-string view over a fixed capacity: bytes
	// past the terminator are always zero.
	Code [CodeSize]byte

	// Cover is an optional 240x136 GIF, opaque to this package.
	Cover []byte
}

// New returns a zeroed cartridge with a default grayscale-ish palette so an
// empty cart is still visually distinguishable, starting from a
// deterministic state. Every track cell starts at -1 (no pattern).
func New() *Cartridge {
	c := &Cartridge{}
	for i := range c.Palette {
		v := uint8(i * 255 / (PaletteSize - 1))
		c.Palette[i] = RGB{R: v, G: v, B: v}
	}
	for t := range c.Tracks {
		for f := range c.Tracks[t].Frames {
			for ch := range c.Tracks[t].Frames[f] {
				c.Tracks[t].Frames[f][ch] = -1
			}
		}
	}
	return c
}

// CodeLen returns the length of the NUL-terminated code string.
func (c *Cartridge) CodeLen() int {
	for i, b := range c.Code {
		if b == 0 {
			return i
		}
	}
	return len(c.Code)
}

// SetCode overwrites the code region with text and zero-fills everything
// past the new terminator. Returns false (and leaves the region untouched)
// if text is longer than CodeSize-1 bytes, matching the "silently refuse"
// capacity policy.
func (c *Cartridge) SetCode(text []byte) bool {
	if len(text) > CodeSize-1 {
		if logger != nil {
			logger.LogCodef(debug.LogLevelWarning, "SetCode refused: %d bytes exceeds capacity %d", len(text), CodeSize-1)
		}
		return false
	}
	n := copy(c.Code[:], text)
	for i := n; i < len(c.Code); i++ {
		c.Code[i] = 0
	}
	return true
}
