// Package sfx implements the sound-effect editor: the envelope LED grids
// (wave/volume/arpeggio/pitch per tick), loop regions, the waveform
// editor, a piano preview, and the sfx slot selector. Undo/redo runs over
// one sfx slot's fixed-size cart.SFX value.
package sfx

import (
	"time"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/vmhost"
)

// Lane names one of the four per-tick envelope lanes.
type Lane int

const (
	LaneWave Lane = iota
	LaneVolume
	LaneArp
	LanePitch
)

// Editor is the sfx editor's state for one cartridge.
type Editor struct {
	cart *cart.Cartridge
	host vmhost.Host

	index int // active sfx slot, 0..SFXCount-1
	past  []cart.SFX
	future []cart.SFX

	logger *debug.Logger
}

// SetLogger attaches the shared logger used to report out-of-range
// SelectSlot/SetWaveformSample requests.
func (e *Editor) SetLogger(l *debug.Logger) {
	e.logger = l
}

// New returns an sfx editor bound to c and host, starting at slot 0.
func New(c *cart.Cartridge, host vmhost.Host) *Editor {
	return &Editor{cart: c, host: host}
}

func (e *Editor) Tick(dt time.Duration) {}

// SelectSlot switches the active sfx slot, clearing undo history (each
// slot keeps its own history, mirroring the sprite editor's per-tile
// reset).
func (e *Editor) SelectSlot(index int) {
	if index < 0 || index >= cart.SFXCount {
		if e.logger != nil {
			e.logger.LogSFXf(debug.LogLevelWarning, "SelectSlot refused: index %d out of range", index)
		}
		return
	}
	e.index = index
	e.past = nil
	e.future = nil
}

func (e *Editor) Slot() int { return e.index }

func (e *Editor) active() *cart.SFX {
	return &e.cart.SFX[e.index]
}

func (e *Editor) commit(before cart.SFX) {
	after := *e.active()
	if after == before {
		return
	}
	e.past = append(e.past, before)
	e.future = nil
}

// SetTick writes one lane's value at the given tick of the active slot.
func (e *Editor) SetTick(tick int, lane Lane, value uint8) {
	if tick < 0 || tick >= cart.SFXTicks {
		return
	}
	before := *e.active()
	tk := &e.active().Ticks[tick]
	switch lane {
	case LaneWave:
		tk.Wave = value & 0x0F
	case LaneVolume:
		tk.Volume = value & 0x0F
	case LaneArp:
		tk.Arp = value & 0x0F
	case LanePitch:
		tk.Pitch = int8(value)
	}
	e.commit(before)
}

// SetLoop sets the loop region for the given lane.
func (e *Editor) SetLoop(lane Lane, start, size uint8) {
	before := *e.active()
	loop := cart.Loop{Start: start, Size: size}
	switch lane {
	case LaneVolume:
		e.active().VolumeLoop = loop
	case LaneArp:
		e.active().ArpLoop = loop
	case LanePitch:
		e.active().PitchLoop = loop
	}
	e.commit(before)
}

// SetSpeed, SetOctave, SetNote, and SetStereo set the active slot's
// playback defaults.
func (e *Editor) SetSpeed(speed int8) {
	before := *e.active()
	e.active().Speed = speed
	e.commit(before)
}

func (e *Editor) SetOctave(octave uint8) {
	before := *e.active()
	e.active().Octave = octave
	e.commit(before)
}

func (e *Editor) SetNote(note uint8) {
	before := *e.active()
	e.active().Note = note
	e.commit(before)
}

func (e *Editor) SetStereo(left, right bool) {
	before := *e.active()
	e.active().StereoLeft = left
	e.active().StereoRight = right
	e.commit(before)
}

// Undo and Redo restore the active slot's prior/next state.
func (e *Editor) Undo() bool {
	if len(e.past) == 0 {
		return false
	}
	last := len(e.past) - 1
	prev := e.past[last]
	e.past = e.past[:last]
	e.future = append(e.future, *e.active())
	*e.active() = prev
	return true
}

func (e *Editor) Redo() bool {
	if len(e.future) == 0 {
		return false
	}
	last := len(e.future) - 1
	next := e.future[last]
	e.future = e.future[:last]
	e.past = append(e.past, *e.active())
	*e.active() = next
	return true
}

func (e *Editor) CanUndo() bool { return len(e.past) > 0 }
func (e *Editor) CanRedo() bool { return len(e.future) > 0 }

// Waveform returns the waveform slot referenced by the active sfx's
// tick-0 wave lane, for the waveform editor panel to display alongside
// the envelope.
func (e *Editor) Waveform() *cart.Waveform {
	return &e.cart.Waveforms[e.active().Ticks[0].Wave%cart.WaveformCount]
}

// SetWaveformSample writes one amplitude sample of the given waveform
// slot.
func (e *Editor) SetWaveformSample(waveform, sample int, value uint8) {
	if waveform < 0 || waveform >= cart.WaveformCount {
		if e.logger != nil {
			e.logger.LogSFXf(debug.LogLevelWarning, "SetWaveformSample refused: waveform %d out of range", waveform)
		}
		return
	}
	if sample < 0 || sample >= cart.WaveformSamples {
		if e.logger != nil {
			e.logger.LogSFXf(debug.LogLevelWarning, "SetWaveformSample refused: sample %d out of range", sample)
		}
		return
	}
	e.cart.Waveforms[waveform][sample] = value & 0x0F
}

// PreviewNote plays the active slot at the given note/octave through the
// bound vmhost.Host, for the piano overlay.
func (e *Editor) PreviewNote(note, octave int) error {
	return e.host.PlaySFX(e.cart, e.index, note, octave)
}

// StopPreview silences whatever PreviewNote started.
func (e *Editor) StopPreview() {
	e.host.StopAudio()
}
