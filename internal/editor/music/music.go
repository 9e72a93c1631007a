// Package music implements the tracker: the pattern grid, per-track frame
// headers, selection/clipboard over rows, a play state machine, and
// per-channel mute.
package music

import (
	"time"

	"tic-editor-core/internal/cart"
	"tic-editor-core/internal/clipboard"
	"tic-editor-core/internal/debug"
	"tic-editor-core/internal/vmhost"
)

// PlayState names the tracker's transport state.
type PlayState int

const (
	Stopped PlayState = iota
	PlayingFrame
	PlayingTrack
)

// Editor is the tracker's state for one cartridge.
type Editor struct {
	cart *cart.Cartridge
	host vmhost.Host

	track    int
	frame    int
	row      int
	channel  int

	mute [cart.ChannelsPerRow]bool
	follow bool

	state     PlayState
	playRow   int
	tickAccum time.Duration
	rowPeriod time.Duration

	sel    rowRange
	hasSel bool

	logger *debug.Logger
}

// SetLogger attaches the shared logger used to report out-of-range
// SetTrack/SetFrame/SetCursor requests.
func (e *Editor) SetLogger(l *debug.Logger) {
	e.logger = l
}

type rowRange struct {
	row0, row1 int
	ch0, ch1   int
}

func (r rowRange) normalized() rowRange {
	if r.row0 > r.row1 {
		r.row0, r.row1 = r.row1, r.row0
	}
	if r.ch0 > r.ch1 {
		r.ch0, r.ch1 = r.ch1, r.ch0
	}
	return r
}

const defaultTempo = 150

// New returns a tracker editor bound to c and host.
func New(c *cart.Cartridge, host vmhost.Host) *Editor {
	return &Editor{cart: c, host: host, follow: true, rowPeriod: tempoToRowPeriod(defaultTempo)}
}

func tempoToRowPeriod(tempo int) time.Duration {
	if tempo <= 0 {
		tempo = defaultTempo
	}
	return time.Minute / time.Duration(tempo*4)
}

// SetTrack, SetFrame, SetCursor change the tracker's editing position.
func (e *Editor) SetTrack(track int) {
	if track < 0 || track >= cart.TrackCount {
		if e.logger != nil {
			e.logger.LogMusicf(debug.LogLevelWarning, "SetTrack refused: track %d out of range", track)
		}
		return
	}
	e.track = track
}

func (e *Editor) Track() int { return e.track }

func (e *Editor) SetFrame(frame int) {
	if frame < 0 || frame >= cart.FramesPerTrack {
		if e.logger != nil {
			e.logger.LogMusicf(debug.LogLevelWarning, "SetFrame refused: frame %d out of range", frame)
		}
		return
	}
	e.frame = frame
}

func (e *Editor) Frame() int { return e.frame }

func (e *Editor) SetCursor(row, channel int) {
	if row < 0 || row >= cart.PatternRows {
		if e.logger != nil {
			e.logger.LogMusicf(debug.LogLevelWarning, "SetCursor refused: row %d out of range", row)
		}
		return
	}
	if channel < 0 || channel >= cart.ChannelsPerRow {
		if e.logger != nil {
			e.logger.LogMusicf(debug.LogLevelWarning, "SetCursor refused: channel %d out of range", channel)
		}
		return
	}
	e.row, e.channel = row, channel
}

func (e *Editor) Cursor() (row, channel int) { return e.row, e.channel }

// activePatternID returns the pattern id assigned to the active
// track/frame/channel cell, or -1 if none is assigned.
func (e *Editor) activePatternID() int16 {
	return e.cart.Tracks[e.track].Frames[e.frame][e.channel]
}

// activeRow returns the active pattern cell, or nil if no pattern is
// assigned to the active track/frame/channel.
func (e *Editor) activeRow() *cart.Row {
	id := e.activePatternID()
	if id < 0 || int(id) >= cart.PatternCount {
		return nil
	}
	return &e.cart.Patterns[id][e.row][e.channel]
}

// AssignPattern sets the pattern id for the active track/frame/channel
// cell. A negative id clears the cell ("no pattern").
func (e *Editor) AssignPattern(id int16) {
	e.cart.Tracks[e.track].Frames[e.frame][e.channel] = id
}

// SetNote writes note/octave/sfx/command/params into the active row's
// cell, allocating nothing: the pattern must already be assigned via
// AssignPattern.
func (e *Editor) SetNote(row cart.Row) bool {
	cell := e.activeRow()
	if cell == nil {
		return false
	}
	*cell = row
	return true
}

// ClearNote resets the active cell to an empty row.
func (e *Editor) ClearNote() bool {
	return e.SetNote(cart.Row{})
}

// ToggleMute flips the mute flag for the given channel.
func (e *Editor) ToggleMute(channel int) {
	if channel < 0 || channel >= cart.ChannelsPerRow {
		return
	}
	e.mute[channel] = !e.mute[channel]
}

func (e *Editor) Muted(channel int) bool {
	if channel < 0 || channel >= cart.ChannelsPerRow {
		return false
	}
	return e.mute[channel]
}

// SetFollow toggles follow-play, which advances SetCursor's row to track
// playback while a track is playing.
func (e *Editor) SetFollow(on bool) { e.follow = on }
func (e *Editor) Follow() bool      { return e.follow }

// PlayFrame begins playback of the active frame only, looping at its end.
func (e *Editor) PlayFrame() {
	e.state = PlayingFrame
	e.playRow = 0
	e.tickAccum = 0
}

// PlayTrack begins playback advancing through frames in sequence.
func (e *Editor) PlayTrack() {
	e.state = PlayingTrack
	e.playRow = 0
	e.tickAccum = 0
}

// Stop halts playback.
func (e *Editor) Stop() {
	e.state = Stopped
	e.host.StopAudio()
}

func (e *Editor) State() PlayState { return e.state }

// Tick advances the play cursor by one row each time rowPeriod elapses.
// rowPeriod is set once by New from the default tempo; a track's Tempo and
// Speed fields do not change it. Implements router.Editor.
func (e *Editor) Tick(dt time.Duration) {
	if e.state == Stopped {
		return
	}
	e.tickAccum += dt
	for e.tickAccum >= e.rowPeriod {
		e.tickAccum -= e.rowPeriod
		e.advanceRow()
	}
}

func (e *Editor) advanceRow() {
	rows := int(cart.PatternRows) - int(e.cart.Tracks[e.track].RowsTrim)
	if rows <= 0 {
		rows = cart.PatternRows
	}
	e.playRow++
	if e.playRow >= rows {
		e.playRow = 0
		if e.state == PlayingTrack {
			e.frame++
			if e.frame >= cart.FramesPerTrack {
				e.frame = 0
			}
		}
	}
	if e.follow {
		e.row = e.playRow
	}
}

// PlayRow returns the row currently sounding during playback.
func (e *Editor) PlayRow() int { return e.playRow }

// Select marks a rectangular row/channel range for copy/clear.
func (e *Editor) Select(row0, ch0, row1, ch1 int) {
	e.sel = rowRange{row0: row0, ch0: ch0, row1: row1, ch1: ch1}
	e.hasSel = true
}

func (e *Editor) ClearSelection() { e.hasSel = false }
func (e *Editor) HasSelection() bool { return e.hasSel }

// CopySelection encodes the selected rows (across the active pattern
// only) as a clipboard hex string. Cells with no pattern assigned encode
// as zeroed rows.
func (e *Editor) CopySelection() string {
	if !e.hasSel {
		return ""
	}
	r := e.sel.normalized()
	var buf []byte
	for row := r.row0; row <= r.row1; row++ {
		for ch := r.ch0; ch <= r.ch1; ch++ {
			id := e.cart.Tracks[e.track].Frames[e.frame][ch]
			var cell cart.Row
			if id >= 0 && int(id) < cart.PatternCount {
				cell = e.cart.Patterns[id][row][ch]
			}
			buf = append(buf, cell.Note, cell.Octave, cell.SFX, cell.Command, cell.Param1, cell.Param2)
		}
	}
	return clipboard.Encode(buf)
}
