package cart

import (
	"encoding/binary"
	"fmt"

	"tic-editor-core/internal/debug"
)

// Chunk tags for the cartridge file format. Each header packs
// {tag:5 bits, bank:3 bits, size:16 bits, reserved:8 bits} exactly as
// internal/rom.ROMBuilder packs its own fixed-width header fields with
// binary.LittleEndian.
type Tag uint8

const (
	TagTiles Tag = iota
	TagSprites
	TagMap
	TagCode
	TagFlags
	TagSamples
	TagWaveform
	TagPalette
	TagPatterns
	TagMusic
	TagCover
	TagDefault Tag = 31
)

const chunkHeaderSize = 4 // 1 byte tag+bank, 2 bytes size, 1 byte reserved

// Load zero-initializes the cartridge and then applies every chunk found in
// data, copying at most min(size, region capacity) bytes per chunk.
// Unknown tags are skipped. Loading never fails on a malformed or truncated
// trailing chunk: the loader simply stops applying chunks, leaving the
// rest of the cartridge's state untouched with no user-visible error.
func Load(data []byte) *Cartridge {
	c := New()
	off := 0
	for off+chunkHeaderSize <= len(data) {
		tagAndBank := data[off]
		tag := Tag(tagAndBank & 0x1F)
		bank := (tagAndBank >> 5) & 0x7
		size := int(binary.LittleEndian.Uint16(data[off+1 : off+3]))
		off += chunkHeaderSize

		if tag == TagDefault {
			break
		}
		if off+size > len(data) {
			if logger != nil {
				logger.LogSystemf(debug.LogLevelWarning, "Load: truncated chunk (tag %d, want %d bytes, %d remain): stopping decode", tag, size, len(data)-off)
			}
			break
		}
		payload := data[off : off+size]
		applyChunk(c, tag, bank, payload)
		off += size
	}
	return c
}

func applyChunk(c *Cartridge, tag Tag, bank uint8, payload []byte) {
	switch tag {
	case TagTiles, TagSprites:
		if int(bank) >= BanksPerSheet {
			if logger != nil {
				logger.LogSpritef(debug.LogLevelWarning, "Load: chunk bank %d out of range (max %d): skipping", bank, BanksPerSheet-1)
			}
			return
		}
		copyTilesIn(&c.Tiles[bank], payload)
	case TagMap:
		copyMin(c.Map[:], payload)
	case TagPalette:
		n := len(payload) / 3
		if n > PaletteSize {
			n = PaletteSize
		}
		for i := 0; i < n; i++ {
			c.Palette[i] = RGB{R: payload[i*3], G: payload[i*3+1], B: payload[i*3+2]}
		}
	case TagCode:
		c.SetCode(payload)
	case TagCover:
		c.Cover = append([]byte(nil), payload...)
	case TagSamples:
		applySamples(c, payload)
	case TagWaveform:
		copyWaveformsIn(&c.Waveforms, payload)
	case TagPatterns:
		applyPatterns(c, int(bank)*patternsPerBank, payload)
	case TagMusic:
		applyTracks(c, payload)
	case TagFlags:
		// No per-region flags are modeled by this editor core; the chunk
		// is recognized (not "unknown") but has nowhere to land.
	default:
		// Unknown tag: skip.
	}
}

func copyMin(dst []byte, src []byte) {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, src[:n])
}

func copyTilesIn(bank *[TilesPerBank]Tile, payload []byte) {
	for i := 0; i < TilesPerBank; i++ {
		off := i * TileBytes
		if off >= len(payload) {
			return
		}
		end := off + TileBytes
		if end > len(payload) {
			end = len(payload)
		}
		copy(bank[i][:], payload[off:end])
	}
}

func tilesOut(bank *[TilesPerBank]Tile) []byte {
	out := make([]byte, TilesPerBank*TileBytes)
	for i := 0; i < TilesPerBank; i++ {
		copy(out[i*TileBytes:], bank[i][:])
	}
	return out
}

func copyWaveformsIn(w *[WaveformCount]Waveform, payload []byte) {
	for i := 0; i < WaveformCount; i++ {
		off := i * WaveformSamples
		if off >= len(payload) {
			return
		}
		end := off + WaveformSamples
		if end > len(payload) {
			end = len(payload)
		}
		copy(w[i][:], payload[off:end])
	}
}

func waveformsOut(w *[WaveformCount]Waveform) []byte {
	out := make([]byte, WaveformCount*WaveformSamples)
	for i := 0; i < WaveformCount; i++ {
		copy(out[i*WaveformSamples:], w[i][:])
	}
	return out
}

func applySamples(c *Cartridge, payload []byte) {
	const sfxBytes = SFXTicks*4 + 3*2 + 1 + 1 + 1 + 1
	n := len(payload) / sfxBytes
	if n > SFXCount {
		n = SFXCount
	}
	for i := 0; i < n; i++ {
		s := payload[i*sfxBytes : (i+1)*sfxBytes]
		decodeSFX(&c.SFX[i], s)
	}
}

func decodeSFX(s *SFX, b []byte) {
	for t := 0; t < SFXTicks; t++ {
		o := t * 4
		s.Ticks[t] = SFXTick{Wave: b[o], Volume: b[o+1], Arp: b[o+2], Pitch: int8(b[o+3])}
	}
	o := SFXTicks * 4
	s.VolumeLoop = Loop{Start: b[o], Size: b[o+1]}
	s.ArpLoop = Loop{Start: b[o+2], Size: b[o+3]}
	s.PitchLoop = Loop{Start: b[o+4], Size: b[o+5]}
	s.Speed = int8(b[o+6])
	s.Octave = b[o+7]
	s.Note = b[o+8]
	flags := b[o+9]
	s.StereoLeft = flags&0x1 != 0
	s.StereoRight = flags&0x2 != 0
}

func encodeSFX(s *SFX) []byte {
	const sfxBytes = SFXTicks*4 + 3*2 + 1 + 1 + 1 + 1
	b := make([]byte, sfxBytes)
	for t := 0; t < SFXTicks; t++ {
		o := t * 4
		tk := s.Ticks[t]
		b[o], b[o+1], b[o+2], b[o+3] = tk.Wave, tk.Volume, tk.Arp, byte(tk.Pitch)
	}
	o := SFXTicks * 4
	b[o], b[o+1] = s.VolumeLoop.Start, s.VolumeLoop.Size
	b[o+2], b[o+3] = s.ArpLoop.Start, s.ArpLoop.Size
	b[o+4], b[o+5] = s.PitchLoop.Start, s.PitchLoop.Size
	b[o+6] = byte(s.Speed)
	b[o+7] = s.Octave
	b[o+8] = s.Note
	var flags byte
	if s.StereoLeft {
		flags |= 0x1
	}
	if s.StereoRight {
		flags |= 0x2
	}
	b[o+9] = flags
	return b
}

const rowBytes = 6

// patternsPerBank is the number of patterns carried by one TagPatterns
// chunk; the chunk's bank field selects which run of patterns it holds.
const patternsPerBank = PatternCount / 8

func applyPatterns(c *Cartridge, start int, payload []byte) {
	const patternBytes = PatternRows * ChannelsPerRow * rowBytes
	n := len(payload) / patternBytes
	if n > PatternCount-start {
		n = PatternCount - start
	}
	for p := 0; p < n; p++ {
		base := p * patternBytes
		for r := 0; r < PatternRows; r++ {
			for ch := 0; ch < ChannelsPerRow; ch++ {
				o := base + (r*ChannelsPerRow+ch)*rowBytes
				row := payload[o : o+rowBytes]
				c.Patterns[start+p][r][ch] = Row{
					Note: row[0], Octave: row[1], SFX: row[2],
					Command: row[3], Param1: row[4], Param2: row[5],
				}
			}
		}
	}
}

func encodePatterns(c *Cartridge) []byte {
	const patternBytes = PatternRows * ChannelsPerRow * rowBytes
	out := make([]byte, PatternCount*patternBytes)
	for p := 0; p < PatternCount; p++ {
		base := p * patternBytes
		for r := 0; r < PatternRows; r++ {
			for ch := 0; ch < ChannelsPerRow; ch++ {
				o := base + (r*ChannelsPerRow+ch)*rowBytes
				row := c.Patterns[p][r][ch]
				out[o], out[o+1], out[o+2] = row.Note, row.Octave, row.SFX
				out[o+3], out[o+4], out[o+5] = row.Command, row.Param1, row.Param2
			}
		}
	}
	return out
}

const trackBytes = FramesPerTrack*ChannelsPerRow*2 + 2 + 2 + 1

func applyTracks(c *Cartridge, payload []byte) {
	n := len(payload) / trackBytes
	if n > TrackCount {
		n = TrackCount
	}
	for t := 0; t < n; t++ {
		b := payload[t*trackBytes : (t+1)*trackBytes]
		var tr Track
		o := 0
		for f := 0; f < FramesPerTrack; f++ {
			for ch := 0; ch < ChannelsPerRow; ch++ {
				tr.Frames[f][ch] = int16(binary.LittleEndian.Uint16(b[o : o+2]))
				o += 2
			}
		}
		tr.Tempo = int(int16(binary.LittleEndian.Uint16(b[o : o+2])))
		o += 2
		tr.Speed = int(int16(binary.LittleEndian.Uint16(b[o : o+2])))
		o += 2
		tr.RowsTrim = b[o]
		c.Tracks[t] = tr
	}
}

func encodeTracks(c *Cartridge) []byte {
	out := make([]byte, TrackCount*trackBytes)
	for t := 0; t < TrackCount; t++ {
		b := out[t*trackBytes : (t+1)*trackBytes]
		tr := c.Tracks[t]
		o := 0
		for f := 0; f < FramesPerTrack; f++ {
			for ch := 0; ch < ChannelsPerRow; ch++ {
				binary.LittleEndian.PutUint16(b[o:o+2], uint16(tr.Frames[f][ch]))
				o += 2
			}
		}
		binary.LittleEndian.PutUint16(b[o:o+2], uint16(int16(tr.Tempo)))
		o += 2
		binary.LittleEndian.PutUint16(b[o:o+2], uint16(int16(tr.Speed)))
		o += 2
		b[o] = tr.RowsTrim
	}
	return out
}

// Save emits one chunk per non-empty region, in tag order, terminated by a
// trailing TagDefault chunk. Tiles are written as one chunk per bank and
// patterns as one chunk per patternsPerBank patterns.
func Save(c *Cartridge) []byte {
	var out []byte
	write := func(tag Tag, bank uint8, payload []byte) {
		if len(payload) == 0 {
			return
		}
		if len(payload) > 0xFFFF {
			panic(fmt.Sprintf("cart: chunk %d payload too large: %d bytes", tag, len(payload)))
		}
		header := make([]byte, chunkHeaderSize)
		header[0] = byte(tag) | (bank << 5)
		binary.LittleEndian.PutUint16(header[1:3], uint16(len(payload)))
		out = append(out, header...)
		out = append(out, payload...)
	}

	for bank := 0; bank < BanksPerSheet; bank++ {
		write(TagTiles, uint8(bank), tilesOut(&c.Tiles[bank]))
	}
	if anyNonZero(c.Map[:]) {
		write(TagMap, 0, c.Map[:])
	}
	if n := c.CodeLen(); n > 0 {
		write(TagCode, 0, c.Code[:n])
	}
	write(TagSamples, 0, encodeAllSFX(c))
	write(TagWaveform, 0, waveformsOut(&c.Waveforms))
	write(TagPalette, 0, encodePalette(c))
	patterns := encodePatterns(c)
	step := patternsPerBank * PatternRows * ChannelsPerRow * rowBytes
	for bank := 0; bank*step < len(patterns); bank++ {
		write(TagPatterns, uint8(bank), patterns[bank*step:(bank+1)*step])
	}
	write(TagMusic, 0, encodeTracks(c))
	if len(c.Cover) > 0 {
		write(TagCover, 0, c.Cover)
	}

	// Trailing end-of-stream marker.
	out = append(out, byte(TagDefault), 0, 0, 0)
	return out
}

func encodePalette(c *Cartridge) []byte {
	b := make([]byte, PaletteSize*3)
	for i, rgb := range c.Palette {
		b[i*3], b[i*3+1], b[i*3+2] = rgb.R, rgb.G, rgb.B
	}
	return b
}

func encodeAllSFX(c *Cartridge) []byte {
	var out []byte
	for i := range c.SFX {
		out = append(out, encodeSFX(&c.SFX[i])...)
	}
	return out
}

func anyNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}
