package cart

import "testing"

func TestSetCodeZeroFillsTail(t *testing.T) {
	c := New()
	if !c.SetCode([]byte("hello")) {
		t.Fatalf("expected SetCode to succeed")
	}
	if got := c.CodeLen(); got != 5 {
		t.Errorf("CodeLen() = %d, want 5", got)
	}
	for i := 5; i < len(c.Code); i++ {
		if c.Code[i] != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, c.Code[i])
			break
		}
	}

	if !c.SetCode([]byte("hi")) {
		t.Fatalf("expected SetCode to succeed")
	}
	if got := c.CodeLen(); got != 2 {
		t.Errorf("CodeLen() after shrink = %d, want 2", got)
	}
	if c.Code[2] != 0 {
		t.Errorf("byte 2 not zeroed after shrink")
	}
}

func TestSetCodeRefusesOverCapacity(t *testing.T) {
	c := New()
	oversize := make([]byte, CodeSize)
	for i := range oversize {
		oversize[i] = 'x'
	}
	if c.SetCode(oversize) {
		t.Fatalf("expected SetCode to refuse a payload that does not fit")
	}
	if c.CodeLen() != 0 {
		t.Errorf("cartridge mutated despite refused SetCode")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New()
	c.SetCode([]byte("function main()\n  return 0\nend\n"))
	c.Map[0] = 5
	c.Map[MapCells-1] = 9
	c.Tiles[0][3][0] = 0xAB
	c.Tiles[1][255][31] = 0xCD
	c.Palette[1] = RGB{R: 10, G: 20, B: 30}
	c.Waveforms[2][0] = 0xF
	c.SFX[0].Ticks[0] = SFXTick{Wave: 7, Volume: 15, Arp: 1, Pitch: -3}
	c.SFX[0].VolumeLoop = Loop{Start: 2, Size: 4}
	c.Patterns[1][0][0] = Row{Note: 1, Octave: 4, SFX: 2, Command: 3, Param1: 4, Param2: 5}
	c.Tracks[0].Frames[0][0] = 1
	c.Tracks[0].Tempo = 120
	c.Tracks[0].Speed = 6
	c.Cover = []byte("GIF89a...")

	data := Save(c)
	round := Load(data)

	if round.CodeLen() != c.CodeLen() || string(round.Code[:round.CodeLen()]) != string(c.Code[:c.CodeLen()]) {
		t.Errorf("code did not round-trip")
	}
	if round.Map != c.Map {
		t.Errorf("map did not round-trip")
	}
	if round.Tiles != c.Tiles {
		t.Errorf("tiles did not round-trip")
	}
	if round.Palette != c.Palette {
		t.Errorf("palette did not round-trip")
	}
	if round.Waveforms != c.Waveforms {
		t.Errorf("waveforms did not round-trip")
	}
	if round.SFX[0] != c.SFX[0] {
		t.Errorf("sfx did not round-trip: got %+v want %+v", round.SFX[0], c.SFX[0])
	}
	if round.Patterns[1][0][0] != c.Patterns[1][0][0] {
		t.Errorf("pattern row did not round-trip")
	}
	if round.Tracks[0] != c.Tracks[0] {
		t.Errorf("track did not round-trip")
	}
	if string(round.Cover) != string(c.Cover) {
		t.Errorf("cover did not round-trip")
	}
}

func TestLoadSkipsUnknownTag(t *testing.T) {
	// A single chunk with an unrecognized tag value should be skipped
	// without corrupting the rest of the stream.
	data := []byte{
		15, 2, 0, 0, 0xAA, 0xBB, // tag 15 is unassigned, 2-byte payload
		byte(TagDefault), 0, 0, 0,
	}
	c := Load(data)
	if c.CodeLen() != 0 {
		t.Errorf("expected no mutation from an unrecognized chunk")
	}
}

func TestLoadStopsOnTruncatedChunk(t *testing.T) {
	data := []byte{byte(TagCode), 10, 0, 0, 'h', 'i'} // declares 10 bytes, only 2 present
	c := Load(data)
	if c.CodeLen() != 0 {
		t.Errorf("truncated chunk should not be applied")
	}
}
