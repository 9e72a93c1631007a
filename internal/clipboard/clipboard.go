// Package clipboard implements the hex codec used to move tile, map, and
// pattern selections through the system clipboard as plain text. Byte
// order matches the cartridge's own packed format bit-for-bit: each byte
// is encoded low-nibble-then-high-nibble rather than the conventional
// high-then-low encoding.Hex produces, so that clips exchanged with other
// tools stay byte-compatible.
package clipboard

import (
	"fmt"

	"tic-editor-core/internal/debug"
)

const hexDigits = "0123456789abcdef"

// logger receives a warning whenever Decode rejects malformed clip text.
var logger *debug.Logger

// SetLogger attaches the shared logger used to report decode failures.
func SetLogger(l *debug.Logger) {
	logger = l
}

// Encode returns the nibble-swapped hex encoding of data: each byte b is
// written as the two characters for (b&0x0F) then (b>>4).
func Encode(data []byte) string {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, hexDigits[b&0x0F], hexDigits[b>>4])
	}
	return string(out)
}

// Decode reverses Encode. It rejects input whose length is odd or that
// contains a non-hex-digit character, returning an error rather than
// silently truncating or zero-filling a partial clip.
func Decode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		err := fmt.Errorf("clipboard: odd-length hex string (%d chars)", len(s))
		logDecodeFailure(err)
		return nil, err
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		lo, err := nibble(s[i*2])
		if err != nil {
			logDecodeFailure(err)
			return nil, err
		}
		hi, err := nibble(s[i*2+1])
		if err != nil {
			logDecodeFailure(err)
			return nil, err
		}
		out[i] = lo | hi<<4
	}
	return out, nil
}

func logDecodeFailure(err error) {
	if logger != nil {
		logger.LogSystemf(debug.LogLevelWarning, "Decode refused: %v", err)
	}
}

func nibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("clipboard: invalid hex digit %q", c)
	}
}
