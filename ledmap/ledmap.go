// Package ledmap builds wiring maps for the IS31FL3741 matrix controller.
//
// A wiring map lists the channel offsets driven by each logical RGB pixel as
// consecutive (red, green, blue) triples. See the package documentation for
// the chip's channel layout.
package ledmap

import (
	"errors"
	"fmt"
)

// Matrix dimensions of the IS31FL3741.
const (
	NumSW = 9  // switch rows SW1..SW9
	NumCS = 39 // current sinks CS1..CS39

	// NumChannels is the number of addressable PWM channels, one byte each.
	NumChannels = NumSW * NumCS
)

// Channel returns the flat channel offset for the crossing of switch row sw
// (1..9) and current sink cs (1..39).
//
// The register file is not a plain 39-column grid: sinks CS1..CS30 occupy
// offsets 0..269 row by row, and sinks CS31..CS39 follow at 270..350 in
// nine-sink rows. Channel panics if either coordinate is out of range.
func Channel(sw, cs int) uint16 {
	if sw < 1 || sw > NumSW {
		panic(fmt.Sprintf("ledmap: switch row %d out of range 1..%d", sw, NumSW))
	}
	if cs < 1 || cs > NumCS {
		panic(fmt.Sprintf("ledmap: current sink %d out of range 1..%d", cs, NumCS))
	}
	if cs <= 30 {
		return uint16((sw-1)*30 + cs - 1)
	}
	return uint16(270 + (sw-1)*9 + cs - 31)
}

// RGB returns the map triple for one pixel whose red, green and blue anodes
// sit on current sinks csR, csG and csB of the same switch row.
func RGB(sw, csR, csG, csB int) []uint16 {
	return []uint16{Channel(sw, csR), Channel(sw, csG), Channel(sw, csB)}
}

// Identity returns a map of consecutive channel triples: pixel 0 drives
// channels 0, 1 and 2, pixel 1 drives 3, 4 and 5, and so on. It panics if
// the pixels do not fit in the channel space.
func Identity(pixels int) []uint16 {
	if pixels < 0 || 3*pixels > NumChannels {
		panic(fmt.Sprintf("ledmap: pixel count %d out of range 0..%d", pixels, NumChannels/3))
	}
	m := make([]uint16, 3*pixels)
	for i := range m {
		m[i] = uint16(i)
	}
	return m
}

// Validate checks that m is a well formed channel map: a whole number of
// (red, green, blue) triples, no longer than the channel space, and every
// entry addressing a valid channel.
func Validate(m []uint16) error {
	if len(m)%3 != 0 {
		return errors.New("ledmap: map length must be a multiple of 3")
	}
	if len(m) > NumChannels {
		return fmt.Errorf("ledmap: map length %d exceeds %d channels", len(m), NumChannels)
	}
	for i, c := range m {
		if c >= NumChannels {
			return fmt.Errorf("ledmap: entry %d references channel %d, valid range is 0..%d", i, c, NumChannels-1)
		}
	}
	return nil
}
