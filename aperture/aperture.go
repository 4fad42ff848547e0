/*
Package aperture decodes Kepler/K2 aperture bitmasks.

The aperture extension of a target pixel file is a 2-D grid of integers,
one per pixel of the stamp. Each integer is a bitmask flagging per-pixel
properties: the least-significant bit records whether the pixel was
collected by the spacecraft, the next bit whether it belongs to the
optimal photometric aperture, and so on. Bits are independent between
pixels; decoding one bit position across the grid yields a same-shaped
boolean grid suitable for rendering as a two-color image.
*/
package aperture

import (
	"fmt"
	"strconv"
)

// Bit positions within a pixel's mask value, counted from the
// least-significant bit. The mission documentation numbers these from
// one ("bit 1 = collected"); positions here are zero-based.
const (
	BitCollected = iota // collected by the spacecraft
	BitAperture         // in the optimal photometric aperture
	BitCentroid         // used in the flux-weighted centroid
	BitPSF              // used in the PSF centroid
)

// InvalidValueError reports a negative mask value, which has no defined
// bit decomposition. Row and Col are -1 when the value did not come from
// a grid.
type InvalidValueError struct {
	Value    int64
	Row, Col int
}

func (e *InvalidValueError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("aperture: invalid negative mask value %d", e.Value)
	}
	return fmt.Sprintf("aperture: invalid negative mask value %d at (%d, %d)", e.Value, e.Row, e.Col)
}

// BinaryString returns the minimal-width binary digit string for v, so 3
// yields "11" and 0 yields "0". It fails on negative values.
func BinaryString(v int64) (string, error) {
	if v < 0 {
		return "", &InvalidValueError{Value: v, Row: -1, Col: -1}
	}
	return strconv.FormatInt(v, 2), nil
}

// BitSet reports whether bit number bit, counted from the
// least-significant bit, is set in v. Positions at or beyond the binary
// width of v are simply unset, so any bit may be queried against any
// non-negative value, including 0 and 1. It fails on negative values.
func BitSet(v int64, bit uint) (bool, error) {
	if v < 0 {
		return false, &InvalidValueError{Value: v, Row: -1, Col: -1}
	}
	return v>>bit&1 == 1, nil
}

// Mask is the aperture extension image: one bitmask value per pixel of
// the stamp, indexed [row][column].
type Mask [][]int32

// Shape returns the grid dimensions as (rows, columns).
func (m Mask) Shape() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Decode tests the given bit position in every pixel of the mask and
// returns a grid of the same shape. If any pixel holds a negative value
// no output is produced at all.
func (m Mask) Decode(bit uint) ([][]bool, error) {
	for i, row := range m {
		for j, v := range row {
			if v < 0 {
				return nil, &InvalidValueError{Value: int64(v), Row: i, Col: j}
			}
		}
	}

	out := make([][]bool, len(m))
	for i, row := range m {
		out[i] = make([]bool, len(row))
		for j, v := range row {
			set, err := BitSet(int64(v), bit)
			if err != nil {
				return nil, err
			}
			out[i][j] = set
		}
	}
	return out, nil
}
