/*
Package render turns target pixel file grids into images.

A pixel stamp is tiny, typically on the order of ten pixels a side, so
every function takes a scale factor that magnifies each stamp cell into
a square block of output pixels. Flux grids become grayscale frames
scaled between the smallest and largest finite values in the grid;
decoded aperture bit grids become two-color images.
*/
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
)

var errNoFrames = errors.New("render: no frames")

var maskPalette = color.Palette{
	color.RGBA{0x10, 0x10, 0x30, 0xff}, // unset
	color.RGBA{0xff, 0xd7, 0x00, 0xff}, // set
}

// Frame renders one cadence grid as a grayscale image, darkest at the
// smallest finite flux and brightest at the largest. NaN pixels, which
// mark uncollected parts of the stamp, render black.
func Frame(grid [][]float32, scale int) *image.Gray16 {
	if scale < 1 {
		scale = 1
	}

	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}

	min, max := gridRange(grid)
	spread := max - min
	if spread <= 0 {
		spread = 1
	}

	m := image.NewGray16(image.Rect(0, 0, cols*scale, rows*scale))
	for r, row := range grid {
		for c, v := range row {
			var y uint16
			if x := float64(v); !math.IsNaN(x) {
				y = uint16((x - min) / spread * math.MaxUint16)
			}
			fill(m, c*scale, r*scale, scale, color.Gray16{Y: y})
		}
	}
	return m
}

// MaskImage renders a decoded aperture bit grid as a two-color image:
// gold where the bit is set, dark blue where it is not.
func MaskImage(bits [][]bool, scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}

	rows := len(bits)
	cols := 0
	if rows > 0 {
		cols = len(bits[0])
	}

	m := image.NewPaletted(image.Rect(0, 0, cols*scale, rows*scale), maskPalette)
	for r, row := range bits {
		for c, set := range row {
			if !set {
				continue
			}
			for y := 0; y < scale; y++ {
				for x := 0; x < scale; x++ {
					m.SetColorIndex(c*scale+x, r*scale+y, 1)
				}
			}
		}
	}
	return m
}

// Animate writes the cadence grids to w as an animated GIF with the
// given inter-frame delay in hundredths of a second. All frames share
// one brightness scale so flux changes are visible across cadences.
func Animate(w io.Writer, frames [][][]float32, scale, delay int) error {
	if len(frames) == 0 {
		return errNoFrames
	}

	min, max := gridRange(frames[0])
	for _, grid := range frames[1:] {
		lo, hi := gridRange(grid)
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
	}
	spread := max - min
	if spread <= 0 {
		spread = 1
	}

	q := quantize.MedianCutQuantizer{}

	g := &gif.GIF{}
	for _, grid := range frames {
		if scale < 1 {
			scale = 1
		}
		rows := len(grid)
		cols := 0
		if rows > 0 {
			cols = len(grid[0])
		}

		m := image.NewGray16(image.Rect(0, 0, cols*scale, rows*scale))
		for r, row := range grid {
			for c, v := range row {
				var y uint16
				if x := float64(v); !math.IsNaN(x) {
					y = uint16((x - min) / spread * math.MaxUint16)
				}
				fill(m, c*scale, r*scale, scale, color.Gray16{Y: y})
			}
		}

		pm := image.NewPaletted(m.Bounds(), q.Quantize(make(color.Palette, 0, 256), m))
		draw.Draw(pm, m.Bounds(), m, m.Bounds().Min, draw.Src)

		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
	}

	return gif.EncodeAll(w, g)
}

func fill(m *image.Gray16, x0, y0, scale int, c color.Gray16) {
	for y := 0; y < scale; y++ {
		for x := 0; x < scale; x++ {
			m.SetGray16(x0+x, y0+y, c)
		}
	}
}

// gridRange returns the smallest and largest finite values in the grid.
func gridRange(grid [][]float32) (min, max float64) {
	min = math.MaxFloat64
	max = -math.MaxFloat64
	for _, row := range grid {
		for _, v := range row {
			x := float64(v)
			if math.IsNaN(x) {
				continue
			}
			if x < min {
				min = x
			}
			if x > max {
				max = x
			}
		}
	}
	return
}
