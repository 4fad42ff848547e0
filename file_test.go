package tpf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/k2tools/tpf/aperture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockSize = 2880

func pad(b []byte) []byte {
	if mod := len(b) % blockSize; mod > 0 {
		b = append(b, bytes.Repeat([]byte{0x00}, blockSize-mod)...)
	}
	return b
}

func headerBlock(cards ...string) []byte {
	b := bytes.Repeat([]byte{' '}, blockSize)
	for i, c := range cards {
		copy(b[i*80:], c)
	}
	return b
}

func card(key, value string) string {
	return fmt.Sprintf("%-8s= %20s / no comment", key, value)
}

func str(s string) string {
	return fmt.Sprintf("'%-8s'", s)
}

// fixture builds a minimal but standard-conforming target pixel file:
// a header-only primary HDU, a binary table with TIME, FLUX and
// RAW_CNTS columns, and the aperture image extension.
type fixture struct {
	rows, cols int
	fluxForm   string
	times      []float64
	flux       [][]float32
	raw        [][]int32
	mask       []int32
}

func (fx fixture) bytes(t *testing.T) []byte {
	t.Helper()

	cells := len(fx.flux[0])
	rowLen := 8 + 4*cells + 4*cells

	out := headerBlock(
		card("SIMPLE", "T"),
		card("BITPIX", "8"),
		card("NAXIS", "0"),
		card("KEPLERID", "201563462"),
		"END",
	)

	out = append(out, headerBlock(
		card("XTENSION", str("BINTABLE")),
		card("BITPIX", "8"),
		card("NAXIS", "2"),
		card("NAXIS1", fmt.Sprint(rowLen)),
		card("NAXIS2", fmt.Sprint(len(fx.times))),
		card("PCOUNT", "0"),
		card("GCOUNT", "1"),
		card("TFIELDS", "3"),
		card("TTYPE1", str("TIME")),
		card("TFORM1", str("D")),
		card("TTYPE2", str("FLUX")),
		card("TFORM2", str(fx.fluxForm)),
		card("TTYPE3", str("RAW_CNTS")),
		card("TFORM3", str(fmt.Sprintf("%dJ", cells))),
		"END",
	)...)

	data := new(bytes.Buffer)
	for i, tm := range fx.times {
		require.NoError(t, binary.Write(data, binary.BigEndian, tm))
		require.NoError(t, binary.Write(data, binary.BigEndian, fx.flux[i]))
		require.NoError(t, binary.Write(data, binary.BigEndian, fx.raw[i]))
	}
	out = append(out, pad(data.Bytes())...)

	out = append(out, headerBlock(
		card("XTENSION", str("IMAGE")),
		card("BITPIX", "32"),
		card("NAXIS", "2"),
		card("NAXIS1", fmt.Sprint(fx.cols)),
		card("NAXIS2", fmt.Sprint(fx.rows)),
		card("PCOUNT", "0"),
		card("GCOUNT", "1"),
		"END",
	)...)

	data = new(bytes.Buffer)
	require.NoError(t, binary.Write(data, binary.BigEndian, fx.mask))
	return append(out, pad(data.Bytes())...)
}

var nan32 = float32(math.NaN())

func testFixture() fixture {
	return fixture{
		rows:     2,
		cols:     3,
		fluxForm: "6E",
		times:    []float64{100.5, 101.5, math.NaN()},
		flux: [][]float32{
			{1, 2, 3, 4, 5, 6},
			{1, nan32, 3, 4, 5, 6},
			{1, 2, 3, 4, 5, 6},
		},
		raw: [][]int32{
			{10, 20, 30, 40, 50, 60},
			{11, 21, 31, 41, 51, 61},
			{12, 22, 32, 42, 52, 62},
		},
		mask: []int32{1, 3, 3, 0, 3, 2},
	}
}

func TestRead(t *testing.T) {
	f, err := Read(bytes.NewReader(testFixture().bytes(t)))
	require.NoError(t, err)

	rows, cols := f.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, f.NumCadences())
	assert.Equal(t, 201563462, f.KeplerID())

	assert.Equal(t, 100.5, f.Time[0])
	assert.Equal(t, 101.5, f.Time[1])
	assert.True(t, math.IsNaN(f.Time[2]))

	assert.Equal(t, aperture.Mask{{1, 3, 3}, {0, 3, 2}}, f.Aperture)
}

func TestReadFlux(t *testing.T) {
	f, err := Read(bytes.NewReader(testFixture().bytes(t)))
	require.NoError(t, err)

	grid, err := f.FluxAt(0)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, grid)

	grid, err = f.FluxAt(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(grid[0][1])))

	_, err = f.FluxAt(3)
	assert.Error(t, err)

	_, err = f.FluxAt(-1)
	assert.Error(t, err)
}

func TestReadRawCounts(t *testing.T) {
	f, err := Read(bytes.NewReader(testFixture().bytes(t)))
	require.NoError(t, err)

	grid, err := f.RawCountsAt(2)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{12, 22, 32}, {42, 52, 62}}, grid)
}

func TestReadShapeMismatch(t *testing.T) {
	fx := fixture{
		rows:     2,
		cols:     3,
		fluxForm: "4E",
		times:    []float64{100.5},
		flux:     [][]float32{{1, 2, 3, 4}},
		raw:      [][]int32{{10, 20, 30, 40}},
		mask:     []int32{1, 3, 3, 0, 3, 2},
	}

	_, err := Read(bytes.NewReader(fx.bytes(t)))
	require.Error(t, err)

	var serr *ShapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, serr.WantRows)
	assert.Equal(t, 3, serr.WantCols)
	assert.Equal(t, 4, serr.Cells)
}

func TestReadNoTable(t *testing.T) {
	out := headerBlock(
		card("SIMPLE", "T"),
		card("BITPIX", "8"),
		card("NAXIS", "0"),
		"END",
	)

	_, err := Read(bytes.NewReader(out))
	assert.Error(t, err)
}

func TestLightCurveFromFile(t *testing.T) {
	f, err := Read(bytes.NewReader(testFixture().bytes(t)))
	require.NoError(t, err)

	samples, err := f.LightCurve()
	require.NoError(t, err)

	// The third cadence has no timestamp; the in-aperture pixels are
	// those with bit 1 set, so values 3, 3, 3 and 2 of the mask.
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{Cadence: 0, Time: 100.5, Flux: 16}, samples[0])
	assert.Equal(t, Sample{Cadence: 1, Time: 101.5, Flux: 14}, samples[1])
}
