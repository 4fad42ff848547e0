package tpf

import (
	"fmt"
	"io"
	"os"

	"github.com/k2tools/tpf/aperture"
	"github.com/pkg/errors"
	"github.com/siravan/fits"
)

// ShapeError reports a cadence grid whose dimensions do not match the
// aperture extension.
type ShapeError struct {
	Cadence            int
	WantRows, WantCols int
	Cells              int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tpf: cadence %d has %d cells, aperture is %dx%d", e.Cadence, e.Cells, e.WantRows, e.WantCols)
}

// File holds the contents of a target pixel file: the primary header,
// the per-cadence time and pixel readouts from the binary table, and
// the aperture extension. All fields are fixed once read.
type File struct {
	Keys      map[string]interface{}
	Time      []float64
	Flux      [][][]float32
	RawCounts [][][]int32
	Aperture  aperture.Mask

	rows, cols int
}

// Open reads the target pixel file at the given path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	file, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return file, nil
}

// Read parses a target pixel file from r. It expects the standard layout:
// a primary header, a binary table with at least the TIME and FLUX
// columns, and an image extension holding the aperture bitmask. Every
// cadence grid must match the aperture's dimensions.
func Read(r io.Reader) (*File, error) {
	units, err := fits.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing FITS")
	}
	if len(units) == 0 {
		return nil, errors.New("no HDUs found")
	}

	var table, ap *fits.Unit
	for _, u := range units[1:] {
		switch {
		case table == nil && u.HasTable():
			table = u
		case ap == nil && u.HasImage():
			ap = u
		}
	}
	if table == nil {
		return nil, errors.New("no binary table extension found")
	}
	if ap == nil {
		return nil, errors.New("no aperture image extension found")
	}
	if len(ap.Naxis) != 2 {
		return nil, errors.Errorf("aperture extension has %d axes, want 2", len(ap.Naxis))
	}

	f := &File{
		Keys: units[0].Keys,
		cols: ap.Naxis[0],
		rows: ap.Naxis[1],
	}

	f.Aperture = make(aperture.Mask, f.rows)
	for i := 0; i < f.rows; i++ {
		f.Aperture[i] = make([]int32, f.cols)
		for j := 0; j < f.cols; j++ {
			f.Aperture[i][j] = int32(ap.IntAt(j, i))
		}
	}

	if err := f.loadTable(table); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) loadTable(table *fits.Unit) error {
	timeFn := table.Field("TIME")
	fluxFn := table.Field("FLUX")
	rawFn := table.Field("RAW_CNTS")

	cadences := table.Naxis[1]

	for i := 0; i < cadences; i++ {
		t, ok := timeFn(i).(float64)
		if !ok {
			return errors.Errorf("missing or malformed TIME column at row %d", i)
		}
		f.Time = append(f.Time, t)

		flux, err := f.grid(i, fluxFn(i))
		if err != nil {
			return err
		}
		f.Flux = append(f.Flux, flux)

		// RAW_CNTS is not present in every product.
		if raw, ok := rawFn(i).([]int32); ok {
			if len(raw) != f.rows*f.cols {
				return &ShapeError{Cadence: i, WantRows: f.rows, WantCols: f.cols, Cells: len(raw)}
			}
			grid := make([][]int32, f.rows)
			for r := 0; r < f.rows; r++ {
				grid[r] = raw[r*f.cols : (r+1)*f.cols]
			}
			f.RawCounts = append(f.RawCounts, grid)
		}
	}

	return nil
}

// grid reshapes one FLUX table cell into a rows x cols grid. The FITS
// array is stored with the column axis varying fastest, matching the
// aperture image layout.
func (f *File) grid(cadence int, v interface{}) ([][]float32, error) {
	var flat []float32
	switch x := v.(type) {
	case []float32:
		flat = x
	case float32: // single-pixel stamp
		flat = []float32{x}
	default:
		return nil, errors.Errorf("missing or malformed FLUX column at row %d", cadence)
	}

	if len(flat) != f.rows*f.cols {
		return nil, &ShapeError{Cadence: cadence, WantRows: f.rows, WantCols: f.cols, Cells: len(flat)}
	}

	grid := make([][]float32, f.rows)
	for r := 0; r < f.rows; r++ {
		grid[r] = flat[r*f.cols : (r+1)*f.cols]
	}
	return grid, nil
}

// Shape returns the pixel stamp dimensions as (rows, columns).
func (f *File) Shape() (int, int) {
	return f.rows, f.cols
}

// NumCadences returns the number of rows in the binary table.
func (f *File) NumCadences() int {
	return len(f.Time)
}

// FluxAt returns the calibrated flux grid for one cadence.
func (f *File) FluxAt(i int) ([][]float32, error) {
	if i < 0 || i >= len(f.Flux) {
		return nil, errors.Errorf("cadence index %d out of range [0, %d)", i, len(f.Flux))
	}
	return f.Flux[i], nil
}

// RawCountsAt returns the raw counts grid for one cadence, if the file
// carried a RAW_CNTS column.
func (f *File) RawCountsAt(i int) ([][]int32, error) {
	if i < 0 || i >= len(f.RawCounts) {
		return nil, errors.Errorf("cadence index %d out of range [0, %d)", i, len(f.RawCounts))
	}
	return f.RawCounts[i], nil
}

// KeplerID returns the target identifier from the primary header, or 0
// if the header does not carry one.
func (f *File) KeplerID() int {
	id, _ := f.Keys["KEPLERID"].(int)
	return id
}
