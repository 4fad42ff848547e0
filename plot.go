package tpf

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func defaultName(f *File) string {
	return fmt.Sprintf("EPIC %d", f.KeplerID())
}

// PlotLightCurve renders the samples as a flux against time line plot
// and saves it to file; the format is derived from the file extension.
func PlotLightCurve(name string, samples []Sample, file string) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "Time (BKJD)"
	p.Y.Label.Text = "Flux (e-/s)"

	xys := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		xys = append(xys, plotter.XY{X: s.Time, Y: s.Flux})
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}

	p.Add(plotter.NewGrid(), line)

	return p.Save(25*vg.Centimeter, 10*vg.Centimeter, file)
}
