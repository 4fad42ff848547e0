package tpf

import (
	"math"

	"github.com/k2tools/tpf/aperture"
)

// Sample is one light curve point: the summed flux over the optimal
// photometric aperture at one cadence.
type Sample struct {
	Cadence int
	Time    float64
	Flux    float64
}

// LightCurve sums, for every cadence, the flux over the pixels flagged
// as part of the optimal photometric aperture. Cadences without a valid
// timestamp and pixels reading NaN are skipped.
func (f *File) LightCurve() ([]Sample, error) {
	bits, err := f.Aperture.Decode(aperture.BitAperture)
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(f.Flux))
	for i, grid := range f.Flux {
		if math.IsNaN(f.Time[i]) {
			continue
		}

		var sum float64
		for r, row := range grid {
			for c, v := range row {
				if bits[r][c] && !math.IsNaN(float64(v)) {
					sum += float64(v)
				}
			}
		}

		samples = append(samples, Sample{Cadence: i, Time: f.Time[i], Flux: sum})
	}

	return samples, nil
}
