/*
Package tpf is a library for reading and inspecting K2 mission target
pixel files.
*/
package tpf

import "log"

type K2 struct {
	db     *LightCurveDB
	logger *log.Logger
}

func New(db string, logger *log.Logger) (*K2, error) {
	l, err := NewLightCurveDB(db)
	if err != nil {
		return nil, err
	}
	return &K2{
		db:     l,
		logger: logger,
	}, nil
}

// Export extracts the light curve from f and stores it under the given
// target name, or under "EPIC <KEPLERID>" if name is empty.
func (k *K2) Export(name string, f *File) error {
	if name == "" {
		name = defaultName(f)
	}

	samples, err := f.LightCurve()
	if err != nil {
		return err
	}

	k.logger.Printf("storing %d samples for %s", len(samples), name)

	return k.db.Store(name, samples)
}

func (k *K2) Close() error {
	return k.db.Close()
}
