package tpf

import (
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// Fetch downloads the resource at url to the given path with a single
// blocking GET. There are no retries and no partial results: on any
// failure the destination file is removed.
func Fetch(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching %s: %s", url, resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "writing %s", path)
	}

	return f.Close()
}
