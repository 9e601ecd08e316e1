// Package filesystem holds the afero backend every other package reads and writes through.
//
// Tests swap it for an in-memory backend with SetMemMapFs.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs switches back to the operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a fresh in-memory filesystem.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// ReadIfExists returns the file contents, or ok=false when the file is absent.
func ReadIfExists(path string) (data []byte, ok bool, err error) {
	exists, err := backend.Exists(path)
	if err != nil || !exists {
		return nil, false, err
	}

	data, err = backend.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
