//go:build !unix

package zcsv

import (
	"fmt"
	"os"
)

// NewMmapSource reads filename fully into memory and returns it as an
// in-memory Source. Platforms without mmap support fall back to a plain
// read; the API matches the unix build so callers don't need build tags of
// their own.
func NewMmapSource(filename string) (src *sliceSource, close func() error, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return NewSliceSource(data), func() error { return nil }, nil
}
