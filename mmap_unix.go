//go:build unix

package zcsv

import (
	"fmt"
	"os"
	"syscall"
)

// NewMmapSource memory-maps filename and returns an in-memory Source (the
// same zero-copy semantics as NewSliceSource) backed directly by the
// mapped pages, plus a close function that must be called once the
// Iterator built over it is no longer needed. The OS pages the file in on
// demand, so this is the cheapest way to iterate a file much larger than
// would be comfortable to read fully into a heap-allocated slice.
//
// The mapping is private and writable (copy-on-write): sliceSource's
// contract is that Field.Unescape mutates its backing slice in place, so a
// read-only or shared mapping would segfault the process the first time a
// caller unescapes a field with a doubled quote. Writes never reach the
// file; the kernel copies the touched page on first write.
//
// Do not call Field.Unescape after close: the mapping may already be gone.
func NewMmapSource(filename string) (src *sliceSource, close func() error, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	size := stat.Size()
	if size == 0 {
		f.Close()
		return NewSliceSource(nil), func() error { return nil }, nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	closeFn := func() error {
		uerr := syscall.Munmap(data)
		cerr := f.Close()
		if uerr != nil {
			return fmt.Errorf("%w: %v", ErrReadFailed, uerr)
		}
		return cerr
	}

	return NewSliceSource(data), closeFn, nil
}
