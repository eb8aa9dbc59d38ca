package zcsv

import (
	"fmt"
	"io"
	"os"
)

// defaultBufferSize is used by constructors that do not take an explicit
// buffer size.
const defaultBufferSize = 64 * 1024

// Source is the byte-source capability the Iterator requires: a live
// buffered region that grows at the tail via FillMore and shrinks from the
// front via Toss. Buffered always reports the current live region; its
// index 0 corresponds to the Iterator's current seek position, so any
// offset the Iterator computes relative to a Buffered() call remains valid
// across a later FillMore call even if the Source compacts its storage
// internally (FillMore only ever appends at the logical tail).
type Source interface {
	// Buffered returns the current live, unconsumed region.
	Buffered() []byte
	// Cap returns the total capacity of the underlying buffer. The
	// in-memory slice source reports the length of the whole input, since
	// it never needs to grow.
	Cap() int
	// Toss advances the read cursor by n, discarding those bytes from the
	// front of Buffered().
	Toss(n int)
	// FillMore reads more bytes into the tail of the buffer. It returns
	// io.EOF when the underlying source is exhausted, an error wrapping
	// ErrReadFailed on I/O failure, or nil on success (which may still
	// have advanced zero bytes; callers should call it again).
	FillMore() error
}

// capacityProber is implemented by sources that can distinguish "no more
// data at all" from "more data exists but there is no buffer room for it"
// once their buffer is completely full. The Iterator uses this to tell
// ErrFieldTooLong apart from a final unterminated field.
type capacityProber interface {
	ProbeExhausted() (eof bool, err error)
}

// bufferedSource is the shared implementation behind the from-file-path and
// from-open-handle constructors: a fixed-size buffer read from an io.Reader,
// compacted in place whenever Toss has freed room at the front.
type bufferedSource struct {
	r      io.Reader
	closer io.Closer // non-nil only when this source owns r
	buf    []byte
	seek   int
	end    int
}

func newBufferedSource(r io.Reader, closer io.Closer, bufSize int) *bufferedSource {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &bufferedSource{r: r, closer: closer, buf: make([]byte, bufSize)}
}

// NewFileSource opens path for reading and returns a Source that owns the
// file: closing the Source (via Close) closes the file. bufSize is the
// internal buffer's capacity; 0 selects a default.
func NewFileSource(path string, bufSize int) (*bufferedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return newBufferedSource(f, f, bufSize), nil
}

// NewHandleSource wraps an already-open io.Reader. The caller retains
// ownership: closing the Source does not close r, and r must stay open for
// the Source's lifetime. bufSize is the internal buffer's capacity; 0
// selects a default.
func NewHandleSource(r io.Reader, bufSize int) *bufferedSource {
	return newBufferedSource(r, nil, bufSize)
}

func (s *bufferedSource) Buffered() []byte { return s.buf[s.seek:s.end] }

func (s *bufferedSource) Cap() int { return len(s.buf) }

func (s *bufferedSource) Toss(n int) { s.seek += n }

func (s *bufferedSource) FillMore() error {
	s.compact()
	if s.end >= len(s.buf) {
		return nil
	}
	n, err := s.r.Read(s.buf[s.end:])
	s.end += n
	if n > 0 || err == nil {
		return nil
	}
	if err == io.EOF {
		return io.EOF
	}
	return fmt.Errorf("%w: %v", ErrReadFailed, err)
}

// compact slides the live region down to the start of the buffer,
// reclaiming the space already consumed via Toss. Every offset the
// Iterator tracks is relative to seek, so this is transparent to it.
func (s *bufferedSource) compact() {
	if s.seek == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.seek:s.end])
	s.seek = 0
	s.end = n
}

// ProbeExhausted attempts a single one-byte read once the buffer is full
// and no delimiter has been found, to distinguish a field that is simply
// too long for the buffer from a final field ending exactly at end-of-stream.
func (s *bufferedSource) ProbeExhausted() (bool, error) {
	var scratch [1]byte
	n, err := s.r.Read(scratch[:])
	if n > 0 {
		return false, nil
	}
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return false, nil
}

// Close releases the underlying file if this Source was constructed with
// NewFileSource. It is a no-op for a borrowed handle (NewHandleSource).
func (s *bufferedSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// sliceSource is the in-memory source variant: the caller's slice is the
// buffer. FillMore is always a no-op reporting io.EOF, and because the
// buffer never shifts, Fields yielded from a sliceSource remain valid
// indefinitely (Unescape excepted: it mutates the slice in place).
type sliceSource struct {
	data []byte
	seek int
}

// NewSliceSource wraps an in-memory byte slice as a Source. No internal
// buffer is allocated; data is the parse surface. Unescape mutates data in
// place, so callers must not reuse it elsewhere while iterating.
func NewSliceSource(data []byte) *sliceSource {
	return &sliceSource{data: data}
}

func (s *sliceSource) Buffered() []byte { return s.data[s.seek:] }

func (s *sliceSource) Cap() int { return len(s.data) }

func (s *sliceSource) Toss(n int) { s.seek += n }

func (s *sliceSource) FillMore() error { return io.EOF }

// ProbeExhausted always reports end-of-stream: the entire input is already
// buffered, so a field that doesn't fit is, by construction, unterminated
// rather than oversized.
func (s *sliceSource) ProbeExhausted() (bool, error) { return true, nil }

// ReadStatus is the outcome of one ReadFunc invocation.
type ReadStatus int

const (
	ReadOK ReadStatus = iota
	ReadEOF
	ReadError
)

// ReadFunc is the user-callback signature for the fourth Source
// constructor: given an opaque context and a destination slice, fill as
// much of dst as available and report how much was written plus a status.
type ReadFunc func(ctx any, dst []byte) (n int, status ReadStatus)

// callbackSource drives a user-supplied ReadFunc through the same buffered,
// compacting window as bufferedSource.
type callbackSource struct {
	ctx  any
	read ReadFunc
	buf  []byte
	seek int
	end  int
}

// NewCallbackSource builds a Source that refills its buffer by invoking
// read(ctx, dst) whenever more data is needed. bufSize is the internal
// buffer's capacity; 0 selects a default.
func NewCallbackSource(ctx any, read ReadFunc, bufSize int) *callbackSource {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &callbackSource{ctx: ctx, read: read, buf: make([]byte, bufSize)}
}

func (s *callbackSource) Buffered() []byte { return s.buf[s.seek:s.end] }

func (s *callbackSource) Cap() int { return len(s.buf) }

func (s *callbackSource) Toss(n int) { s.seek += n }

func (s *callbackSource) compact() {
	if s.seek == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.seek:s.end])
	s.seek = 0
	s.end = n
}

func (s *callbackSource) FillMore() error {
	s.compact()
	if s.end >= len(s.buf) {
		return nil
	}
	n, status := s.read(s.ctx, s.buf[s.end:])
	s.end += n
	switch status {
	case ReadEOF:
		if n > 0 {
			return nil
		}
		return io.EOF
	case ReadError:
		return fmt.Errorf("%w: callback reported an error", ErrReadFailed)
	default:
		return nil
	}
}

// ProbeExhausted attempts a single zero-capacity-relieving read once the
// buffer is full, mirroring bufferedSource.ProbeExhausted.
func (s *callbackSource) ProbeExhausted() (bool, error) {
	var scratch [1]byte
	n, status := s.read(s.ctx, scratch[:])
	if n > 0 {
		return false, nil
	}
	switch status {
	case ReadEOF:
		return true, nil
	case ReadError:
		return false, fmt.Errorf("%w: callback reported an error", ErrReadFailed)
	default:
		return false, nil
	}
}
