package zcsv

import (
	"bufio"
	"errors"
	"io"

	"github.com/shapestone/zcsv/internal/scan"
)

const defaultEmitBufferSize = 64 * 1024

var errEmitterClosed = errors.New("zcsv: emitter destination cannot be nil")

// Emitter is the write-side counterpart to Iterator: it writes fields one
// at a time, deciding per field whether RFC 4180 quoting is required and
// doubling embedded quote bytes. Row boundaries are marked with EndRow; the
// line ending for a row is written lazily, immediately before the first
// field of the *next* row, so the final row written never gets a trailing
// line ending.
type Emitter struct {
	dst       *bufio.Writer
	quote     byte
	delimiter byte
	crlf      bool
	scanner   *scan.Scanner

	firstRow   bool
	firstField bool
	err        error
}

// NewEmitter builds an Emitter writing to w under the given Dialect, with a
// default internal buffer size.
func NewEmitter(w io.Writer, d Dialect) *Emitter {
	return NewEmitterSize(w, defaultEmitBufferSize, d)
}

// NewEmitterSize is NewEmitter with an explicit internal buffer size.
func NewEmitterSize(w io.Writer, size int, d Dialect) *Emitter {
	if w == nil {
		panic(errEmitterClosed.Error())
	}
	return &Emitter{
		dst:        bufio.NewWriterSize(w, size),
		quote:      d.Quote,
		delimiter:  d.Delimiter,
		scanner:    scan.New(d.Quote, d.Delimiter, d.VectorLength),
		firstRow:   true,
		firstField: true,
	}
}

// UseCRLF selects \r\n as the row separator instead of \n. Call it before
// writing any fields; changing it mid-stream only affects rows not yet
// started.
func (e *Emitter) UseCRLF(v bool) { e.crlf = v }

// Field writes data as the next field of the current row, quoting it and
// doubling any embedded quote bytes if necessary.
func (e *Emitter) Field(data []byte) error {
	if err := e.beginField(); err != nil {
		return err
	}
	return e.writeField(data)
}

// FieldAssumeEscaped writes data as the next field of the current row,
// where data's interior quote bytes, if any, are already doubled (as
// produced by an already-escaped source). The emitter only decides whether
// wrapping quotes are needed; it does not rescan for escaping.
func (e *Emitter) FieldAssumeEscaped(data []byte) error {
	if err := e.beginField(); err != nil {
		return err
	}
	return e.writeFieldAssumeEscaped(data)
}

// EndRow marks the end of the current row. The row's line ending is not
// written until the next field, so calling EndRow as the very last
// operation leaves no trailing line ending in the output.
func (e *Emitter) EndRow() error {
	if e.err != nil {
		return e.err
	}
	e.firstRow = false
	e.firstField = true
	return nil
}

// Flush flushes any buffered output to the underlying writer.
func (e *Emitter) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.dst.Flush(); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Err returns the first error encountered while writing, if any.
func (e *Emitter) Err() error { return e.err }

func (e *Emitter) beginField() error {
	if e.err != nil {
		return e.err
	}
	if e.firstField {
		if !e.firstRow {
			if e.crlf {
				if _, err := e.dst.Write([]byte{'\r', '\n'}); err != nil {
					e.err = err
					return err
				}
			} else if err := e.dst.WriteByte('\n'); err != nil {
				e.err = err
				return err
			}
		}
		e.firstField = false
		return nil
	}
	if err := e.dst.WriteByte(e.delimiter); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *Emitter) writeField(data []byte) error {
	if !e.fieldNeedsQuote(data) {
		_, err := e.dst.Write(data)
		if err != nil {
			e.err = err
		}
		return err
	}
	if err := e.dst.WriteByte(e.quote); err != nil {
		e.err = err
		return err
	}
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != e.quote {
			continue
		}
		if start < i {
			if _, err := e.dst.Write(data[start:i]); err != nil {
				e.err = err
				return err
			}
		}
		if _, err := e.dst.Write([]byte{e.quote, e.quote}); err != nil {
			e.err = err
			return err
		}
		start = i + 1
	}
	if start < len(data) {
		if _, err := e.dst.Write(data[start:]); err != nil {
			e.err = err
			return err
		}
	}
	return e.writeByte(e.quote)
}

func (e *Emitter) writeFieldAssumeEscaped(data []byte) error {
	if !e.fieldNeedsQuote(data) {
		_, err := e.dst.Write(data)
		if err != nil {
			e.err = err
		}
		return err
	}
	if err := e.writeByte(e.quote); err != nil {
		return err
	}
	if _, err := e.dst.Write(data); err != nil {
		e.err = err
		return err
	}
	return e.writeByte(e.quote)
}

func (e *Emitter) writeByte(b byte) error {
	if err := e.dst.WriteByte(b); err != nil {
		e.err = err
		return err
	}
	return nil
}

func (e *Emitter) fieldNeedsQuote(data []byte) bool {
	return e.scanner.NeedsEscaping(data)
}
