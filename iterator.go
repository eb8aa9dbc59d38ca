package zcsv

import (
	"io"

	"github.com/shapestone/zcsv/internal/scan"
)

// Iterator yields the fields of a byte source one at a time, validating
// RFC 4180 quoting as it goes. A Field's Data is a view into the
// Iterator's own buffer; it is only valid until the next call to Next.
//
// An Iterator is single-pass and not safe for concurrent use. Once Next
// returns a non-nil error it returns the same error on every subsequent
// call; there is no way to resume past a malformed field.
type Iterator struct {
	src     Source
	scanner *scan.Scanner
	dialect Dialect

	offset int64
	row    int
	col    int

	done bool
	err  error
}

// NewIterator builds an Iterator over src using the given Dialect. Build d
// with NewDialect (or use DefaultDialect) so its invariants have already
// been validated.
func NewIterator(src Source, d Dialect) *Iterator {
	return &Iterator{
		src:     src,
		scanner: scan.New(d.Quote, d.Delimiter, d.VectorLength),
		dialect: d,
		row:     1,
		col:     1,
	}
}

// Next returns the next field, or an error. ErrEndOfInput signals ordinary
// completion; any other error is also returned wrapped in a *ParseError
// giving its position.
func (it *Iterator) Next() (Field, error) {
	if it.done {
		return Field{}, it.err
	}
	for len(it.src.Buffered()) == 0 {
		if err := it.refill(); err != nil {
			if err == io.EOF {
				return it.endOfInput()
			}
			return it.fail(err)
		}
	}
	it.scanner.Reset()
	if it.src.Buffered()[0] == it.dialect.Quote {
		return it.scanQuoted()
	}
	return it.scanUnquoted()
}

// scanUnquoted handles the top-level path: scan for the next delimiter,
// newline, or (invalidly) quote byte.
func (it *Iterator) scanUnquoted() (Field, error) {
	for {
		buf := it.src.Buffered()
		pos, found := it.scanner.Next(buf, 0, len(buf))
		if found {
			switch buf[pos] {
			case it.dialect.Delimiter:
				field := buf[:pos]
				it.commit(pos+1, false)
				return it.yield(field, false, false), nil
			case '\n':
				end := pos
				if end > 0 && buf[end-1] == '\r' {
					end--
				}
				field := buf[:end]
				it.commit(pos+1, true)
				return it.yield(field, true, false), nil
			default:
				return it.fail(ErrInvalidQuotes)
			}
		}

		if it.bufferFull() {
			eof, err := it.probeExhausted()
			if err != nil {
				return it.fail(err)
			}
			if !eof {
				return it.fail(ErrFieldTooLong)
			}
			field := it.src.Buffered()
			it.commit(len(field), true)
			return it.yield(field, true, false), nil
		}

		if err := it.refill(); err != nil {
			if err == io.EOF {
				field := it.src.Buffered()
				it.commit(len(field), true)
				return it.yield(field, true, false), nil
			}
			return it.fail(err)
		}
	}
}

// scanQuoted handles the interior of a quoted field: everything up to an
// unescaped closing quote is data, including delimiter and newline bytes.
func (it *Iterator) scanQuoted() (Field, error) {
	const fieldStart = 1 // buf[0] is the opening quote, already confirmed by Next.
	searchFrom := fieldStart
	needsUnescape := false

	for {
		buf := it.src.Buffered()
		pos, found := it.scanner.NextQuote(buf, searchFrom, len(buf))
		if !found {
			if it.bufferFull() {
				eof, err := it.probeExhausted()
				if err != nil {
					return it.fail(err)
				}
				if !eof {
					return it.fail(ErrFieldTooLong)
				}
				return it.fail(ErrInvalidQuotes)
			}
			if err := it.refill(); err != nil {
				if err == io.EOF {
					return it.fail(ErrInvalidQuotes)
				}
				return it.fail(err)
			}
			continue
		}

		// awaitByte may refill (and so compact) the source; buf and pos
		// both come from it, never from a slice captured before the call.
		buf, err := it.awaitByte(pos + 1)
		if err == io.EOF {
			field := buf[fieldStart:pos]
			it.commit(pos+1, true)
			return it.yield(field, true, needsUnescape), nil
		}
		if err != nil {
			return it.fail(err)
		}
		next := pos + 1

		if buf[next] == it.dialect.Quote {
			needsUnescape = true
			it.scanner.SkipQuote()
			searchFrom = next + 1
			continue
		}

		switch buf[next] {
		case it.dialect.Delimiter:
			field := buf[fieldStart:pos]
			it.commit(next+1, false)
			return it.yield(field, false, needsUnescape), nil
		case '\n':
			field := buf[fieldStart:pos]
			it.commit(next+1, true)
			return it.yield(field, true, needsUnescape), nil
		case '\r':
			// Another possible refill/compact: re-slice from its buf, not
			// the one captured above, once it returns.
			buf, err := it.awaitByte(next + 1)
			if err == io.EOF {
				field := buf[fieldStart:pos]
				it.commit(next+1, true)
				return it.yield(field, true, needsUnescape), nil
			}
			if err != nil {
				return it.fail(err)
			}
			if buf[next+1] == '\n' {
				field := buf[fieldStart:pos]
				it.commit(next+2, true)
				return it.yield(field, true, needsUnescape), nil
			}
			return it.fail(ErrInvalidQuotes)
		default:
			return it.fail(ErrInvalidQuotes)
		}
	}
}

// awaitByte blocks (refilling as needed) until buf has a byte at idx, and
// returns the current buffer. It returns io.EOF if the source is exhausted
// before idx is reached, leaving buf as the final, complete remainder.
func (it *Iterator) awaitByte(idx int) ([]byte, error) {
	for {
		buf := it.src.Buffered()
		if idx < len(buf) {
			return buf, nil
		}
		if it.bufferFull() {
			eof, err := it.probeExhausted()
			if err != nil {
				return nil, err
			}
			if eof {
				return buf, io.EOF
			}
			return nil, ErrFieldTooLong
		}
		if err := it.refill(); err != nil {
			if err == io.EOF {
				return it.src.Buffered(), io.EOF
			}
			return nil, err
		}
	}
}

// refill calls FillMore at least once, retrying zero-progress reads until
// the buffered region grows, an error occurs, or the source reports EOF.
func (it *Iterator) refill() error {
	before := len(it.src.Buffered())
	for {
		if err := it.src.FillMore(); err != nil {
			return err
		}
		if len(it.src.Buffered()) != before {
			return nil
		}
	}
}

func (it *Iterator) bufferFull() bool {
	return it.src.Cap()-len(it.src.Buffered()) <= 0
}

func (it *Iterator) probeExhausted() (bool, error) {
	if p, ok := it.src.(capacityProber); ok {
		return p.ProbeExhausted()
	}
	return false, nil
}

// commit advances the source's read cursor past a resolved field (and its
// terminator, if any) and updates position bookkeeping for ParseError.
func (it *Iterator) commit(n int, newline bool) {
	it.src.Toss(n)
	it.offset += int64(n)
	if newline {
		it.row++
		it.col = 1
	} else {
		it.col += n
	}
}

func (it *Iterator) yield(data []byte, lastColumn, needsUnescape bool) Field {
	return Field{data: data, lastColumn: lastColumn, needsUnescape: needsUnescape, quote: it.dialect.Quote}
}

func (it *Iterator) endOfInput() (Field, error) {
	it.done = true
	it.err = ErrEndOfInput
	return Field{}, ErrEndOfInput
}

func (it *Iterator) fail(err error) (Field, error) {
	pe := &ParseError{Offset: it.offset, Row: it.row, Col: it.col, Err: err}
	it.done = true
	it.err = pe
	return Field{}, pe
}
