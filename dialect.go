// Package zcsv implements a streaming, zero-copy CSV field iterator and a
// companion emitter. The iterator yields fields (not records) as borrowed
// views into a byte source's own buffer, validating RFC 4180 quoting along
// the way; the emitter is the write-side counterpart.
package zcsv

import (
	"fmt"

	"github.com/shapestone/zcsv/internal/scan"
)

// Dialect fixes the byte-level configuration of an Iterator or Emitter for
// its entire lifetime: which byte opens/closes a quoted field, which byte
// separates fields, and (for the Iterator) how wide a chunk the delimiter
// scanner should scan at once.
type Dialect struct {
	Quote     byte
	Delimiter byte

	// VectorLength is the scanner's chunk width in bytes. It must be a
	// power of two not exceeding 64, or zero to force scalar-only
	// scanning. Zero is the default returned by NewDialect.
	VectorLength int
}

// DefaultDialect returns the RFC 4180 default: comma-delimited, double-quoted,
// scalar scanning.
func DefaultDialect() Dialect {
	return Dialect{Quote: '"', Delimiter: ',', VectorLength: 0}
}

// Option configures a Dialect built by NewDialect.
type Option func(*Dialect)

// WithQuote overrides the quote byte.
func WithQuote(q byte) Option {
	return func(d *Dialect) { d.Quote = q }
}

// WithDelimiter overrides the field delimiter byte.
func WithDelimiter(c byte) Option {
	return func(d *Dialect) { d.Delimiter = c }
}

// WithVectorLength requests vector (SWAR) scanning in chunks of n bytes.
// n must be a power of two no greater than 64; use 0 (or omit this option)
// for scalar-only scanning.
func WithVectorLength(n int) Option {
	return func(d *Dialect) { d.VectorLength = n }
}

// WithAutoVectorLength requests vector scanning at a chunk width the
// running CPU can make good use of, per RecommendedVectorLength, instead
// of a literal width picked by the caller.
func WithAutoVectorLength() Option {
	return func(d *Dialect) { d.VectorLength = RecommendedVectorLength() }
}

// RecommendedVectorLength returns a vector-mode chunk width suited to the
// running CPU (64, 32, or 0 for scalar-only), per the running CPU's SIMD
// feature bits. Pass the result to WithVectorLength, or use
// WithAutoVectorLength to do so in one step.
func RecommendedVectorLength() int {
	return scan.RecommendedVectorLength()
}

// NewDialect builds a Dialect from the RFC 4180 default plus the given
// options, and validates the result.
func NewDialect(opts ...Option) (Dialect, error) {
	d := DefaultDialect()
	for _, opt := range opts {
		opt(&d)
	}
	if err := d.validate(); err != nil {
		return Dialect{}, err
	}
	return d, nil
}

func (d Dialect) validate() error {
	if d.Quote == d.Delimiter {
		return fmt.Errorf("zcsv: quote and delimiter must differ (both %q)", d.Quote)
	}
	if d.Quote == '\n' || d.Delimiter == '\n' {
		return fmt.Errorf("zcsv: quote and delimiter must not be the newline byte")
	}
	if d.VectorLength != 0 {
		if d.VectorLength < 0 || d.VectorLength > 64 || d.VectorLength&(d.VectorLength-1) != 0 {
			return fmt.Errorf("zcsv: vector length %d must be a power of two no greater than 64", d.VectorLength)
		}
	}
	return nil
}

// interesting reports whether b is one of the scanner's candidate bytes for
// this dialect: quote, delimiter, or newline (0x0A). Carriage return is
// handled positionally by the iterator and is never itself a candidate.
//
// Production code never calls this directly — Iterator drives the actual
// scan through internal/scan's own lookup table, built the same way. It
// exists to let dialect_test.go assert that definition independently of
// the scanner package.
func (d Dialect) interesting(b byte) bool {
	return b == d.Quote || b == d.Delimiter || b == '\n'
}
