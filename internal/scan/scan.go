// Package scan implements the delimiter scanner: a position-finding
// primitive that, given a buffered byte region and a starting offset,
// reports the next byte of interest.
//
// A Scanner tracks two independent notions of "interesting": the top-level
// scan (quote, delimiter, or newline — used between fields) and the
// quote-only scan (used while inside a quoted field, where a delimiter or
// newline is ordinary data and only another quote byte matters). Each has
// its own cached bitmask state in vector mode, since the two scans are
// never interleaved over the same byte range but do alternate field by
// field within one Iterator.
//
// Scalar mode is a straight byte scan driven by a 256-entry lookup table.
// Vector mode (scan_vector.go) additionally maintains a cached bitmask of
// candidate positions within the current chunk, draining it one bit at a
// time before rescanning; this file holds the shared Scanner type and the
// scalar fallback both modes use at a chunk's tail.
package scan

// Scanner locates the next candidate byte within a buffered region. A
// Scanner is stateful: in vector mode it caches a bitmask of positions
// discovered in the last scanned chunk and drains it bit by bit. Callers
// must call SkipQuote whenever they consume a cached candidate without
// calling Next/NextQuote for it (e.g. the follower of a doubled-quote
// escape), and must call Reset whenever the buffer's underlying storage has
// moved (e.g. after a compacting refill).
type Scanner struct {
	quote     byte
	delimiter byte
	lutAll    [256]bool

	vectorLength int

	vector       uint64
	vectorOffset int

	qVector       uint64
	qVectorOffset int
}

// New builds a Scanner for the given dialect bytes. vectorLength is the
// scanner's chunk width in bytes; 0 selects scalar-only scanning, otherwise
// it must be a power of two no greater than 64 (the caller is responsible
// for that validation; see Dialect).
func New(quote, delimiter byte, vectorLength int) *Scanner {
	s := &Scanner{quote: quote, delimiter: delimiter, vectorLength: vectorLength}
	for i := 0; i < 256; i++ {
		b := byte(i)
		s.lutAll[i] = b == quote || b == delimiter || b == '\n'
	}
	return s
}

// Reset discards both cached candidate bitmasks. Call this after the
// buffer's backing storage is compacted or replaced, since cached offsets
// are absolute into the buffer and would otherwise point at stale
// positions.
func (s *Scanner) Reset() {
	s.vector = 0
	s.vectorOffset = 0
	s.qVector = 0
	s.qVectorOffset = 0
}

// SkipQuote discards the lowest cached quote-only candidate bit without
// reporting it. Used when the iterator consumes a quote byte it has
// already classified (the second byte of a doubled-quote escape) so the
// same byte is never rescanned or double-counted.
func (s *Scanner) SkipQuote() {
	if s.qVector != 0 {
		s.qVector &= s.qVector - 1
	}
}

// Next returns the smallest offset p with start <= p < end such that
// buf[p] is a quote, delimiter, or newline byte, or (0, false) if no such
// offset exists in buf[0:end]. buf is the full buffered region (indices
// below start may be stale/consumed; indices at or above end are not yet
// buffered).
func (s *Scanner) Next(buf []byte, start, end int) (int, bool) {
	if s.vectorLength > 0 {
		return s.nextVector(buf, start, end)
	}
	return s.nextScalar(buf, start, end)
}

// NextQuote returns the smallest offset p with start <= p < end such that
// buf[p] is a quote byte, or (0, false) if none exists in buf[0:end].
// Delimiter and newline bytes are not candidates in this mode: inside a
// quoted field they are ordinary data.
func (s *Scanner) NextQuote(buf []byte, start, end int) (int, bool) {
	if s.vectorLength > 0 {
		return s.nextVectorQuote(buf, start, end)
	}
	return s.nextScalarQuote(buf, start, end)
}

func (s *Scanner) nextScalar(buf []byte, start, end int) (int, bool) {
	for i := start; i < end; i++ {
		if s.lutAll[buf[i]] {
			return i, true
		}
	}
	return 0, false
}

func (s *Scanner) nextScalarQuote(buf []byte, start, end int) (int, bool) {
	for i := start; i < end; i++ {
		if buf[i] == s.quote {
			return i, true
		}
	}
	return 0, false
}

// NeedsEscaping reports whether data contains any byte that forces a field
// to be wrapped in quotes on output: the quote byte, the delimiter, or
// either line-ending byte (\n or \r). Unlike Next/NextQuote this is a
// one-shot whole-slice check with no draining cache — callers that just
// want a yes/no answer over a full field use this instead of threading a
// start/end cursor through Next themselves. It chunks through data with
// the same vector classification as Next when the Scanner is in vector
// mode, and falls back to scalar for any remainder (or for the whole
// slice in scalar mode).
func (s *Scanner) NeedsEscaping(data []byte) bool {
	i := 0
	if s.vectorLength > 0 {
		for i+s.vectorLength <= len(data) {
			chunk := data[i : i+s.vectorLength]
			if classifyChunk(chunk, s.quote, s.delimiter, true) != 0 || containsCR(chunk) {
				return true
			}
			i += s.vectorLength
		}
	}
	return s.scalarNeedsEscaping(data[i:])
}

func (s *Scanner) scalarNeedsEscaping(data []byte) bool {
	for _, b := range data {
		if s.lutAll[b] || b == '\r' {
			return true
		}
	}
	return false
}

func containsCR(chunk []byte) bool {
	for _, b := range chunk {
		if b == '\r' {
			return true
		}
	}
	return false
}
