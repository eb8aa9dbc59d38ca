package zcsv

// Field is one yielded field: a borrowed view into the Iterator's source
// buffer, valid only until the next call to Next on the same Iterator (the
// in-memory source is the exception; see NewSliceSource).
type Field struct {
	data          []byte
	lastColumn    bool
	needsUnescape bool
	quote         byte
}

// Data returns the field's raw bytes, exactly as they appeared between
// delimiters (quotes stripped for quoted fields, but doubled-quote escapes
// not yet collapsed). Call Unescape to resolve escapes.
func (f Field) Data() []byte { return f.data }

// LastColumn reports whether this field was terminated by a newline (or by
// end-of-stream after at least one byte), i.e. whether it is the last field
// of its row.
func (f Field) LastColumn() bool { return f.lastColumn }

// NeedsUnescape reports whether the field was quoted and its interior
// contained at least one doubled-quote escape.
func (f Field) NeedsUnescape() bool { return f.needsUnescape }

// Unescape returns the field's data with every doubled-quote escape
// collapsed to a single quote byte. If NeedsUnescape is false, it returns
// Data() unchanged. The unescape runs in place over the field's backing
// slice and is idempotent: calling Unescape twice returns the same result
// as calling it once.
//
// For the in-memory source (NewSliceSource), this mutates the caller's
// original slice.
func (f *Field) Unescape() []byte {
	if !f.needsUnescape {
		return f.data
	}
	f.data = unescape(f.data, f.quote)
	f.needsUnescape = false
	return f.data
}
