package zcsv

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gotField struct {
	data       string
	lastColumn bool
}

func collect(t *testing.T, it *Iterator) ([]gotField, error) {
	t.Helper()
	var out []gotField
	for {
		f, err := it.Next()
		if errors.Is(err, ErrEndOfInput) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		data := f.Data()
		if f.NeedsUnescape() {
			data = f.Unescape()
		}
		out = append(out, gotField{data: string(data), lastColumn: f.LastColumn()})
	}
}

func newTestIterator(input string, d Dialect) *Iterator {
	return NewIterator(NewSliceSource([]byte(input)), d)
}

func TestIteratorBasicFields(t *testing.T) {
	for _, vec := range []int{0, 8, 64} {
		d := DefaultDialect()
		d.VectorLength = vec
		it := newTestIterator("a,b,c\nd,e,f", d)
		got, err := collect(t, it)
		require.NoError(t, err)
		assert.Equal(t, []gotField{
			{"a", false}, {"b", false}, {"c", true},
			{"d", false}, {"e", false}, {"f", true},
		}, got)
	}
}

func TestIteratorEmptyFields(t *testing.T) {
	it := newTestIterator("a,,c", DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a", false}, {"", false}, {"c", true}}, got)
}

func TestIteratorEmptyInput(t *testing.T) {
	it := newTestIterator("", DefaultDialect())
	_, err := it.Next()
	assert.ErrorIs(t, err, ErrEndOfInput)
}

func TestIteratorNoTrailingNewline(t *testing.T) {
	it := newTestIterator("a,b", DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a", false}, {"b", true}}, got)
}

func TestIteratorTrailingNewline(t *testing.T) {
	it := newTestIterator("a,b\n", DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a", false}, {"b", true}}, got)
}

func TestIteratorCRLF(t *testing.T) {
	it := newTestIterator("a,b\r\nc,d", DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a", false}, {"b", true}, {"c", false}, {"d", true}}, got)
}

func TestIteratorQuotedField(t *testing.T) {
	it := newTestIterator(`"hello, world",b`, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"hello, world", false}, {"b", true}}, got)
}

func TestIteratorQuotedEscapedQuotes(t *testing.T) {
	it := newTestIterator(`"say ""hi""",next`, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{`say "hi"`, false}, {"next", true}}, got)
}

func TestIteratorQuotedFieldEscapeInMiddleKeepsPrefix(t *testing.T) {
	it := newTestIterator(`"wo""rld"`, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{`wo"rld`, true}}, got)
}

func TestIteratorQuotedFieldTrailingEscapedQuotesKeepsPrefix(t *testing.T) {
	it := newTestIterator(`"say ""hi"""`, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{`say "hi"`, true}}, got)
}

func TestIteratorQuotedFieldEndsAtEOF(t *testing.T) {
	it := newTestIterator(`"last"`, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"last", true}}, got)
}

func TestIteratorQuotedFieldWithNewlineInside(t *testing.T) {
	it := newTestIterator("\"a\nb\",c", DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a\nb", false}, {"c", true}}, got)
}

func TestIteratorBareQuoteInUnquotedFieldIsInvalid(t *testing.T) {
	it := newTestIterator(`ab"cd,e`, DefaultDialect())
	_, err := it.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuotes)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrInvalidQuotes, pe.Err)
}

func TestIteratorUnterminatedQuoteIsInvalid(t *testing.T) {
	it := newTestIterator(`"unterminated`, DefaultDialect())
	_, err := it.Next()
	assert.ErrorIs(t, err, ErrInvalidQuotes)
}

func TestIteratorStrayBytesAfterClosingQuoteIsInvalid(t *testing.T) {
	it := newTestIterator(`"a"b,c`, DefaultDialect())
	_, err := it.Next()
	assert.ErrorIs(t, err, ErrInvalidQuotes)
}

func TestIteratorDoneStateIsSticky(t *testing.T) {
	it := newTestIterator(`"unterminated`, DefaultDialect())
	_, err1 := it.Next()
	_, err2 := it.Next()
	assert.ErrorIs(t, err1, ErrInvalidQuotes)
	assert.Same(t, err1.(*ParseError), err2.(*ParseError))
}

func TestIteratorFieldTooLong(t *testing.T) {
	src := NewHandleSource(strings.NewReader("this field has no delimiter at all and is way too long"), 8)
	it := NewIterator(src, DefaultDialect())
	_, err := it.Next()
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestIteratorRefillAcrossSmallBuffer(t *testing.T) {
	// bufSize (16) comfortably holds the longest single field plus its one
	// lookahead byte, but is well short of the whole input, forcing several
	// refill calls over the course of the parse.
	input := `"hello, world",second,third` + "\n" + "x,y,z"
	src := NewHandleSource(strings.NewReader(input), 16)
	it := NewIterator(src, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{
		{"hello, world", false}, {"second", false}, {"third", true},
		{"x", false}, {"y", false}, {"z", true},
	}, got)
}

func TestIteratorRefillAcrossSmallBufferWithEscape(t *testing.T) {
	input := `"say ""hi"" there",b,extra,more,fields,to,pad,this,out,further`
	src := NewHandleSource(strings.NewReader(input), 24)
	it := NewIterator(src, DefaultDialect())
	got, err := collect(t, it)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, gotField{`say "hi" there`, false}, got[0])
	assert.Equal(t, gotField{"b", false}, got[1])
	assert.Equal(t, gotField{"further", true}, got[9])
}

func TestIteratorCustomDialect(t *testing.T) {
	d, err := NewDialect(WithDelimiter('\t'), WithQuote('\''))
	require.NoError(t, err)
	it := newTestIterator("a\tb\t'c\td'", d)
	got, err := collect(t, it)
	require.NoError(t, err)
	assert.Equal(t, []gotField{{"a", false}, {"b", false}, {"c\td", true}}, got)
}

func TestIteratorParseErrorPosition(t *testing.T) {
	it := newTestIterator("a,b\nc\"d", DefaultDialect())
	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Row)
}
