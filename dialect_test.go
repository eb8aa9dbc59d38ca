package zcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDialect(t *testing.T) {
	d := DefaultDialect()
	assert.Equal(t, byte('"'), d.Quote)
	assert.Equal(t, byte(','), d.Delimiter)
	assert.Equal(t, 0, d.VectorLength)
}

func TestNewDialect(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "custom delimiter", opts: []Option{WithDelimiter('\t')}},
		{name: "custom quote", opts: []Option{WithQuote('\'')}},
		{name: "vector length 32", opts: []Option{WithVectorLength(32)}},
		{name: "vector length 64", opts: []Option{WithVectorLength(64)}},
		{name: "vector length zero is scalar", opts: []Option{WithVectorLength(0)}},
		{name: "quote equals delimiter", opts: []Option{WithQuote(',')}, wantErr: true},
		{name: "quote is newline", opts: []Option{WithQuote('\n')}, wantErr: true},
		{name: "delimiter is newline", opts: []Option{WithDelimiter('\n')}, wantErr: true},
		{name: "vector length not power of two", opts: []Option{WithVectorLength(24)}, wantErr: true},
		{name: "vector length too wide", opts: []Option{WithVectorLength(128)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDialect(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, d.Quote)
			assert.NotZero(t, d.Delimiter)
		})
	}
}

func TestWithAutoVectorLength(t *testing.T) {
	d, err := NewDialect(WithAutoVectorLength())
	require.NoError(t, err)
	assert.Equal(t, RecommendedVectorLength(), d.VectorLength)
}

func TestRecommendedVectorLengthIsValidDialectValue(t *testing.T) {
	n := RecommendedVectorLength()
	d, err := NewDialect(WithVectorLength(n))
	require.NoError(t, err)
	assert.Equal(t, n, d.VectorLength)
}

func TestDialectInteresting(t *testing.T) {
	d := DefaultDialect()
	assert.True(t, d.interesting('"'))
	assert.True(t, d.interesting(','))
	assert.True(t, d.interesting('\n'))
	assert.False(t, d.interesting('\r'))
	assert.False(t, d.interesting('a'))
}
