package zcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no quotes", input: "hello", want: "hello"},
		{name: "single doubled pair", input: `say ""hi`, want: `say "hi`},
		{name: "fully doubled", input: `""""`, want: `""`},
		{name: "multiple escapes", input: `a""b""c`, want: `a"b"c`},
		{name: "escape at start", input: `""abc`, want: `"abc`},
		{name: "escape at end", input: `abc""`, want: `abc"`},
		{name: "lone trailing quote preserved", input: `abc"`, want: `abc"`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(tt.input)
			got := unescape(data, '"')
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestUnescapeIsInPlace(t *testing.T) {
	data := []byte(`a""b`)
	orig := &data[0]
	got := unescape(data, '"')
	assert.Equal(t, `a"b`, string(got))
	assert.Same(t, orig, &data[0])
}
