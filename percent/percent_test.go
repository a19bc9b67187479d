package percent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unreserved untouched", input: "abc-XYZ_0.9~", want: "abc-XYZ_0.9~"},
		{name: "space", input: "this is a big\nvalue", want: "this%20is%20a%20big%0Avalue"},
		{name: "reserved", input: "a&b=c/d?e", want: "a%26b%3Dc%2Fd%3Fe"},
		{name: "utf-8", input: "café", want: "caf%C3%A9"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			input string
			want  string
		}{
			{input: "plain", want: "plain"},
			{input: "a+b", want: "a b"},
			{input: "a%20b", want: "a b"},
			{input: "caf%c3%a9", want: "café"},
			{input: "%2B", want: "+"},
		}

		for _, tt := range tests {
			got, err := Decode(tt.input)
			require.NoError(t, err, tt.input)
			assert.Equal(t, tt.want, got, tt.input)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, input := range []string{"%", "%2", "%zz", "abc%g0"} {
			_, err := Decode(input)
			assert.ErrorIs(t, err, ErrMalformedEscape, input)
		}
	})
}

func TestNormalize(t *testing.T) {
	forms := []string{"a b", "a+b", "a%20b", "a%20b"}

	for _, f := range forms {
		got, err := Normalize(f)
		require.NoError(t, err)
		assert.Equal(t, "a%20b", got, f)
	}

	_, err := Normalize("%x")
	assert.ErrorIs(t, err, ErrMalformedEscape)
}
