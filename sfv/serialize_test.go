package sfv

import (
	"testing"

	"github.com/dunglas/httpsfv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeBareItem(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "integer", value: int64(-42), want: "-42"},
		{name: "int", value: 7, want: "7"},
		{name: "decimal", value: Decimal(1.5), want: "1.5"},
		{name: "whole decimal", value: Decimal(2), want: "2.0"},
		{name: "decimal rounds to three digits", value: Decimal(0.12345), want: "0.123"},
		{name: "decimal rounds half to even", value: Decimal(0.0625), want: "0.062"},
		{name: "string", value: `say "hi" \o/`, want: `"say \"hi\" \\o/"`},
		{name: "token", value: Token("gzip"), want: "gzip"},
		{name: "bytes", value: []byte("hello"), want: ":aGVsbG8=:"},
		{name: "empty bytes", value: []byte{}, want: "::"},
		{name: "true", value: true, want: "?1"},
		{name: "false", value: false, want: "?0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SerializeBareItem(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerializeErrors(t *testing.T) {
	t.Run("unknown value", func(t *testing.T) {
		_, err := Serialize(Value{})
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("unsupported bare item", func(t *testing.T) {
		_, err := SerializeBareItem(3.14)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("integer out of range", func(t *testing.T) {
		_, err := SerializeBareItem(int64(1_000_000_000_000_000))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("decimal out of range", func(t *testing.T) {
		_, err := SerializeBareItem(Decimal(1e12))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("string with control character", func(t *testing.T) {
		_, err := SerializeBareItem("a\nb")
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := SerializeBareItem(Token("1abc"))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("invalid parameter key", func(t *testing.T) {
		_, err := SerializeItem(Item{Value: int64(1), Params: Params{{Key: "Bad", Value: true}}})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestSerializeContainers(t *testing.T) {
	t.Run("parameters with true shorthand", func(t *testing.T) {
		s, err := SerializeParams(Params{{Key: "a", Value: true}, {Key: "b", Value: false}, {Key: "c", Value: "x"}})
		require.NoError(t, err)
		assert.Equal(t, `;a;b=?0;c="x"`, s)
	})

	t.Run("inner list is space separated", func(t *testing.T) {
		s, err := SerializeInnerList(InnerList{
			Items:  []Item{{Value: "@method"}, {Value: "x-dict", Params: Params{{Key: "key", Value: "b"}}}},
			Params: Params{{Key: "created", Value: int64(1)}},
		})
		require.NoError(t, err)
		assert.Equal(t, `("@method" "x-dict";key="b");created=1`, s)
	})

	t.Run("list is comma separated", func(t *testing.T) {
		s, err := Serialize(ListValue(List{Item{Value: Token("a")}, InnerList{Items: []Item{{Value: int64(1)}}}}))
		require.NoError(t, err)
		assert.Equal(t, "a, (1)", s)
	})

	t.Run("dictionary collapses true members", func(t *testing.T) {
		d := NewDictionary()
		d.Set("a", Item{Value: true})
		d.Set("b", Item{Value: true, Params: Params{{Key: "x", Value: int64(1)}}})
		d.Set("c", Item{Value: int64(2)})

		s, err := Serialize(DictionaryValue(d))
		require.NoError(t, err)
		assert.Equal(t, "a, b;x=1, c=2", s)
	})

	t.Run("empty dictionary", func(t *testing.T) {
		s, err := Serialize(DictionaryValue(nil))
		require.NoError(t, err)
		assert.Equal(t, "", s)
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		input string
		want  string
	}{
		{name: "item", kind: KindItem, input: `"abc";q=0.5;flag`, want: `"abc";q=0.5;flag`},
		{name: "explicit true param", kind: KindItem, input: `tok;a=?1`, want: `tok;a`},
		{name: "dictionary explicit true", kind: KindDictionary, input: `key=?1, b=2`, want: `key, b=2`},
		{name: "dictionary whitespace", kind: KindDictionary, input: "a=1 ,   b=2", want: "a=1, b=2"},
		{name: "list of inner lists", kind: KindList, input: `("foo"  "bar");x, (baz)`, want: `("foo" "bar");x, (baz)`},
		{name: "bytes", kind: KindItem, input: `:cHJldGVuZCB0aGlzIGlzIGJpbmFyeSBjb250ZW50Lg==:`, want: `:cHJldGVuZCB0aGlzIGlzIGJpbmFyeSBjb250ZW50Lg==:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input, tt.kind)
			require.NoError(t, err)

			got, err := Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Parse(got, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, v, again)
		})
	}

	t.Run("built values parse back equal", func(t *testing.T) {
		d := NewDictionary()
		d.Set("i", Item{Value: int64(-5), Params: Params{{Key: "p", Value: Token("t")}}})
		d.Set("s", Item{Value: "str"})
		d.Set("b", Item{Value: []byte{0, 1, 2, 255}})
		d.Set("f", Item{Value: false})
		d.Set("l", InnerList{Items: []Item{{Value: Decimal(1.25)}, {Value: true}}, Params: Params{{Key: "z", Value: int64(0)}}})

		s, err := SerializeDictionary(d)
		require.NoError(t, err)

		parsed, err := ParseDictionary(s)
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	})
}

// TestMatchesHTTPSFV cross-checks serialization against an independent
// RFC 8941 implementation.
func TestMatchesHTTPSFV(t *testing.T) {
	t.Run("dictionaries", func(t *testing.T) {
		inputs := []string{
			`a=1, b=2`,
			`sig1=:aGVsbG8=:, sig2=:d29ybGQ=:`,
			`a=?1;x=1, b="quoted \"value\"", c=(1 2 3);p`,
			`en="Applepie", da=:w4ZibGV0w6ZydGU=:`,
			`a=?0, b, c;foo=bar`,
			`rating=1.5, feelings=(joy sadness)`,
		}

		for _, input := range inputs {
			ours, err := ParseDictionary(input)
			require.NoError(t, err, input)

			got, err := SerializeDictionary(ours)
			require.NoError(t, err, input)

			theirs, err := httpsfv.UnmarshalDictionary([]string{input})
			require.NoError(t, err, input)

			want, err := httpsfv.Marshal(theirs)
			require.NoError(t, err, input)

			assert.Equal(t, want, got, input)
		}
	})

	t.Run("lists", func(t *testing.T) {
		inputs := []string{
			`sugar, tea, rum`,
			`("foo" "bar"), ("baz"), ("bat" "one"), ()`,
			`abc;a=1;b=2; cde_456, (ghi;jk=4 l);q="9";r=w`,
		}

		for _, input := range inputs {
			ours, err := ParseList(input)
			require.NoError(t, err, input)

			got, err := SerializeList(ours)
			require.NoError(t, err, input)

			theirs, err := httpsfv.UnmarshalList([]string{input})
			require.NoError(t, err, input)

			want, err := httpsfv.Marshal(theirs)
			require.NoError(t, err, input)

			assert.Equal(t, want, got, input)
		}
	})
}
