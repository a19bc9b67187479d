package httpsig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentString(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want string
	}{
		{name: "derived", c: Derived(ComponentMethod), want: `"@method"`},
		{name: "header is lowercased", c: Header("Content-Type"), want: `"content-type"`},
		{name: "dictionary header", c: DictionaryHeader("X-Dict", "b"), want: `"x-dict";key="b"`},
		{name: "query param", c: QueryParam("Pet"), want: `"@query-param";name="Pet"`},
		{name: "request response", c: RequestResponse("sig1"), want: `"@request-response";key="sig1"`},
		{name: "signature params", c: Derived(ComponentSignatureParams), want: `"@signature-params"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.String())
		})
	}
}

func TestComponentKinds(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want ComponentKind
	}{
		{name: "header", c: Header("date"), want: KindHeader},
		{name: "invalid header name", c: Header("bad header"), want: KindUnsupported},
		{name: "dictionary header", c: DictionaryHeader("x-dict", "a"), want: KindDictionaryHeader},
		{name: "invalid dictionary header", c: DictionaryHeader("bad(", "a"), want: KindUnsupported},
		{name: "empty dictionary key", c: DictionaryHeader("x-dict", ""), want: KindUnsupported},
		{name: "derived", c: Derived(ComponentPath), want: KindDerived},
		{name: "unknown derived", c: Derived("@fragment"), want: KindUnsupported},
		{name: "query param", c: QueryParam("q"), want: KindQueryParam},
		{name: "request response", c: RequestResponse("sig1"), want: KindRequestResponse},
		{name: "signature params", c: Derived(ComponentSignatureParams), want: KindSignatureParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Kind())
			assert.NotEmpty(t, tt.c.Kind().String())
		})
	}
}

func TestComponentEquality(t *testing.T) {
	assert.Equal(t, Header("Date"), Header("date"))
	assert.Equal(t, DictionaryHeader("x-dict", "a"), DictionaryHeader("X-Dict", "a"))
	assert.NotEqual(t, DictionaryHeader("x-dict", "a"), DictionaryHeader("x-dict", "b"))
	assert.NotEqual(t, Header("x-dict"), DictionaryHeader("x-dict", "a"))
	assert.NotEqual(t, QueryParam("a"), QueryParam("b"))
	assert.NotEqual(t, Derived(ComponentQuery), QueryParam(""))

	c := DictionaryHeader("x-dict", "a")
	assert.Equal(t, "x-dict", c.Name())
	assert.Equal(t, "a", c.Key())
	assert.Equal(t, "q", QueryParam("q").Param())
}

func TestParseComponent(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			in   string
			want Component
		}{
			{in: `"@method"`, want: Derived(ComponentMethod)},
			{in: `@authority`, want: Derived(ComponentAuthority)},
			{in: `content-type`, want: Header("content-type")},
			{in: `"x-dict";key="b"`, want: DictionaryHeader("x-dict", "b")},
			{in: `"@query-param";name="pet"`, want: QueryParam("pet")},
			{in: `"@request-response";key="sig1"`, want: RequestResponse("sig1")},
		}

		for _, tt := range tests {
			t.Run(tt.in, func(t *testing.T) {
				got, err := ParseComponent(tt.in)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{
			``,
			`"@signature-params"`,
			`"@fragment"`,
			`"Content-Type"`,
			`"x-dict";foo="b"`,
			`"x-dict";key=1`,
			`"x-dict";key=""`,
			`"@query-param";name=""`,
			`"@request-response";key=""`,
			`"@query-param"`,
			`"@query-param";key="a"`,
			`"@request-response"`,
			`"@method";key="a"`,
			`"date";name="a"`,
			`"unterminated`,
		} {
			t.Run(in, func(t *testing.T) {
				_, err := ParseComponent(in)
				assert.ErrorIs(t, err, ErrMalformedSignatureParams)
			})
		}
	})
}
