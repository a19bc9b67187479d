package httpsig

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/msgsig/sfv"
)

// Derived component identifiers per RFC 9421 Section 2.2.
const (
	ComponentMethod          = "@method"
	ComponentTargetURI       = "@target-uri"
	ComponentAuthority       = "@authority"
	ComponentScheme          = "@scheme"
	ComponentRequestTarget   = "@request-target"
	ComponentPath            = "@path"
	ComponentQuery           = "@query"
	ComponentStatus          = "@status"
	ComponentQueryParam      = "@query-param"
	ComponentRequestResponse = "@request-response"
	ComponentSignatureParams = "@signature-params"
)

// derivedNames are the derived components resolved by Message.DerivedValue.
var derivedNames = map[string]struct{}{
	ComponentMethod:        {},
	ComponentTargetURI:     {},
	ComponentAuthority:     {},
	ComponentScheme:        {},
	ComponentRequestTarget: {},
	ComponentPath:          {},
	ComponentQuery:         {},
	ComponentStatus:        {},
}

// ComponentKind tells how a component is resolved against a message.
type ComponentKind int

const (
	// KindUnsupported marks a component that can never be resolved, such as
	// an unknown derived name. Canonicalizing it fails with ErrNotSupported.
	KindUnsupported ComponentKind = iota

	// KindHeader is a plain header field.
	KindHeader

	// KindDictionaryHeader is one member of a dictionary header field.
	KindDictionaryHeader

	// KindDerived is a derived value such as @method or @path.
	KindDerived

	// KindQueryParam is a single named query parameter.
	KindQueryParam

	// KindRequestResponse is a member of the request's Signature header,
	// referenced from a response signature.
	KindRequestResponse

	// KindSignatureParams is the implicit @signature-params component.
	KindSignatureParams
)

func (k ComponentKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindDictionaryHeader:
		return "dictionary-header"
	case KindDerived:
		return "derived"
	case KindQueryParam:
		return "query-param"
	case KindRequestResponse:
		return "request-response"
	case KindSignatureParams:
		return "signature-params"
	default:
		return "unsupported"
	}
}

// Component identifies one covered component of a signature. Two components
// are equal, and comparable with ==, when kind, name, key and name
// qualifier all match.
type Component struct {
	kind  ComponentKind
	name  string
	key   string
	param string
}

// Header returns a component covering every occurrence of the named header.
// The name is lowercased. Names that are not valid header field names yield
// an unsupported component.
func Header(name string) Component {
	name = strings.ToLower(strings.TrimSpace(name))
	if !httpguts.ValidHeaderFieldName(name) {
		return Component{kind: KindUnsupported, name: name}
	}

	return Component{kind: KindHeader, name: name}
}

// DictionaryHeader returns a component covering the member key of the
// named dictionary header. An empty key yields an unsupported component.
func DictionaryHeader(name, key string) Component {
	c := Header(name)
	if c.kind != KindHeader || key == "" {
		return Component{kind: KindUnsupported, name: c.name, key: key}
	}

	return Component{kind: KindDictionaryHeader, name: c.name, key: key}
}

// Derived returns the derived component with the given name, for example
// ComponentMethod. The @signature-params name yields the signature
// parameters component, which SignatureParams refuses to cover. Unknown
// names yield an unsupported component.
func Derived(name string) Component {
	if name == ComponentSignatureParams {
		return signatureParamsComponent
	}

	if _, ok := derivedNames[name]; !ok {
		return Component{kind: KindUnsupported, name: name}
	}

	return Component{kind: KindDerived, name: name}
}

// QueryParam returns a component covering every occurrence of the named
// query parameter.
func QueryParam(name string) Component {
	return Component{kind: KindQueryParam, name: ComponentQueryParam, param: name}
}

// RequestResponse returns a component covering the named member of the
// request's Signature header. It is used when signing a response bound
// to the request that produced it.
func RequestResponse(key string) Component {
	return Component{kind: KindRequestResponse, name: ComponentRequestResponse, key: key}
}

var signatureParamsComponent = Component{kind: KindSignatureParams, name: ComponentSignatureParams}

// Kind returns the component kind.
func (c Component) Kind() ComponentKind { return c.kind }

// Name returns the component name: a lowercase header name or a derived
// identifier starting with "@".
func (c Component) Name() string { return c.name }

// Key returns the dictionary key, or the Signature member name for a
// request-response component.
func (c Component) Key() string { return c.key }

// Param returns the query parameter name qualifier.
func (c Component) Param() string { return c.param }

// item returns the structured item that identifies c on the wire.
func (c Component) item() sfv.Item {
	it := sfv.Item{Value: c.name}

	if c.key != "" {
		it.Params.Set("key", c.key)
	}

	if c.param != "" {
		it.Params.Set("name", c.param)
	}

	return it
}

// String returns the component identifier as it appears in the signature
// base, for example "x-dict";key="b".
func (c Component) String() string {
	s, err := sfv.SerializeItem(c.item())
	if err != nil {
		return fmt.Sprintf("%q", c.name)
	}

	return s
}

// ParseComponent parses a component identifier. A quoted form such as
// `"x-dict";key="b"` is parsed as a structured item; a bare form such as
// `@method` or `content-type` names a derived component or header without
// parameters.
func ParseComponent(s string) (Component, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Component{}, fmt.Errorf("%w: empty component identifier", ErrMalformedSignatureParams)
	}

	if s[0] != '"' {
		return componentFromItem(sfv.Item{Value: s})
	}

	it, err := sfv.ParseItem(s)
	if err != nil {
		return Component{}, fmt.Errorf("%w: component %s: %w", ErrMalformedSignatureParams, s, err)
	}

	return componentFromItem(it)
}

// componentFromItem converts a wire component identifier into a Component.
// Anything that cannot be resolved is reported as malformed input rather
// than as an unsupported component, because wire data is untrusted.
func componentFromItem(it sfv.Item) (Component, error) {
	name, ok := it.Value.(string)
	if !ok {
		return Component{}, fmt.Errorf("%w: component identifier must be a string", ErrMalformedSignatureParams)
	}

	if name != strings.ToLower(name) {
		return Component{}, fmt.Errorf("%w: component %q must be lowercase", ErrMalformedSignatureParams, name)
	}

	var key, param string
	for _, p := range it.Params {
		s, ok := p.Value.(string)
		if !ok {
			return Component{}, fmt.Errorf("%w: component %q parameter %q must be a string", ErrMalformedSignatureParams, name, p.Key)
		}

		if s == "" {
			return Component{}, fmt.Errorf("%w: component %q parameter %q must not be empty", ErrMalformedSignatureParams, name, p.Key)
		}

		switch p.Key {
		case "key":
			key = s
		case "name":
			param = s
		default:
			return Component{}, fmt.Errorf("%w: component %q parameter %q not supported", ErrMalformedSignatureParams, name, p.Key)
		}
	}

	var c Component

	switch {
	case name == ComponentQueryParam:
		if param == "" || key != "" {
			return Component{}, fmt.Errorf("%w: %s requires only a name parameter", ErrMalformedSignatureParams, name)
		}

		return QueryParam(param), nil

	case name == ComponentRequestResponse:
		if key == "" || param != "" {
			return Component{}, fmt.Errorf("%w: %s requires only a key parameter", ErrMalformedSignatureParams, name)
		}

		return RequestResponse(key), nil

	case strings.HasPrefix(name, "@"):
		c = Derived(name)
		if c.kind != KindDerived || key != "" || param != "" {
			return Component{}, fmt.Errorf("%w: derived component %q not supported", ErrMalformedSignatureParams, name)
		}

		return c, nil

	case param != "":
		return Component{}, fmt.Errorf("%w: header %q does not take a name parameter", ErrMalformedSignatureParams, name)

	case key != "":
		c = DictionaryHeader(name, key)

	default:
		c = Header(name)
	}

	if c.kind == KindUnsupported {
		return Component{}, fmt.Errorf("%w: invalid header name %q", ErrMalformedSignatureParams, name)
	}

	return c, nil
}
