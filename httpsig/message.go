package httpsig

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vitalvas/msgsig/percent"
)

// Message gives the canonicalizer read access to one HTTP message: a
// request, or a response together with the request that produced it.
//
// Header names are lowercase. Implementations must not change while a
// signature base is built from them.
type Message interface {
	// HeaderValues returns every value of the named header of the message
	// being signed, in order, including values synthesized from message
	// metadata such as content-length.
	HeaderValues(name string) []string

	// HasHeader reports whether HeaderValues would return any value.
	HasHeader(name string) bool

	// RequestHeaderValues returns every value of the named header of the
	// request. For a request message it equals HeaderValues.
	RequestHeaderValues(name string) []string

	// DerivedValue returns the value of a derived component such as
	// @method. It fails with ErrComponentMissing when the component does
	// not apply to the message and ErrNotSupported for unknown names.
	DerivedValue(name string) (string, error)

	// QueryParamValues returns the raw, still-encoded values of every
	// query parameter whose decoded name equals the decoded name given.
	QueryParamValues(name string) []string

	// HasQueryParam reports whether QueryParamValues would return any value.
	HasQueryParam(name string) bool

	// TrailerValues always fails with ErrNotSupported; trailers cannot be
	// signed.
	TrailerValues(name string) ([]string, error)
}

// queryParam is one raw query pair with its decoded name.
type queryParam struct {
	name  string
	value string
}

// HTTPMessage adapts net/http types to Message.
type HTTPMessage struct {
	req   *http.Request
	resp  *http.Response
	query []queryParam
}

var _ Message = (*HTTPMessage)(nil)

// NewRequestMessage returns a Message for a request.
func NewRequestMessage(r *http.Request) *HTTPMessage {
	m := &HTTPMessage{req: r}
	m.query = splitQuery(rawQuery(r))

	return m
}

// NewResponseMessage returns a Message for a response. When r is nil the
// response's own Request is used for request-derived components.
func NewResponseMessage(r *http.Request, resp *http.Response) *HTTPMessage {
	if r == nil && resp != nil {
		r = resp.Request
	}

	m := &HTTPMessage{req: r, resp: resp}
	m.query = splitQuery(rawQuery(r))

	return m
}

// IsResponse reports whether the message being signed is a response.
func (m *HTTPMessage) IsResponse() bool { return m.resp != nil }

func (m *HTTPMessage) HeaderValues(name string) []string {
	if m.resp != nil {
		return headerValues(m.resp.Header, name, "", contentLength(m.resp.ContentLength, false))
	}

	return m.RequestHeaderValues(name)
}

func (m *HTTPMessage) HasHeader(name string) bool {
	return len(m.HeaderValues(name)) > 0
}

// RequestHeaderValues returns request header values. The "host" header is
// special-cased because net/http stores it in Request.Host rather than in
// the header map.
func (m *HTTPMessage) RequestHeaderValues(name string) []string {
	if m.req == nil {
		return nil
	}

	return headerValues(m.req.Header, name, m.req.Host, requestContentLength(m.req))
}

func (m *HTTPMessage) DerivedValue(name string) (string, error) {
	if name == ComponentStatus {
		if m.resp == nil {
			return "", fmt.Errorf("%w: %s applies only to responses", ErrComponentMissing, name)
		}

		return strconv.Itoa(m.resp.StatusCode), nil
	}

	if _, ok := derivedNames[name]; !ok {
		return "", fmt.Errorf("%w: derived component %q", ErrNotSupported, name)
	}

	r := m.req
	if r == nil || r.URL == nil {
		return "", fmt.Errorf("%w: %s needs a request", ErrComponentMissing, name)
	}

	switch name {
	case ComponentMethod:
		if r.Method == "" {
			return http.MethodGet, nil
		}

		return r.Method, nil

	case ComponentAuthority:
		return authority(r), nil

	case ComponentScheme:
		return scheme(r), nil

	case ComponentTargetURI:
		return targetURI(r), nil

	case ComponentRequestTarget:
		return requestTarget(r), nil

	case ComponentPath:
		return path(r), nil

	default: // ComponentQuery
		if q := rawQuery(r); q != "" {
			return "?" + q, nil
		}

		return "?", nil
	}
}

func (m *HTTPMessage) QueryParamValues(name string) []string {
	want := decodeOrRaw(name)

	var values []string
	for _, p := range m.query {
		if p.name == want {
			values = append(values, p.value)
		}
	}

	return values
}

func (m *HTTPMessage) HasQueryParam(name string) bool {
	return len(m.QueryParamValues(name)) > 0
}

func (m *HTTPMessage) TrailerValues(name string) ([]string, error) {
	return nil, fmt.Errorf("%w: trailer %q", ErrNotSupported, name)
}

// headerValues returns trimmed values of a header. A missing host or
// content-length header is synthesized from the given metadata; an empty
// length means there is nothing to synthesize.
func headerValues(h http.Header, name, host, length string) []string {
	name = strings.ToLower(name)
	raw := h.Values(name)

	if len(raw) == 0 {
		switch {
		case name == "host" && host != "":
			return []string{host}
		case name == "content-length" && length != "":
			return []string{length}
		default:
			return nil
		}
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		values[i] = strings.TrimSpace(v)
	}

	return values
}

// requestContentLength mirrors the Content-Length net/http sends: a known
// length, or 0 for an empty POST, PUT or PATCH body.
func requestContentLength(r *http.Request) string {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return contentLength(r.ContentLength, r.Body == nil || r.Body == http.NoBody)
	default:
		return contentLength(r.ContentLength, false)
	}
}

func contentLength(n int64, emptyBody bool) string {
	switch {
	case n > 0:
		return strconv.FormatInt(n, 10)
	case n == 0 && emptyBody:
		return "0"
	default:
		return ""
	}
}

// splitQuery splits a raw query string into pairs. Names are decoded for
// matching; values stay encoded.
func splitQuery(q string) []queryParam {
	if q == "" {
		return nil
	}

	var params []queryParam
	for pair := range strings.SplitSeq(q, "&") {
		if pair == "" {
			continue
		}

		name, value, _ := strings.Cut(pair, "=")
		params = append(params, queryParam{name: decodeOrRaw(name), value: value})
	}

	return params
}

func decodeOrRaw(s string) string {
	if d, err := percent.Decode(s); err == nil {
		return d
	}

	return s
}

func rawQuery(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}

	return r.URL.RawQuery
}

// authority returns the authority component (host[:port]) from the request.
func authority(r *http.Request) string {
	if r.Host != "" {
		return strings.ToLower(r.Host)
	}

	if r.URL.Host != "" {
		return strings.ToLower(r.URL.Host)
	}

	return ""
}

// scheme returns the request scheme (http or https).
func scheme(r *http.Request) string {
	if r.URL.Scheme != "" {
		return strings.ToLower(r.URL.Scheme)
	}

	if r.TLS != nil {
		return "https"
	}

	return "http"
}

func path(r *http.Request) string {
	if p := r.URL.EscapedPath(); p != "" {
		return p
	}

	return "/"
}

// requestTarget returns the path and query of the request target as sent.
// A received origin-form, authority-form or asterisk-form target is used
// verbatim. An absolute-form target is cut down to its raw path and query.
// Without a received target, path and query come from the URL.
func requestTarget(r *http.Request) string {
	if r.RequestURI != "" {
		return originForm(r.RequestURI)
	}

	if r.URL.RawQuery != "" || r.URL.ForceQuery {
		return path(r) + "?" + r.URL.RawQuery
	}

	return path(r)
}

// originForm strips the scheme and authority from an absolute-form target.
func originForm(target string) string {
	_, rest, ok := strings.Cut(target, "://")
	if !ok || strings.HasPrefix(target, "/") {
		return target
	}

	i := strings.IndexAny(rest, "/?")
	if i < 0 {
		return "/"
	}

	if rest[i] == '?' {
		return "/" + rest[i:]
	}

	return rest[i:]
}

// targetURI reconstructs the full target URI for the request.
func targetURI(r *http.Request) string {
	uri := scheme(r) + "://" + authority(r) + path(r)
	if r.URL.RawQuery != "" || r.URL.ForceQuery {
		uri += "?" + r.URL.RawQuery
	}

	return uri
}
