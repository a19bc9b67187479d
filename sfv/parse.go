package sfv

import (
	"encoding/base64"
	"strconv"
)

// Number limits per RFC 8941 Section 3.3.1 and 3.3.2.
const (
	maxIntegerDigits     = 15
	maxDecimalIntDigits  = 12
	maxDecimalFracDigits = 3
	maxInteger           = 999_999_999_999_999
	minInteger           = -999_999_999_999_999
)

// parser scans a single field value. The input is never modified.
type parser struct {
	data   string
	offset int
}

// Parse parses input as a structured value of the given kind.
func Parse(input string, kind Kind) (Value, error) {
	switch kind {
	case KindList:
		l, err := ParseList(input)
		if err != nil {
			return Value{}, err
		}

		return ListValue(l), nil

	case KindDictionary:
		d, err := ParseDictionary(input)
		if err != nil {
			return Value{}, err
		}

		return DictionaryValue(d), nil

	case KindItem:
		it, err := ParseItem(input)
		if err != nil {
			return Value{}, err
		}

		return ItemValue(it), nil

	default:
		return Value{}, ErrUnsupportedType
	}
}

// ParseList parses input as a list.
func ParseList(input string) (List, error) {
	p := newParser(input)

	l, err := p.parseList()
	if err != nil {
		return nil, err
	}

	if err := p.finish(); err != nil {
		return nil, err
	}

	return l, nil
}

// ParseDictionary parses input as a dictionary. Duplicate keys keep the
// last value.
func ParseDictionary(input string) (*Dictionary, error) {
	p := newParser(input)

	d, err := p.parseDictionary()
	if err != nil {
		return nil, err
	}

	if err := p.finish(); err != nil {
		return nil, err
	}

	return d, nil
}

// ParseItem parses input as a single item.
func ParseItem(input string) (Item, error) {
	p := newParser(input)

	it, err := p.parseItem()
	if err != nil {
		return Item{}, err
	}

	if err := p.finish(); err != nil {
		return Item{}, err
	}

	return it, nil
}

// ParseInnerList parses input as a single inner list with parameters, as
// used by HTTP message signature parameters.
func ParseInnerList(input string) (InnerList, error) {
	p := newParser(input)

	il, err := p.parseInnerList()
	if err != nil {
		return InnerList{}, err
	}

	if err := p.finish(); err != nil {
		return InnerList{}, err
	}

	return il, nil
}

func newParser(input string) *parser {
	p := &parser{data: input}
	p.skipSP()

	return p
}

// finish discards trailing spaces and fails on anything left over.
func (p *parser) finish() error {
	p.skipSP()

	if !p.eof() {
		return p.errorf("unexpected trailing characters")
	}

	return nil
}

func (p *parser) eof() bool {
	return p.offset >= len(p.data)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}

	return p.data[p.offset]
}

func (p *parser) skipSP() {
	for !p.eof() && p.data[p.offset] == ' ' {
		p.offset++
	}
}

func (p *parser) skipOWS() {
	for !p.eof() && (p.data[p.offset] == ' ' || p.data[p.offset] == '\t') {
		p.offset++
	}
}

func (p *parser) errorf(msg string) *ParseError {
	start := max(p.offset-20, 0)
	end := min(p.offset+20, len(p.data))

	return &ParseError{
		Offset:  p.offset,
		Message: msg,
		Context: p.data[start:end],
	}
}

func (p *parser) parseList() (List, error) {
	var l List

	for !p.eof() {
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}

		l = append(l, m)

		p.skipOWS()
		if p.eof() {
			return l, nil
		}

		if p.peek() != ',' {
			return nil, p.errorf("expected ',' between list members")
		}
		p.offset++

		p.skipOWS()
		if p.eof() {
			return nil, p.errorf("trailing ',' in list")
		}
	}

	return l, nil
}

func (p *parser) parseDictionary() (*Dictionary, error) {
	d := NewDictionary()

	for !p.eof() {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		var m Member
		if p.peek() == '=' {
			p.offset++

			m, err = p.parseMember()
			if err != nil {
				return nil, err
			}
		} else {
			params, err := p.parseParameters()
			if err != nil {
				return nil, err
			}

			m = Item{Value: true, Params: params}
		}

		d.Set(key, m)

		p.skipOWS()
		if p.eof() {
			return d, nil
		}

		if p.peek() != ',' {
			return nil, p.errorf("expected ',' between dictionary members")
		}
		p.offset++

		p.skipOWS()
		if p.eof() {
			return nil, p.errorf("trailing ',' in dictionary")
		}
	}

	return d, nil
}

func (p *parser) parseMember() (Member, error) {
	if p.peek() == '(' {
		return p.parseInnerList()
	}

	return p.parseItem()
}

func (p *parser) parseInnerList() (InnerList, error) {
	if p.peek() != '(' {
		return InnerList{}, p.errorf("expected '(' at start of inner list")
	}
	p.offset++

	var items []Item

	for !p.eof() {
		p.skipSP()

		if p.peek() == ')' {
			p.offset++

			params, err := p.parseParameters()
			if err != nil {
				return InnerList{}, err
			}

			return InnerList{Items: items, Params: params}, nil
		}

		it, err := p.parseItem()
		if err != nil {
			return InnerList{}, err
		}

		items = append(items, it)

		if c := p.peek(); c != ' ' && c != ')' {
			return InnerList{}, p.errorf("expected ' ' or ')' in inner list")
		}
	}

	return InnerList{}, p.errorf("unterminated inner list")
}

func (p *parser) parseItem() (Item, error) {
	v, err := p.parseBareItem()
	if err != nil {
		return Item{}, err
	}

	params, err := p.parseParameters()
	if err != nil {
		return Item{}, err
	}

	return Item{Value: v, Params: params}, nil
}

func (p *parser) parseParameters() (Params, error) {
	var params Params

	for p.peek() == ';' {
		p.offset++
		p.skipSP()

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		var v any = true
		if p.peek() == '=' {
			p.offset++

			v, err = p.parseBareItem()
			if err != nil {
				return nil, err
			}
		}

		params.Set(key, v)
	}

	return params, nil
}

func (p *parser) parseKey() (string, error) {
	start := p.offset

	c := p.peek()
	if !isLCAlpha(c) && c != '*' {
		return "", p.errorf("key must start with a lowercase letter or '*'")
	}
	p.offset++

	for !p.eof() && isKeyChar(p.data[p.offset]) {
		p.offset++
	}

	return p.data[start:p.offset], nil
}

func (p *parser) parseBareItem() (any, error) {
	c := p.peek()

	switch {
	case c == '-' || isDigit(c):
		return p.parseNumber()
	case c == '"':
		return p.parseString()
	case c == '*' || isAlpha(c):
		return p.parseToken(), nil
	case c == ':':
		return p.parseByteSequence()
	case c == '?':
		return p.parseBoolean()
	case p.eof():
		return nil, p.errorf("expected bare item, got end of input")
	default:
		return nil, p.errorf("invalid bare item start character")
	}
}

func (p *parser) parseNumber() (any, error) {
	start := p.offset
	if p.peek() == '-' {
		p.offset++
	}

	if !isDigit(p.peek()) {
		return nil, p.errorf("expected digit")
	}

	digitsStart := p.offset
	dot := -1

	for !p.eof() {
		c := p.data[p.offset]

		if isDigit(c) {
			p.offset++
		} else if c == '.' && dot < 0 {
			if p.offset-digitsStart > maxDecimalIntDigits {
				return nil, p.errorf("decimal integer part too long")
			}

			dot = p.offset
			p.offset++
		} else {
			break
		}

		if dot < 0 && p.offset-digitsStart > maxIntegerDigits {
			return nil, p.errorf("integer has more than 15 digits")
		}
	}

	text := p.data[start:p.offset]

	if dot < 0 {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer")
		}

		return n, nil
	}

	frac := p.offset - dot - 1
	if frac == 0 {
		return nil, p.errorf("decimal must not end with '.'")
	}

	if frac > maxDecimalFracDigits {
		return nil, p.errorf("decimal has more than 3 fractional digits")
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("invalid decimal")
	}

	return Decimal(f), nil
}

func (p *parser) parseString() (string, error) {
	p.offset++ // opening quote

	buf := make([]byte, 0, 16)

	for !p.eof() {
		c := p.data[p.offset]
		p.offset++

		switch {
		case c == '\\':
			if p.eof() {
				return "", p.errorf("unexpected end of input after '\\'")
			}

			next := p.data[p.offset]
			if next != '"' && next != '\\' {
				return "", p.errorf("invalid escape sequence in string")
			}

			buf = append(buf, next)
			p.offset++

		case c == '"':
			return string(buf), nil

		case c < 0x20 || c > 0x7e:
			return "", p.errorf("invalid character in string")

		default:
			buf = append(buf, c)
		}
	}

	return "", p.errorf("unterminated string")
}

func (p *parser) parseToken() Token {
	start := p.offset
	p.offset++

	for !p.eof() {
		c := p.data[p.offset]
		if !isTChar(c) && c != ':' && c != '/' {
			break
		}

		p.offset++
	}

	return Token(p.data[start:p.offset])
}

func (p *parser) parseByteSequence() ([]byte, error) {
	p.offset++ // opening colon
	start := p.offset

	for !p.eof() && p.data[p.offset] != ':' {
		if !isBase64Char(p.data[p.offset]) {
			return nil, p.errorf("invalid character in byte sequence")
		}

		p.offset++
	}

	if p.eof() {
		return nil, p.errorf("unterminated byte sequence")
	}

	encoded := p.data[start:p.offset]
	p.offset++ // closing colon

	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, p.errorf("invalid base64 in byte sequence")
		}
	}

	return b, nil
}

func (p *parser) parseBoolean() (bool, error) {
	p.offset++ // '?'

	switch p.peek() {
	case '1':
		p.offset++
		return true, nil
	case '0':
		p.offset++
		return false, nil
	default:
		return false, p.errorf("boolean must be ?0 or ?1")
	}
}

func isDigit(c byte) bool   { return c >= '0' && c <= '9' }
func isLCAlpha(c byte) bool { return c >= 'a' && c <= 'z' }
func isAlpha(c byte) bool   { return isLCAlpha(c) || (c >= 'A' && c <= 'Z') }

func isKeyChar(c byte) bool {
	return isLCAlpha(c) || isDigit(c) || c == '_' || c == '-' || c == '.' || c == '*'
}

func isTChar(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}

	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}

	return false
}

func isBase64Char(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '+' || c == '/' || c == '='
}
