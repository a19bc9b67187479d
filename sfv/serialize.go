package sfv

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Serialize produces the canonical text form of v. Serializing an Unknown
// value fails with ErrUnsupportedType.
func Serialize(v Value) (string, error) {
	switch v.kind {
	case KindList:
		return SerializeList(v.list)
	case KindDictionary:
		return SerializeDictionary(v.dict)
	case KindItem:
		return SerializeItem(v.item)
	default:
		return "", fmt.Errorf("%w: %s value", ErrUnsupportedType, v.kind)
	}
}

// SerializeList serializes l with members separated by ", ".
func SerializeList(l List) (string, error) {
	var b strings.Builder

	for i, m := range l {
		if i > 0 {
			b.WriteString(", ")
		}

		if err := writeMember(&b, m); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// SerializeDictionary serializes d with members separated by ", ". Members
// holding boolean true are written as the bare key followed by their
// parameters.
func SerializeDictionary(d *Dictionary) (string, error) {
	var b strings.Builder

	for i, key := range d.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}

		if err := writeKey(&b, key); err != nil {
			return "", err
		}

		m, _ := d.Get(key)

		if it, ok := m.(Item); ok {
			if v, isBool := it.Value.(bool); isBool && v {
				if err := writeParams(&b, it.Params); err != nil {
					return "", err
				}

				continue
			}
		}

		b.WriteByte('=')

		if err := writeMember(&b, m); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// SerializeMember serializes a single item or inner list including its
// parameters.
func SerializeMember(m Member) (string, error) {
	var b strings.Builder

	if err := writeMember(&b, m); err != nil {
		return "", err
	}

	return b.String(), nil
}

// SerializeItem serializes a bare item followed by its parameters.
func SerializeItem(it Item) (string, error) {
	return SerializeMember(it)
}

// SerializeInnerList serializes an inner list with items separated by a
// single space, followed by its parameters.
func SerializeInnerList(il InnerList) (string, error) {
	return SerializeMember(il)
}

// SerializeParams serializes parameters, each with a leading ';'.
func SerializeParams(params Params) (string, error) {
	var b strings.Builder

	if err := writeParams(&b, params); err != nil {
		return "", err
	}

	return b.String(), nil
}

// SerializeBareItem serializes a bare item value without parameters.
func SerializeBareItem(v any) (string, error) {
	var b strings.Builder

	if err := writeBareItem(&b, v); err != nil {
		return "", err
	}

	return b.String(), nil
}

func writeMember(b *strings.Builder, m Member) error {
	switch v := m.(type) {
	case Item:
		if err := writeBareItem(b, v.Value); err != nil {
			return err
		}

		return writeParams(b, v.Params)

	case InnerList:
		b.WriteByte('(')

		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}

			if err := writeBareItem(b, it.Value); err != nil {
				return err
			}

			if err := writeParams(b, it.Params); err != nil {
				return err
			}
		}

		b.WriteByte(')')

		return writeParams(b, v.Params)

	default:
		return fmt.Errorf("%w: member %T", ErrUnsupportedType, m)
	}
}

func writeParams(b *strings.Builder, params Params) error {
	for _, p := range params {
		b.WriteByte(';')

		if err := writeKey(b, p.Key); err != nil {
			return err
		}

		if v, ok := p.Value.(bool); ok && v {
			continue
		}

		b.WriteByte('=')

		if err := writeBareItem(b, p.Value); err != nil {
			return err
		}
	}

	return nil
}

func writeKey(b *strings.Builder, key string) error {
	if key == "" || (!isLCAlpha(key[0]) && key[0] != '*') {
		return fmt.Errorf("%w: key %q", ErrOutOfRange, key)
	}

	for i := 1; i < len(key); i++ {
		if !isKeyChar(key[i]) {
			return fmt.Errorf("%w: key %q", ErrOutOfRange, key)
		}
	}

	b.WriteString(key)

	return nil
}

func writeBareItem(b *strings.Builder, v any) error {
	switch v := v.(type) {
	case int64:
		return writeInteger(b, v)
	case int:
		return writeInteger(b, int64(v))
	case Decimal:
		return writeDecimal(b, float64(v))
	case string:
		return writeString(b, v)
	case Token:
		return writeToken(b, v)
	case []byte:
		b.WriteByte(':')
		b.WriteString(base64.StdEncoding.EncodeToString(v))
		b.WriteByte(':')

		return nil
	case bool:
		if v {
			b.WriteString("?1")
		} else {
			b.WriteString("?0")
		}

		return nil
	default:
		return fmt.Errorf("%w: bare item %T", ErrUnsupportedType, v)
	}
}

func writeInteger(b *strings.Builder, n int64) error {
	if n > maxInteger || n < minInteger {
		return fmt.Errorf("%w: integer %d", ErrOutOfRange, n)
	}

	b.WriteString(strconv.FormatInt(n, 10))

	return nil
}

func writeDecimal(b *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: decimal %v", ErrOutOfRange, f)
	}

	rounded := math.RoundToEven(f*1000) / 1000
	if math.Abs(rounded) >= 1e12 {
		return fmt.Errorf("%w: decimal %v", ErrOutOfRange, f)
	}

	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	b.WriteString(s)

	return nil
}

func writeString(b *strings.Builder, s string) error {
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("%w: string contains byte 0x%02x", ErrOutOfRange, c)
		}

		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}

		b.WriteByte(c)
	}

	b.WriteByte('"')

	return nil
}

func writeToken(b *strings.Builder, t Token) error {
	s := string(t)
	if s == "" || (!isAlpha(s[0]) && s[0] != '*') {
		return fmt.Errorf("%w: token %q", ErrOutOfRange, s)
	}

	for i := 1; i < len(s); i++ {
		if c := s[i]; !isTChar(c) && c != ':' && c != '/' {
			return fmt.Errorf("%w: token %q", ErrOutOfRange, s)
		}
	}

	b.WriteString(s)

	return nil
}
