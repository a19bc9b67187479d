// Package sfv implements the Structured Field Values text format of
// RFC 8941: lists, dictionaries, items, inner lists, parameters and the
// typed bare items (integer, decimal, string, token, byte sequence and
// boolean).
//
// # Parsing
//
// Structured values carry no type marker, so the caller names the top-level
// type it expects:
//
//	dict, err := sfv.ParseDictionary(`a=1, b=2;x="y"`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	member, ok := dict.Get("b")
//
// Parse errors are reported as *ParseError values that wrap ErrMalformed.
//
// # Serializing
//
// Serialization is deterministic and locale independent. Boolean true
// parameters and dictionary members are written in their short form, so
// "key=?1" becomes "key":
//
//	s, err := sfv.Serialize(sfv.DictionaryValue(dict))
//
// Bare item values are represented by Go types: bool, int64, Decimal,
// string, Token and []byte.
package sfv
