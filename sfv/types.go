package sfv

// Kind identifies which top-level shape a Value holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindList
	KindDictionary
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Token is an unquoted identifier bare item. It is kept distinct from
// string so that it serializes without quotes.
type Token string

// Decimal is a decimal bare item. At most three fractional digits survive
// serialization.
type Decimal float64

// Param is a single parameter of an item or inner list.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of parameters. Keys are unique.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}

	return nil, false
}

// Set stores value under key. An existing key keeps its position.
func (p *Params) Set(key string, value any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}

	*p = append(*p, Param{Key: key, Value: value})
}

// Member is a list or dictionary member: either an Item or an InnerList.
type Member interface {
	member()
}

// Item is a bare item with parameters.
type Item struct {
	Value  any
	Params Params
}

func (Item) member() {}

// InnerList is a parenthesized list of items with its own parameters.
type InnerList struct {
	Items  []Item
	Params Params
}

func (InnerList) member() {}

// List is an ordered sequence of members.
type List []Member

// Dictionary is an ordered map of keys to members. Setting an existing
// key replaces its value without moving it.
type Dictionary struct {
	keys   []string
	values map[string]Member
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{values: make(map[string]Member)}
}

// Get returns the member stored under key.
func (d *Dictionary) Get(key string) (Member, bool) {
	if d == nil {
		return nil, false
	}

	m, ok := d.values[key]

	return m, ok
}

// Set stores m under key.
func (d *Dictionary) Set(key string, m Member) {
	if d.values == nil {
		d.values = make(map[string]Member)
	}

	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.values[key] = m
}

// Keys returns the dictionary keys in order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}

	out := make([]string, len(d.keys))
	copy(out, d.keys)

	return out
}

// Len returns the number of members.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Value is a top-level structured value: a List, a Dictionary, an Item, or
// nothing (KindUnknown).
type Value struct {
	kind Kind
	list List
	dict *Dictionary
	item Item
}

// ListValue wraps l as a Value.
func ListValue(l List) Value {
	return Value{kind: KindList, list: l}
}

// DictionaryValue wraps d as a Value.
func DictionaryValue(d *Dictionary) Value {
	if d == nil {
		d = NewDictionary()
	}

	return Value{kind: KindDictionary, dict: d}
}

// ItemValue wraps it as a Value.
func ItemValue(it Item) Value {
	return Value{kind: KindItem, item: it}
}

// Kind reports which shape v holds.
func (v Value) Kind() Kind { return v.kind }

// List returns the list held by v, or nil.
func (v Value) List() List { return v.list }

// Dictionary returns the dictionary held by v, or nil.
func (v Value) Dictionary() *Dictionary { return v.dict }

// Item returns the item held by v.
func (v Value) Item() Item { return v.item }
