package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

// Value kinds.
const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is one key/value pair of an object, kept in document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is a decoded JSON value. Objects keep their members in source
// order so graph searches visit properties the way the author wrote them.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Str     string
	Items   []*Value
	Members []Member
}

// maxDecodeDepth bounds nesting while decoding a single block.
const maxDecodeDepth = 256

var errTooDeep = errors.New("json nesting too deep")

// ParseValue decodes a single JSON document.
func ParseValue(data string) (*Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (*Value, error) {
	if depth > maxDecodeDepth {
		return nil, errTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return &Value{Kind: Null}, nil
	case bool:
		return &Value{Kind: Bool, Bool: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return &Value{Kind: Number, Number: f, Str: t.String()}, nil
	case string:
		return &Value{Kind: String, Str: t}, nil
	case json.Delim:
		switch t {
		case '[':
			v := &Value{Kind: Array}
			for dec.More() {
				item, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				v.Items = append(v.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		case '{':
			v := &Value{Kind: Object}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				member, err := decodeValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				v.Members = append(v.Members, Member{Key: key, Value: member})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Get returns the first member named key, or nil. It is nil-safe and
// returns nil for non-objects.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != Object {
		return nil
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// IsString reports whether v holds a string.
func (v *Value) IsString() bool { return v != nil && v.Kind == String }

// IsObject reports whether v holds an object.
func (v *Value) IsObject() bool { return v != nil && v.Kind == Object }

// IsArray reports whether v holds an array.
func (v *Value) IsArray() bool { return v != nil && v.Kind == Array }

// Text returns the scalar rendering of strings and numbers, and "" for
// every other kind.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case String, Number:
		return v.Str
	}
	return ""
}

// HasType reports whether the object's @type is typ, either directly or
// as one entry of a type array.
func (v *Value) HasType(typ string) bool {
	t := v.Get("@type")
	switch {
	case t.IsString():
		return t.Str == typ
	case t.IsArray():
		for _, item := range t.Items {
			if item.IsString() && item.Str == typ {
				return true
			}
		}
	}
	return false
}
