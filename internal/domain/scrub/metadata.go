package scrub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type valueKind uint8

const (
	kindString valueKind = iota + 1
	kindNumber
	kindBool
	kindStrings
)

// Value is a metadata value: a string, a number, a boolean or a list of
// strings. The zero Value is invalid and is dropped by Set.
type Value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
	list []string
}

func String(s string) Value       { return Value{kind: kindString, str: s} }
func Number(n float64) Value      { return Value{kind: kindNumber, num: n} }
func Int(n int) Value             { return Value{kind: kindNumber, num: float64(n)} }
func Bool(b bool) Value           { return Value{kind: kindBool, b: b} }
func Strings(list []string) Value { return Value{kind: kindStrings, list: append([]string{}, list...)} }

func (v Value) AsString() (string, bool) { return v.str, v.kind == kindString }
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == kindNumber }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == kindBool }

func (v Value) AsStrings() ([]string, bool) {
	if v.kind != kindStrings {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindString:
		return json.Marshal(v.str)
	case kindNumber:
		return json.Marshal(v.num)
	case kindBool:
		return json.Marshal(v.b)
	case kindStrings:
		return json.Marshal(v.list)
	}
	return nil, fmt.Errorf("metadata: empty value")
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return err
		}
		*v = Number(f)
	case bool:
		*v = Bool(x)
	case []interface{}:
		list := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("metadata: list items must be strings, got %T", item)
			}
			list = append(list, s)
		}
		*v = Strings(list)
	default:
		return fmt.Errorf("metadata: unsupported value %T", raw)
	}
	return nil
}

type Field struct {
	Key   string
	Value Value
}

// Metadata is an ordered set of key/value pairs. It serializes to a JSON
// object with keys in insertion order.
type Metadata []Field

// Set replaces the value for key, keeping its position, or appends it.
func (m *Metadata) Set(key string, v Value) {
	if v.kind == 0 {
		return
	}
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = v
			return
		}
	}
	*m = append(*m, Field{Key: key, Value: v})
}

func (m Metadata) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", f.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected object")
	}
	out := Metadata{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected key, got %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
