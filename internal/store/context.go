package store

import (
	"encoding/json"
	"strings"
)

// ValueKind discriminates the two shapes a context value can take: a plain
// string answer, or a list of strings (multi-select answers and uploaded
// image references).
type ValueKind int

const (
	KindString ValueKind = iota
	KindList
)

// Value is one answer in a session context.
type Value struct {
	kind ValueKind
	str  string
	list []string
}

func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func ListValue(items []string) Value {
	return Value{kind: KindList, list: items}
}

func (v Value) Kind() ValueKind { return v.kind }

// String returns the scalar form. A list collapses to a comma-joined string
// so template fills and prompts always have something printable.
func (v Value) String() string {
	if v.kind == KindList {
		return strings.Join(v.list, ", ")
	}
	return v.str
}

// List returns the list form; a scalar becomes a single-element list.
func (v Value) List() []string {
	if v.kind == KindList {
		return v.list
	}
	if v.str == "" {
		return nil
	}
	return []string{v.str}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindList {
		if v.list == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a JSON string, an array of strings, or any other
// scalar (numbers, booleans), which is kept as its literal text. Answers
// arrive untyped over the wire and adaptive fields have no schema.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ListValue(list)
		return nil
	}
	*v = StringValue(strings.TrimSpace(string(data)))
	return nil
}

// Context is the accumulated interview state for one session: field name to
// answer value, keys unique, last write wins.
type Context map[string]Value

// Has reports key presence. Presence, not truthiness, is what marks a field
// answered.
func (c Context) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// GetString returns the scalar form of a field, or fallback when absent.
func (c Context) GetString(field, fallback string) string {
	v, ok := c[field]
	if !ok {
		return fallback
	}
	return v.String()
}

// GetList returns the list form of a field, or nil when absent.
func (c Context) GetList(field string) []string {
	v, ok := c[field]
	if !ok {
		return nil
	}
	return v.List()
}

// Clone returns a fresh copy. Answer merges always go through a copy so the
// stored mapping is replaced, never mutated in place.
func (c Context) Clone() Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}
