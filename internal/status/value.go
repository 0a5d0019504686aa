// Package status builds a flat snapshot of MySQL/MariaDB server status and
// variables, either from a live server or from a captured text dump.
package status

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the concrete type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value is a single status or variable value as reported by the source.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Int returns an integer Value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// String renders v the way the server would print it.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.s
	}
}

// Float64 coerces v to a float. String values are parsed after trimming;
// anything that is not a number returns an error.
func (v Value) Float64() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v.s)
		}
		return f, nil
	}
}

// Mapping is a lower-cased key to Value snapshot. It is built once per run
// and never mutated afterwards.
type Mapping struct {
	values map[string]Value
}

// New builds a Mapping from values, lower-casing every key. When two keys
// collide after lower-casing the result is unspecified; callers that care
// about ordering should use a builder.
func New(values map[string]Value) Mapping {
	b := newBuilder()
	for k, v := range values {
		b.set(k, v)
	}
	return b.mapping()
}

// Lookup returns the value stored under key. The key is matched as-is, so
// callers are expected to pass a lower-cased label.
func (m Mapping) Lookup(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m Mapping) Len() int { return len(m.values) }

// Keys returns every key in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every key in sorted order.
func (m Mapping) Each(fn func(key string, v Value)) {
	for _, k := range m.Keys() {
		fn(k, m.values[k])
	}
}

// builder accumulates key/value pairs; later sets on the same key win.
type builder struct {
	values map[string]Value
}

func newBuilder() *builder {
	return &builder{values: make(map[string]Value)}
}

func (b *builder) set(key string, v Value) {
	b.values[strings.ToLower(key)] = v
}

func (b *builder) mapping() Mapping {
	return Mapping{values: b.values}
}
