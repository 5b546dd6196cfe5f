// Package catalogrow implements the dynamic, schema-less row representation
// that catalog SQL results are decoded into: an ordered map from column name
// to a tagged value, as recommended by spec section 9 ("Dynamic, schema-less
// rows"). The sorted-merge differ (internal/sortedmerge) operates purely in
// terms of this type and never needs to know a category's concrete shape.
package catalogrow

import (
	"fmt"
	"time"
)

// Kind tags the payload carried by a Value.
type Kind int

const (
	Null Kind = iota
	Int
	Text
	Bool
	Float
	Timestamp
	Bytes
	TextSlice
)

// Value is a tagged union over the scalar (and text-array) types that
// PostgreSQL catalog queries return. Two Values are Equal when they carry
// the same Kind and the same payload; NULL equals NULL regardless of the
// column's declared type, matching spec section 4.2's null-aware equality.
type Value struct {
	Kind Kind

	i   int64
	s   string
	b   bool
	f   float64
	t   time.Time
	by  []byte
	ss  []string
}

func NewNull() Value               { return Value{Kind: Null} }
func NewInt(v int64) Value         { return Value{Kind: Int, i: v} }
func NewText(v string) Value       { return Value{Kind: Text, s: v} }
func NewBool(v bool) Value         { return Value{Kind: Bool, b: v} }
func NewFloat(v float64) Value     { return Value{Kind: Float, f: v} }
func NewTimestamp(v time.Time) Value { return Value{Kind: Timestamp, t: v} }
func NewBytes(v []byte) Value      { return Value{Kind: Bytes, by: v} }
func NewTextSlice(v []string) Value { return Value{Kind: TextSlice, ss: v} }

// FromAny converts a value as returned by a pgx row scan (any) into a
// Value, tagging it by its concrete Go type.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return NewNull()
	case int64:
		return NewInt(t)
	case int32:
		return NewInt(int64(t))
	case int:
		return NewInt(int64(t))
	case string:
		return NewText(t)
	case bool:
		return NewBool(t)
	case float64:
		return NewFloat(t)
	case float32:
		return NewFloat(float64(t))
	case time.Time:
		return NewTimestamp(t)
	case []byte:
		return NewBytes(t)
	case []string:
		return NewTextSlice(t)
	default:
		return NewText(fmt.Sprintf("%v", t))
	}
}

// IsNull reports whether the value is the NULL tag.
func (v Value) IsNull() bool { return v.Kind == Null }

// String renders the value the way it should appear inside generated DML
// literals and inside the lexicographic sort key (spec section 4.2).
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return ""
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Text:
		return v.s
	case Bool:
		if v.b {
			return "t"
		}
		return "f"
	case Float:
		return fmt.Sprintf("%v", v.f)
	case Timestamp:
		return v.t.Format(time.RFC3339Nano)
	case Bytes:
		return string(v.by)
	case TextSlice:
		return fmt.Sprintf("%v", v.ss)
	default:
		return ""
	}
}

// Equal implements the null-aware equality from spec section 4.2: NULL ==
// NULL, and otherwise same-kind same-payload equality.
func Equal(a, b Value) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Int:
		return a.i == b.i
	case Text:
		return a.s == b.s
	case Bool:
		return a.b == b.b
	case Float:
		return a.f == b.f
	case Timestamp:
		return a.t.Equal(b.t)
	case Bytes:
		return string(a.by) == string(b.by)
	case TextSlice:
		if len(a.ss) != len(b.ss) {
			return false
		}
		for i := range a.ss {
			if a.ss[i] != b.ss[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
