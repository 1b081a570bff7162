// Package column holds the per-field values of a record.
package column

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/syssam/frank/schema/field"
)

// Op is the write operation a value is extracted for.
type Op uint8

// Write operations.
const (
	OpNone Op = iota
	OpInsert
	OpUpdate
)

// String implements fmt.Stringer.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	default:
		return "none"
	}
}

// Identifier is implemented by values that stand for a persisted row, such
// as an associated record held by a foreign key.
type Identifier interface {
	ID() any
}

// Value holds the current value of one field. A Value is not safe for
// concurrent mutation.
type Value struct {
	desc     *field.Descriptor
	val      any
	assigned bool // set since the last load or write
}

// New returns an unset value for the given descriptor.
func New(d *field.Descriptor) *Value {
	return &Value{desc: d}
}

// Descriptor returns the descriptor of the value.
func (v *Value) Descriptor() *field.Descriptor { return v.desc }

// Get returns the raw stored value.
func (v *Value) Get() any {
	if v == nil {
		return nil
	}
	return v.val
}

// IsNull reports if the value is unset.
func (v *Value) IsNull() bool { return v == nil || v.val == nil }

// Assigned reports if the value was set, nil included, since it was last
// read from or written to the database.
func (v *Value) Assigned() bool { return v != nil && v.assigned }

// Clean marks the value as in sync with the database.
func (v *Value) Clean() { v.assigned = false }

// Set stores x and marks the value assigned. JSON values are kept as
// serialized text: strings and byte slices are stored as is, other values
// are marshaled.
func (v *Value) Set(x any) error {
	if err := v.set(x); err != nil {
		return err
	}
	v.assigned = true
	return nil
}

func (v *Value) set(x any) error {
	if v.desc.Type != field.TypeJSON {
		v.val = x
		return nil
	}
	switch x := x.(type) {
	case nil:
		v.val = nil
	case string:
		v.val = x
	case []byte:
		v.val = string(x)
	case json.RawMessage:
		v.val = string(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("column: marshal %s: %w", v.desc.Name, err)
		}
		v.val = string(b)
	}
	return nil
}

// Scan stores a value read from the database, converting it to the Go
// type of the column, and marks the value clean. Backends disagree on the
// representation of booleans, decimals and datetimes.
func (v *Value) Scan(x any) error {
	v.assigned = false
	if b, ok := x.([]byte); ok {
		x = string(b)
	}
	if x == nil {
		v.val = nil
		return nil
	}
	raw := &Value{desc: v.desc, val: x}
	switch v.desc.Type {
	case field.TypeBool:
		v.val = raw.Bool()
	case field.TypeInt, field.TypeIdentity, field.TypeForeignKey:
		v.val = raw.Int()
	case field.TypeFloat:
		v.val = raw.Float()
	case field.TypeTime:
		if t := raw.Time(); !t.IsZero() {
			v.val = t
		} else {
			v.val = x
		}
	default:
		return v.set(x)
	}
	return nil
}

// Storage returns the value as written to the database. Associated
// records are replaced by their identity.
func (v *Value) Storage() any {
	if id, ok := v.val.(Identifier); ok {
		return id.ID()
	}
	return v.val
}

func (v *Value) object() (map[string]any, error) {
	if v.desc.Type != field.TypeJSON {
		return nil, fmt.Errorf("column: %s is %s, not json", v.desc.Name, v.desc.Type)
	}
	obj := make(map[string]any)
	s, _ := v.val.(string)
	if s == "" {
		return obj, nil
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("column: unmarshal %s: %w", v.desc.Name, err)
	}
	return obj, nil
}

// GetKey parses the stored JSON object and returns the value at key.
// Numbers are returned as float64.
func (v *Value) GetKey(key string) (any, error) {
	obj, err := v.object()
	if err != nil {
		return nil, err
	}
	return obj[key], nil
}

// SetKey parses the stored JSON object, sets key to x and stores the
// re-serialized text. An unset value is treated as an empty object.
func (v *Value) SetKey(key string, x any) error {
	obj, err := v.object()
	if err != nil {
		return err
	}
	obj[key] = x
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("column: marshal %s: %w", v.desc.Name, err)
	}
	v.val = string(b)
	v.assigned = true
	return nil
}

// Timestamp returns now if the value is unset and its mark fires for op,
// the stored value otherwise. MarkCreate fires on insert, MarkUpdate on
// insert and update.
func (v *Value) Timestamp(op Op, now time.Time) any {
	if v.val == nil {
		switch {
		case op == OpInsert && v.desc.Mark == field.MarkCreate,
			(op == OpInsert || op == OpUpdate) && v.desc.Mark == field.MarkUpdate:
			return now.UTC()
		}
	}
	return v.val
}

// Extract returns the value written for op: datetime values go through
// Timestamp, all others through Storage.
func (v *Value) Extract(op Op, now time.Time) any {
	if v.desc.Type == field.TypeTime && v.desc.Mark != field.MarkNone {
		return v.Timestamp(op, now)
	}
	return v.Storage()
}

// String returns the value as a string. JSON values return their text.
func (v *Value) String() string {
	switch x := v.Get().(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// Int returns the value as an integer. Unset or unconvertible values
// return zero.
func (v *Value) Int() int64 {
	switch x := v.Get().(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case Identifier:
		return New(&field.Descriptor{Type: field.TypeInt}).with(x.ID()).Int()
	}
	return 0
}

// Float returns the value as a float. MySQL decimals are read as text and
// parsed.
func (v *Value) Float() float64 {
	switch x := v.Get().(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(x), 64)
		return f
	}
	return float64(v.Int())
}

// Bool returns the value as a boolean. Backends storing booleans as
// integers are handled.
func (v *Value) Bool() bool {
	switch x := v.Get().(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	}
	return v.Int() != 0
}

// Time returns the value as a time. Unset values return the zero time.
func (v *Value) Time() time.Time {
	switch x := v.Get().(type) {
	case time.Time:
		return x
	case string:
		if t, ok := ParseTime(x); ok {
			return t
		}
	}
	return time.Time{}
}

func (v *Value) with(x any) *Value {
	v.val = x
	return v
}

// TimeLayouts are the accepted textual timestamp layouts, tried in order.
var TimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	// Written by modernc.org/sqlite for time.Time arguments.
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// ParseTime parses s with the first matching layout of TimeLayouts.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
