package query

import (
	"reflect"
	"sort"
	"strings"
)

// Predicate maps column names, optionally suffixed with an operator, to
// values. Clauses are joined with AND.
//
//	query.Predicate{
//	    "counter__gte": 4,          // counter >= ?
//	    "name__ilike":  "%abc%",    // name LIKE ?
//	    "data__isnull": false,      // data IS NOT NULL
//	}
type Predicate map[string]any

// Operator suffixes of predicate keys.
const (
	SuffixGT     = "gt"
	SuffixLT     = "lt"
	SuffixGTE    = "gte"
	SuffixLTE    = "lte"
	SuffixILike  = "ilike"
	SuffixIsNull = "isnull"
)

var operators = map[string]string{
	SuffixGT:    ">",
	SuffixLT:    "<",
	SuffixGTE:   ">=",
	SuffixLTE:   "<=",
	SuffixILike: "LIKE",
}

// Clause is a single parsed predicate entry.
type Clause struct {
	Column string
	Op     string // "=", ">", "<", ">=", "<=", "LIKE", "IS NULL" or "IS NOT NULL".
	Value  any
}

// Bound reports if the clause binds its value as a parameter.
func (c Clause) Bound() bool {
	return c.Op != "IS NULL" && c.Op != "IS NOT NULL"
}

// SQL renders the clause, qualifying the column with prefix if not empty.
func (c Clause) SQL(prefix string) string {
	col := c.Column
	if prefix != "" && !strings.Contains(col, ".") {
		col = prefix + "." + col
	}
	if !c.Bound() {
		return col + " " + c.Op
	}
	return col + " " + c.Op + " ?"
}

// ParsePredicate parses one predicate entry. Keys without a known
// operator suffix compare for equality.
func ParsePredicate(key string, value any) Clause {
	col, suffix, ok := cut(key)
	if !ok {
		return Clause{Column: key, Op: "=", Value: value}
	}
	if suffix == SuffixIsNull {
		if truthy(value) {
			return Clause{Column: col, Op: "IS NULL"}
		}
		return Clause{Column: col, Op: "IS NOT NULL"}
	}
	return Clause{Column: col, Op: operators[suffix], Value: value}
}

// cut splits key on its last "__" if followed by a known suffix.
func cut(key string) (col, suffix string, ok bool) {
	i := strings.LastIndex(key, "__")
	if i <= 0 {
		return key, "", false
	}
	col, suffix = key[:i], key[i+2:]
	if _, ok := operators[suffix]; ok || suffix == SuffixIsNull {
		return col, suffix, true
	}
	return key, "", false
}

// Clauses parses every entry of p, ordered by key.
func (p Predicate) Clauses() []Clause {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	clauses := make([]Clause, len(keys))
	for i, k := range keys {
		clauses[i] = ParsePredicate(k, p[k])
	}
	return clauses
}

// Render renders p as a boolean expression and its bound arguments. The
// result is empty if p is.
func (p Predicate) Render(prefix string) (string, []any) {
	return render(p.Clauses(), prefix)
}

func render(clauses []Clause, prefix string) (string, []any) {
	var (
		parts = make([]string, 0, len(clauses))
		args  []any
	)
	for _, c := range clauses {
		parts = append(parts, c.SQL(prefix))
		if c.Bound() {
			args = append(args, c.Value)
		}
	}
	return strings.Join(parts, " AND "), args
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return !rv.IsZero()
	}
	return true
}
