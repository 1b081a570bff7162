package sql

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/frank/schema/column"
)

// Row is a materialized result row keyed by column name.
type Row map[string]any

// ScanRows reads and closes rows. Values are coerced by column naming
// convention: "_at" and "_timestamp" columns become times, "is_" columns
// become booleans and byte slices become strings.
func ScanRows(rows *sql.Rows) (_ []Row, rerr error) {
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = Coerce(name, values[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Coerce converts a raw driver value of the named column.
func Coerce(name string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch {
	case v == nil:
		return nil
	case strings.HasSuffix(name, "_at"), strings.HasSuffix(name, "_timestamp"):
		if s, ok := v.(string); ok {
			if t, ok := column.ParseTime(s); ok {
				return t
			}
		}
	case strings.HasPrefix(name, "is_"):
		return toBool(v)
	}
	return v
}

func toBool(v any) any {
	switch v := v.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	case time.Time:
		return !v.IsZero()
	}
	return v
}
