package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/frank"
	"github.com/syssam/frank/dialect"
	"github.com/syssam/frank/schema/meta"
)

// SelectSpec describes a SELECT statement over one record type.
type SelectSpec struct {
	Meta    *meta.Meta   // Home record type.
	Columns []string     // Selected columns. Defaults to the select columns of Meta.
	Joins   []*meta.Meta // Joined record types.
	Where   Predicate
	OrderBy []string // Column names, prefixed with "-" for descending order.
	Limit   int      // Zero means no limit.
}

// BuildSelect renders the statement described by spec. Columns are
// qualified with the home alias when joins are present.
//
//	SELECT id, name FROM widgets w WHERE counter >= ? ORDER BY name
func BuildSelect(spec SelectSpec) (string, []any, error) {
	m := spec.Meta
	if m == nil {
		return "", nil, frank.NewConfigurationError("select without record type")
	}
	prefix := ""
	if len(spec.Joins) > 0 {
		prefix = m.Short()
	}
	cols := spec.Columns
	if len(cols) == 0 {
		cols = m.SelectColumns()
	}
	qualified := make([]string, len(cols))
	for i, c := range cols {
		if err := checkColumn(c); err != nil {
			return "", nil, err
		}
		qualified[i] = qualify(prefix, c)
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(qualified, ", "))
	b.WriteString(" FROM ")
	b.WriteString(m.Alias())
	seen := map[string]string{m.Short(): m.Table()}
	for _, j := range spec.Joins {
		if t, ok := seen[j.Short()]; ok {
			return "", nil, frank.NewConfigurationError("join of %s: alias %q is already used by %s", j.Table(), j.Short(), t)
		}
		seen[j.Short()] = j.Table()
		on, err := joinCondition(m, j)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" INNER JOIN ")
		b.WriteString(j.Alias())
		b.WriteString(" ON ")
		b.WriteString(on)
	}
	args, err := writeWhere(&b, spec.Where.Clauses(), prefix)
	if err != nil {
		return "", nil, err
	}
	if len(spec.OrderBy) > 0 {
		order := make([]string, len(spec.OrderBy))
		for i, o := range spec.OrderBy {
			col, dir := o, ""
			if strings.HasPrefix(o, "-") {
				col, dir = o[1:], " DESC"
			}
			if err := checkColumn(col); err != nil {
				return "", nil, err
			}
			order[i] = qualify(prefix, col) + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(order, ", "))
	}
	if spec.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", spec.Limit)
	}
	return b.String(), args, nil
}

// joinCondition renders the ON condition joining j to home. The foreign
// key may be declared on either side.
func joinCondition(home, j *meta.Meta) (string, error) {
	if fk, ok := home.ForeignKeyTo(j.Name()); ok {
		return fmt.Sprintf("%s.%s = %s.%s", j.Short(), meta.IdentityColumn, home.Short(), fk.Column()), nil
	}
	if fk, ok := j.ForeignKeyTo(home.Name()); ok {
		return fmt.Sprintf("%s.%s = %s.%s", j.Short(), fk.Column(), home.Short(), meta.IdentityColumn), nil
	}
	return "", frank.NewConfigurationError("no foreign key between %s and %s", home.Name(), j.Name())
}

// BuildUpdate renders an UPDATE of the columns of set, ordered by name,
// on rows matching where. Nil where values match NULL columns.
//
//	UPDATE widgets SET counter = ?, name = ? WHERE id = ?
func BuildUpdate(table string, set map[string]any, where Predicate) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	if len(set) == 0 {
		return "", nil, frank.NewConfigurationError("update of %s sets no columns", table)
	}
	if len(where) == 0 {
		return "", nil, frank.NewConfigurationError("update of %s has no condition", table)
	}
	cols := make([]string, 0, len(set))
	for c := range set {
		if err := checkColumn(c); err != nil {
			return "", nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	var (
		b     strings.Builder
		args  = make([]any, 0, len(set)+len(where))
		pairs = make([]string, len(cols))
	)
	for i, c := range cols {
		pairs[i] = c + " = ?"
		args = append(args, set[c])
	}
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(pairs, ", "))
	clauses := where.Clauses()
	for i, c := range clauses {
		if c.Op == "=" && c.Value == nil {
			clauses[i].Op = "IS NULL"
		}
	}
	wargs, err := writeWhere(&b, clauses, "")
	if err != nil {
		return "", nil, err
	}
	return b.String(), append(args, wargs...), nil
}

// BuildDelete renders the deletion of the row with the given identity.
func BuildDelete(table string, id any) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	if id == nil {
		return "", nil, frank.NewConfigurationError("delete from %s without identity", table)
	}
	return "DELETE FROM " + table + " WHERE " + meta.IdentityColumn + " = ?", []any{id}, nil
}

// BuildInsert renders an INSERT binding values to cols positionally.
//
//	INSERT INTO widgets (name, counter) VALUES (?, ?)
func BuildInsert(table string, cols []string, values []any) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	if len(cols) == 0 || len(cols) != len(values) {
		return "", nil, frank.NewConfigurationError("insert into %s: %d columns for %d values", table, len(cols), len(values))
	}
	for _, c := range cols {
		if err := checkColumn(c); err != nil {
			return "", nil, err
		}
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")"
	return q, values, nil
}

// BuildCount renders the count of rows of table matching where.
func BuildCount(table string, where Predicate) (string, []any, error) {
	if err := checkTable(table); err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) AS count FROM ")
	b.WriteString(table)
	args, err := writeWhere(&b, where.Clauses(), "")
	if err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

func writeWhere(b *strings.Builder, clauses []Clause, prefix string) ([]any, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	for _, c := range clauses {
		if err := checkColumn(c.Column); err != nil {
			return nil, err
		}
	}
	expr, args := render(clauses, prefix)
	b.WriteString(" WHERE ")
	b.WriteString(expr)
	return args, nil
}

func qualify(prefix, col string) string {
	if prefix == "" || strings.Contains(col, ".") {
		return col
	}
	return prefix + "." + col
}

func checkTable(table string) error {
	if !dialect.IsValidIdentifier(table) {
		return frank.NewConfigurationError("invalid table name %q", table)
	}
	return nil
}

// checkColumn accepts plain and alias qualified column names.
func checkColumn(col string) error {
	if col == "*" {
		return nil
	}
	alias, name, ok := strings.Cut(col, ".")
	if ok && dialect.IsValidIdentifier(alias) && dialect.IsValidIdentifier(name) {
		return nil
	}
	if !ok && dialect.IsValidIdentifier(col) {
		return nil
	}
	return frank.NewConfigurationError("invalid column name %q", col)
}
