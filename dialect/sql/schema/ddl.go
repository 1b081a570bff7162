package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/frank/dialect"
	"github.com/syssam/frank/schema/field"
	"github.com/syssam/frank/schema/meta"
)

// CreateTableSQL returns the CREATE TABLE statement of the record type for
// the given backend. Columns appear in select order: the identity, the
// user columns, then the built-in timestamps.
//
//	CREATE TABLE widgets (id integer PRIMARY KEY autoincrement, name text, created_at datetime, updated_at datetime)
func CreateTableSQL(b dialect.Backend, m *meta.Meta) (string, error) {
	descs := make([]*field.Descriptor, 0, 1+len(m.Columns())+len(m.BuiltIns()))
	descs = append(descs, m.Identity())
	descs = append(descs, m.Columns()...)
	descs = append(descs, m.BuiltIns()...)

	defs := make([]string, 0, len(descs))
	for _, d := range descs {
		typ, err := dialect.Render(b, d)
		if err != nil {
			return "", err
		}
		defs = append(defs, d.Column()+" "+typ)
	}
	suffix, err := dialect.DDLSuffix(b)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(m.Table())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(defs, ", "))
	sb.WriteString(") ")
	sb.WriteString(suffix)
	return strings.TrimRight(sb.String(), " \t\n"), nil
}

var lower = cases.Lower(language.Und)

// Normalize returns the comparable form of a table definition: identifier
// quotes removed, whitespace collapsed and letters lowercased.
func Normalize(ddl string) string {
	ddl = strings.NewReplacer("'", "", "`", "", `"`, "").Replace(ddl)
	return lower.String(strings.Join(strings.Fields(ddl), " "))
}
