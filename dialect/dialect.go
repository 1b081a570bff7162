package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/frank"
	"github.com/syssam/frank/schema/field"
)

// Backend identifies a database backend.
type Backend string

// Supported backends.
const (
	SQLite Backend = "sqlite"
	MySQL  Backend = "mysql"
)

// String implements fmt.Stringer.
func (b Backend) String() string { return string(b) }

// ParseBackend parses the backend selector of a configuration. MariaDB is
// served by the MySQL backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "":
		return "", frank.NewConfigurationError("missing database type")
	}
	return "", frank.NewConfigurationError("unknown database type %q", s)
}

// DriverName returns the database/sql driver name of the backend.
func (b Backend) DriverName() string {
	switch b {
	case SQLite:
		// modernc.org/sqlite registers itself as "sqlite".
		return "sqlite"
	default:
		return string(b)
	}
}

// Concept is a semantic concept rendered differently per backend.
type Concept uint8

// Dialect concepts.
const (
	AutoIncrement Concept = iota
	Engine
	Integer
	Char
	Text
	Float
	Bool
	JSON
	DateTime
	LiveDDL
	LiveDDLColumn
)

var conceptNames = map[Concept]string{
	AutoIncrement: "auto_increment",
	Engine:        "engine",
	Integer:       "integer",
	Char:          "char",
	Text:          "text",
	Float:         "float",
	Bool:          "bool",
	JSON:          "json",
	DateTime:      "datetime",
	LiveDDL:       "live_ddl",
	LiveDDLColumn: "live_ddl_column",
}

// String implements fmt.Stringer.
func (c Concept) String() string {
	if s, ok := conceptNames[c]; ok {
		return s
	}
	return fmt.Sprintf("concept(%d)", c)
}

// tokens maps (backend, concept) to SQL fragments. Both backends have the
// same shape and differ only in the substituted tokens. SQLite uses
// "integer" since AUTOINCREMENT is only accepted on an INTEGER PRIMARY KEY.
var tokens = map[Backend]map[Concept]string{
	SQLite: {
		AutoIncrement: "autoincrement",
		Engine:        "",
		Integer:       "integer",
		Char:          "char",
		Text:          "text",
		Float:         "float",
		Bool:          "bool",
		JSON:          "json",
		DateTime:      "datetime",
		LiveDDL:       "select name, sql from sqlite_master where type = 'table' and name = ?",
		LiveDDLColumn: "sql",
	},
	MySQL: {
		AutoIncrement: "auto_increment",
		Engine:        "engine=innodb default charset=utf8",
		Integer:       "int",
		Char:          "varchar",
		Text:          "text",
		Float:         "decimal",
		Bool:          "bool",
		JSON:          "json",
		DateTime:      "datetime",
		LiveDDL:       "show create table",
		LiveDDLColumn: "Create Table",
	},
}

// Token returns the SQL fragment of a concept for the given backend.
func Token(b Backend, c Concept) (string, error) {
	m, ok := tokens[b]
	if !ok {
		return "", frank.NewConfigurationError("unknown backend %q", b)
	}
	v, ok := m[c]
	if !ok {
		return "", frank.NewConfigurationError("backend %s has no mapping for %s", b, c)
	}
	return v, nil
}

// typeConcepts maps semantic types to their type concept.
var typeConcepts = map[field.Type]Concept{
	field.TypeString:     Char,
	field.TypeText:       Text,
	field.TypeInt:        Integer,
	field.TypeFloat:      Float,
	field.TypeBool:       Bool,
	field.TypeJSON:       JSON,
	field.TypeTime:       DateTime,
	field.TypeForeignKey: Integer,
}

// Render returns the column type of the descriptor for the given backend,
// including size and nullability. The identity column renders as the
// primary key definition.
//
//	Render(SQLite, field.String("name").MaxSize(64).Descriptor()) // char(64)
//	Render(MySQL, field.String("name").Descriptor())              // text
func Render(b Backend, d *field.Descriptor) (string, error) {
	if d.Type == field.TypeIdentity {
		integer, err := Token(b, Integer)
		if err != nil {
			return "", err
		}
		autoinc, err := Token(b, AutoIncrement)
		if err != nil {
			return "", err
		}
		return integer + " PRIMARY KEY " + autoinc, nil
	}
	c, ok := typeConcepts[d.Type]
	if !ok {
		return "", frank.NewConfigurationError("field %q has unmapped type %s", d.Name, d.Type)
	}
	// Unbounded strings are stored as text.
	if d.Type == field.TypeString && d.Size == 0 {
		c = Text
	}
	typ, err := Token(b, c)
	if err != nil {
		return "", err
	}
	switch d.Type {
	case field.TypeString, field.TypeInt, field.TypeFloat:
		if d.Size > 0 {
			typ = fmt.Sprintf("%s(%d)", typ, d.Size)
		}
	}
	if d.Nullable {
		typ += " null"
	}
	return typ, nil
}

// DDLSuffix returns the clause appended to CREATE TABLE statements (engine
// and charset). It is empty for SQLite.
func DDLSuffix(b Backend) (string, error) {
	return Token(b, Engine)
}

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if the string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// LiveDDLQuery returns the statement that fetches the definition of table
// as stored by the backend, and the name of the result column holding it.
func LiveDDLQuery(b Backend, table string) (query string, args []any, column string, err error) {
	if !IsValidIdentifier(table) {
		return "", nil, "", frank.NewConfigurationError("invalid table name %q", table)
	}
	if query, err = Token(b, LiveDDL); err != nil {
		return "", nil, "", err
	}
	if column, err = Token(b, LiveDDLColumn); err != nil {
		return "", nil, "", err
	}
	if strings.Contains(query, "?") {
		return query, []any{table}, column, nil
	}
	// Statements like SHOW CREATE TABLE cannot bind identifiers.
	return query + " " + table, nil, column, nil
}
