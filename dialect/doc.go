// Package dialect provides the backend vocabulary of the engine.
//
// It is a pure lookup table mapping (backend, concept) pairs to SQL
// fragments, plus the helpers that render column types and the statements
// used to read a table definition back from the database.
//
// # Supported Backends
//
//   - SQLite: embedded single-file database (modernc.org/sqlite)
//   - MySQL: client-server database, MySQL or MariaDB (go-sql-driver/mysql)
//
// Both backends use "?" placeholders.
//
// # Rendering
//
//	dialect.Render(dialect.MySQL, field.Float("price").Descriptor())  // decimal
//	dialect.Render(dialect.SQLite, field.Float("price").Descriptor()) // float
//	dialect.DDLSuffix(dialect.MySQL)  // engine=innodb default charset=utf8
//	dialect.DDLSuffix(dialect.SQLite) // ""
//
// Unknown backends and unmapped concepts are reported as
// frank.ConfigurationError.
package dialect
