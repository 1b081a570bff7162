// Package query renders and runs the statements of the engine.
//
// Build functions return the SQL text and its bound arguments, the
// executor functions run them on a cursor. All statements use "?"
// placeholders.
//
// Predicate keys select the comparison with a suffix:
//
//	name             name = ?
//	counter__gt      counter > ?
//	counter__lt      counter < ?
//	counter__gte     counter >= ?
//	counter__lte     counter <= ?
//	name__ilike      name LIKE ?
//	data__isnull     data IS NULL (true) or data IS NOT NULL (false)
//
// Keys are rendered in sorted order so equal predicates produce equal
// statements.
package query
