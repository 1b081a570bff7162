// Package field provides the builders used to declare the columns of a
// record type.
//
// A record type lists its fields in order; the order is kept for both
// the generated DDL and the select/insert column lists:
//
//	func (Widget) Fields() []frank.Field {
//	    return []frank.Field{
//	        field.String("name").MaxSize(64),
//	        field.Int("counter"),
//	        field.JSON("data"),
//	        field.ForeignKey("owner", "User"),
//	    }
//	}
//
// # Field Types
//
//	field.String("name")          // char(n) / varchar(n), or text when unbounded
//	field.Text("body")            // text
//	field.Int("counter")          // integer
//	field.Float("price")          // float / decimal
//	field.Bool("is_active")       // bool
//	field.JSON("data")            // json, kept as serialized text
//	field.Time("seen_at")         // datetime
//	field.ForeignKey("owner", "User") // integer column owner_id
//
// The identity column (id) and the created_at/updated_at timestamps are
// managed by the engine and must not be declared.
//
// # Timestamp Marks
//
// A datetime field may carry a mark. MarkCreate stamps the column on the
// first insert only, MarkUpdate stamps it on every insert and update:
//
//	field.Time("published_at").Mark(field.MarkCreate)
package field
