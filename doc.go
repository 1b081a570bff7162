// Package frank is a small object-relational mapping engine for SQLite and
// MySQL/MariaDB.
//
// Record types are declared with an ordered list of field descriptors and
// mapped to one table each. The table name is the lowercased type name
// followed by "s", every table has an auto-increment "id" identity column
// and engine managed "created_at" and "updated_at" columns:
//
//	type Widget struct{ frank.Schema }
//
//	func (Widget) Fields() []frank.Field {
//	    return []frank.Field{
//	        field.String("name").MaxSize(64),
//	        field.Int("counter"),
//	        field.JSON("data"),
//	    }
//	}
//
// Records are created, queried and reconciled through a model.Client:
//
//	client, err := model.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	w, _ := client.New(Widget{}, model.Values{"name": "abc", "counter": 4})
//	if err := w.Save(ctx); err != nil {
//	    return err
//	}
//	ws, err := client.Get(ctx, Widget{}, query.Predicate{"counter__gte": 4})
//
// # Packages
//
//   - schema/field: field descriptors and semantic types
//   - schema/column: per-field value holders
//   - schema/meta: per-type metadata (column inventories)
//   - dialect: backend vocabulary
//   - dialect/sql: connections, cursors and row materialization
//   - dialect/sql/query: select/insert/update/delete rendering and execution
//   - dialect/sql/schema: table reconciliation
//   - model: records, upsert and the client handle
//   - config: connection configuration
//   - compiler/load: record types declared in YAML schema files
//   - compiler/gen: typed accessor generation
//   - cmd/frank: the command line tool (init, dump, gen)
//
// # Errors
//
// All errors returned by the engine are one of ConfigurationError,
// QueryError, AmbiguityError, IdentityMismatchError or NotFoundError and
// can be inspected with errors.Is and errors.As, or the IsXxx helpers.
package frank
