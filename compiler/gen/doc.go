// Package gen generates typed accessors for frank record types.
//
// Records are untyped: columns are read and written by name. The
// generator emits, per record type, a thin wrapper embedding *model.Record
// with one getter and one setter per column:
//
//	w := models.AsWidget(record)
//	w.Counter()            // int64
//	_ = w.SetCounter(6)
//	w.CreatedAt()          // time.Time
//
// Files are rendered with jennifer and written in parallel, one file per
// record type.
package gen
