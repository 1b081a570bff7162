// Package schema reconciles the tables of the database with the declared
// record types.
//
// Reconciliation is limited to a single CREATE TABLE per missing table.
// Tables whose live definition differs from the expected one are reported
// as drifted and left untouched.
package schema
