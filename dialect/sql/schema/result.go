package schema

import (
	"fmt"
	"strings"
)

// Status is the outcome of the reconciliation of one table.
type Status uint8

// Reconciliation outcomes.
const (
	StatusCreated Status = iota + 1
	StatusMatched
	StatusDrifted
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusMatched:
		return "matched"
	case StatusDrifted:
		return "drifted"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// TableResult is the reconciliation outcome of one table.
type TableResult struct {
	Table  string
	Status Status
	// Expected is the statement derived from the record type.
	Expected string
	// Live is the definition stored by the backend. It is empty for
	// created tables.
	Live string
}

// Result holds the outcome of a reconciliation, in table order.
type Result struct {
	Tables []*TableResult
}

// Created returns the names of the tables created by the reconciliation.
func (r *Result) Created() []string {
	return r.names(StatusCreated)
}

// Drifted returns the names of the tables whose live definition differs
// from the expected one.
func (r *Result) Drifted() []string {
	return r.names(StatusDrifted)
}

// HasDrift reports whether any table drifted.
func (r *Result) HasDrift() bool {
	return len(r.Drifted()) > 0
}

func (r *Result) names(s Status) []string {
	var names []string
	for _, t := range r.Tables {
		if t.Status == s {
			names = append(names, t.Table)
		}
	}
	return names
}

// String returns a human-readable summary of the result.
func (r *Result) String() string {
	if len(r.Tables) == 0 {
		return "No tables"
	}
	var sb strings.Builder
	for _, t := range r.Tables {
		fmt.Fprintf(&sb, "  - %s: %s\n", t.Table, t.Status)
		if t.Status == StatusDrifted {
			fmt.Fprintf(&sb, "      expected: %s\n      live:     %s\n", t.Expected, t.Live)
		}
	}
	return sb.String()
}
