package frank

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Standard sentinel errors for the engine's error kinds.
var (
	// ErrConfiguration is matched by errors caused by missing connection
	// parameters, unmapped dialect values or undeclared relations.
	ErrConfiguration = errors.New("frank: configuration error")

	// ErrAmbiguous is matched by errors returned when an upsert matched
	// more than one row.
	ErrAmbiguous = errors.New("frank: ambiguous match")

	// ErrNotFound is matched by errors returned when a query that expects
	// a row returned none.
	ErrNotFound = errors.New("frank: record not found")

	// ErrIdentityMismatch is matched by errors returned when an upsert
	// would target a row other than the one the record was loaded from.
	ErrIdentityMismatch = errors.New("frank: identity mismatch")
)

// ConfigurationError represents an invalid engine or schema configuration.
type ConfigurationError struct {
	Msg string
	Err error // Optional underlying error.
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frank: %s: %v", e.Msg, e.Err)
	}
	return "frank: " + e.Msg
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ConfigurationError.
// This allows errors.Is(err, ErrConfiguration) to return true.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewConfigurationError returns a new ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// WrapConfigurationError returns a new ConfigurationError wrapping err.
func WrapConfigurationError(err error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}

// QueryError wraps an error returned by the backend for a generated statement.
// Backend specific error types never cross the cursor boundary unwrapped.
type QueryError struct {
	Op         string // Operation (e.g. "select", "insert", "exec").
	Table      string // Table, if known.
	Query      string // Statement sent to the backend.
	Constraint bool   // The backend reported a constraint violation.
	Err        error  // Underlying backend diagnostic.
}

// Error returns the error string.
func (e *QueryError) Error() string {
	var sb strings.Builder
	sb.WriteString("frank: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
	} else {
		sb.WriteString("query")
	}
	if e.Table != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Table)
	}
	if e.Constraint {
		sb.WriteString(" (constraint failed)")
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(op, query string, err error) *QueryError {
	return &QueryError{Op: op, Query: query, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error is a QueryError caused by a
// constraint violation.
func IsConstraintError(err error) bool {
	var e *QueryError
	return errors.As(err, &e) && e.Constraint
}

// AmbiguityError is returned when an upsert matched more than one row.
// No mutation is performed when it is returned.
type AmbiguityError struct {
	Table string
	Match map[string]any
	Count int
}

// Error returns the error string.
func (e *AmbiguityError) Error() string {
	keys := make([]string, 0, len(e.Match))
	for k := range e.Match {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, e.Match[k])
	}
	return fmt.Sprintf("frank: upserting %s with {%s} matched %d records", e.Table, strings.Join(pairs, ", "), e.Count)
}

// Is reports whether the target error matches AmbiguityError.
func (e *AmbiguityError) Is(err error) bool {
	return err == ErrAmbiguous
}

// IsAmbiguity returns true if the error is an AmbiguityError.
func IsAmbiguity(err error) bool {
	if err == nil {
		return false
	}
	var e *AmbiguityError
	return errors.As(err, &e) || errors.Is(err, ErrAmbiguous)
}

// IdentityMismatchError is returned when a persisted record is asked to
// upsert against a different identity.
type IdentityMismatchError struct {
	Table string
	Have  any // Identity of the record.
	Want  any // Identity requested by the match keys.
}

// Error returns the error string.
func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("frank: %s record has id %v, refusing to upsert against id %v", e.Table, e.Have, e.Want)
}

// Is reports whether the target error matches IdentityMismatchError. The
// mismatch is a usage error and also matches ErrConfiguration.
func (e *IdentityMismatchError) Is(err error) bool {
	return err == ErrIdentityMismatch || err == ErrConfiguration
}

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	Table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("frank: %s record not found", e.Table)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
