package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode Phase = "encode" // Go to host word
	PhaseDecode Phase = "decode" // host word to Go
	PhaseCall   Phase = "call"   // function entry-point marshaling
	PhaseScan   Phase = "scan"   // foreign-table row production
	PhaseModify Phase = "modify" // foreign-table mutation
	PhasePlan   Phase = "plan"   // foreign-table planning
	PhaseHost   Phase = "host"   // host interface operations
	PhaseLoad   Phase = "load"   // plugin load / magic block
)

// Kind categorizes the error
type Kind string

const (
	KindNull            Kind = "null"
	KindInvalidEncoding Kind = "invalid_encoding"
	KindUnsupportedDim  Kind = "unsupported_dimensionality"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindFieldLookup     Kind = "field_lookup"
	KindUnsupported     Kind = "unsupported"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindReadOnly        Kind = "read_only"
	KindMagicMismatch   Kind = "magic_mismatch"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	SQLType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.SQLType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.SQLType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", SQL type ")
			b.WriteString(e.SQLType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("SQL type ")
			b.WriteString(e.SQLType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.SQLType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// SQLType sets the SQL type name
func (b *Builder) SQLType(t string) *Builder {
	b.err.SQLType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Null reports a null word converted to a non-optional type
func Null(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNull,
		GoType: goType,
		Detail: "word is null",
	}
}

// InvalidEncoding reports an unrecognized buffer or header layout
func InvalidEncoding(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEncoding,
		Detail: detail,
	}
}

// UnsupportedDim reports an array of other than one dimension
func UnsupportedDim(ndim int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnsupportedDim,
		Detail: fmt.Sprintf("array has %d dimensions, only 1 is supported", ndim),
		Value:  ndim,
	}
}

// InvalidUTF8 reports non-UTF-8 text content
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// FieldLookup reports a named field absent or mismatched during row production
func FieldLookup(column string, cause error) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindFieldLookup,
		Path:   []string{column},
		Detail: "field lookup failed",
		Cause:  cause,
	}
}

// Unsupported reports an operation the wrapper does not implement
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// TypeMismatch reports a Go/SQL type disagreement
func TypeMismatch(phase Phase, path []string, goType, sqlType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		SQLType: sqlType,
	}
}

// OutOfBounds reports a read past the end of host storage
func OutOfBounds(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// ReadOnly reports a mutation of something that only permits reads, such as
// a permanent host region or a read-only foreign table
func ReadOnly(what string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindReadOnly,
		Detail: fmt.Sprintf("%s is read-only and cannot be modified", what),
	}
}

// MagicMismatch reports a load-time descriptor the host would reject
func MagicMismatch(field string, got, want int32) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMagicMismatch,
		Path:   []string{field},
		Detail: fmt.Sprintf("magic block field %s = %d, host expects %d", field, got, want),
		Value:  got,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
