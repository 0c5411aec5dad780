// Package errors provides structured error types for the pg-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go/SQL type
// names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("arg", "0").
//		GoType("int32").
//		SQLType("text").
//		Detail("cannot convert text to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Null(errors.PhaseDecode, "int32")
//	err := errors.UnsupportedDim(2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
