// Package pgruntime is a safety-boundary runtime for guest extension code
// running inside a relational database engine process.
//
// The engine (the "host") loads extensions as native plugins and talks to
// them through a fixed binary interface: opaque machine words for values,
// hierarchical bulk-freed memory regions for allocation, and a non-local
// exit mechanism for errors. This library makes that interface safe to
// program against from Go.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	pgruntime/        Root package with core Datum, Memory and Host interfaces
//	├── arena/        Allocation bound to the host's memory regions
//	├── guard/        Bridge between host non-local exits and Go unwinding
//	├── datum/        Typed conversions between opaque words and Go values
//	├── fdw/          Foreign-table row iteration and mutation protocol
//	├── elog/         Host log/error emission at engine severities
//	├── fcall/        Call-info marshaling for function entry points
//	├── sqlgen/       CREATE FUNCTION / CREATE FOREIGN DATA WRAPPER emission
//	├── errors/       Structured error types for debugging
//	├── hosttest/     In-process host engine and executor harness for tests
//	├── examples/     Complete plugins: scalar functions, two foreign tables
//	└── cmd/fdwshell  Interactive scan/mutate browser over the test engine
//
// # The Safety Boundary
//
// Every entry point the host can invoke follows the same pipeline: install
// an exception-bridge boundary (guard.Boundary), adopt a memory region
// (arena), marshal arguments (datum), run guest logic, marshal results back,
// and report unexpected guest failures through the host's own error channel.
//
// # Concurrency
//
// Execution is single-threaded and cooperative, matching the host's
// one-process-per-connection model. The current region and current exception
// target are per-backend state under strict LIFO discipline; they must never
// be shared across OS threads. Guest code that spawns goroutines must keep
// them away from this layer entirely.
package pgruntime
