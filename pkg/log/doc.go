// Package log records a structured trace of codec operations.
//
// Every Encode and Decode call made through a codec with a trace logger
// produces one Event: the operation, its outcome, the code involved, the
// selection on success and the error kind on rejection. The trace is separate
// from operational logging (slog); it is a machine-readable record for
// auditing which codes were issued and which inputs were rejected.
//
// # Basic Usage
//
//	// Console output during development
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Append-only trace file
//	fl, err := log.NewFileLogger("/var/log/robospec/codes.rlog")
//
//	// Both
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with integer keys
// (extension .rlog). The robospec-log tool views, exports and summarizes
// them; Reader streams them with optional filtering.
package log
