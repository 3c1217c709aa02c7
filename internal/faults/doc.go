// Package faults defines the shared error taxonomy for the audit engine.
//
// Failures are classified with sentinel markers (conflict, invalid state,
// not found, storage, network, server, serialization) so callers can branch
// with errors.Is while the original cause stays on the chain for
// diagnostics. Wrap builds the caller-facing message; Message recovers it
// for display.
//
// Use these helpers at every layer boundary so no operation surfaces an
// opaque or untyped failure.
package faults
