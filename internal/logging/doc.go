// Package logging builds the slog loggers used across the audit engine.
//
// Two output formats are supported: a human-oriented console format that
// renders one line per record with key=value attributes, and a JSON format
// for log files. Construction is driven by configuration; NewNop supplies a
// discard logger for tests.
package logging
