// Package main hosts the fieldaudit CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into audit
// lifecycle operations, catalog lookups, receipt rendering, and the sync
// exchange with the backend. It centralizes configuration resolution,
// session loading, and structured logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
