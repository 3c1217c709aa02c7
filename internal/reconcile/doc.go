// Package reconcile derives the effective product status set for an audit
// and projects it into a printable receipt document.
//
// Status precedence is fixed: an explicit report wins, an unreported scan
// implies In Stock, and a catalog product with neither implies Out of
// Stock. The derivation is a pure function of its inputs and never writes
// back to the audit database.
package reconcile
