// Package auditdb persists working audit sessions: the audit rows
// themselves plus their scans, explicit reorder reports, selected SKU
// conditions, and notes.
//
// Audits live here from StartAudit until the post-upload DeleteAudit. The
// one-open-audit-per-user invariant is enforced by query, not by in-memory
// state, so concurrent CLI invocations cannot race past it.
package auditdb
