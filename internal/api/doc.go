// Package api implements the client for the AuditPRO-style sync backend.
//
// Every response arrives in a {"status","message","data"} envelope. A
// transport failure classifies as a network fault, a non-200 or
// status!="success" response as a server fault, and an unreadable body as a
// serialization fault. Store and product entries that fail validation are
// skipped with a warning rather than failing the whole fetch.
package api
