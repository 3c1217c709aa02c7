// Package catalog persists the synced snapshot of stores and products in a
// local SQLite database.
//
// The catalog is read-mostly: sync replaces the whole content in one
// exclusive transaction, audit flows only query it. Store rows carry their
// server-computed audit history so the engine can surface prior visit
// summaries while offline.
package catalog
