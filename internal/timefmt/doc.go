// Package timefmt fixes the ISO-8601 timestamp layout shared by the wire
// protocol and the local databases, tolerating both Z and numeric offsets.
package timefmt
