// Package sqlite implements storage.MetadataStore on SQLite via the pure-Go
// modernc.org/sqlite driver, so the binary stays cgo-free.
package sqlite
