// Package database provides SQLite-based run history for tagdict.
//
// TagDB stores, per run:
//   - run metadata (source digests, record counts, diagnostics)
//   - every emitted Japanese tag as JSON
//   - the English to Japanese dictionary rows
//
// The history backs the lookup and history commands and lets watch mode
// skip runs whose sources did not change.
//
// SQLite is used via modernc.org/sqlite, which is CGO-free.
package database
