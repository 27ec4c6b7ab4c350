// Package repositories implements SQLite persistence for the local CLI state.
//
// Key Implementations:
//   - [CookieRepository] : session cookies keyed by host, name and path
//   - [PersistentJar] : an [http.CookieJar] that writes through to a [CookieRepository]
//   - [ExportRepository] : history of notes exports
//
// Schemas live in the embedded migrations of the shared package and must be applied before use.
package repositories
