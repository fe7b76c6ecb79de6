// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [StorageRepository] : string key/value pairs in the local_storage table, the terminal
//     counterpart of browser local storage (tokens, theme)
//   - [ExportRepository] : history of snapshot exports written by the CLI
//
// Every read goes to the database; there is no in-process cache, so writes made by one
// component are visible to every other reader of the same database immediately.
package repositories
