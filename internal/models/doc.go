// Package models defines the domain entities of the Wrapped client.
//
// The package contains two categories of types:
//
// 1. Wire entities: values decoded from or sent to the backend
//   - [Credentials] : the access/refresh token pair issued by login or account linking
//   - [Profile] : the signed-in user and whether a Spotify account is linked
//   - [Snapshot] : one Wrapped summary with ranked [Artist] and [Track] lists
//   - [Term] : the listening window a snapshot is generated for
//
// 2. Persistent entities: rows kept in the local database
//   - [ExportRecord] : a file written from a snapshot by the export command
//
// Persistent entities implement [Model]; the [Repository] interface defines CRUD access for them.
package models
