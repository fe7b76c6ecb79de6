// Package session owns the client's authentication lifecycle.
//
//   - [TokenStore] : the only place credentials are read or written
//   - [Preferences] : persisted display preferences (theme)
//   - [Route] and [Navigator] : the screens a user can be sent to and the record of where they went
//   - [Controller] : the session state machine (anonymous, authenticating, authenticated, linked) and
//     the guard that sends protected routes to login
//
// Storage is injected as a [Storage]; in the CLI it is the SQLite local_storage table.
package session
