// Package services is the HTTP client for the Wrapped backend.
//
// # Gateway
//
// [Gateway] is the single choke point for backend traffic. [Gateway.Call] reads the token store on every
// request and refuses to touch the network without an access token; [Gateway.CallPublic] sends no
// credentials. Both map failures onto the shared sentinels:
//   - [shared.ErrNotAuthenticated] : no access token in the store
//   - [RequestError] (wraps [shared.ErrRequestFailed]) : non-2xx status with the server's message
//   - [shared.ErrNetwork] : transport failure, no response
//
// # Backend
//
// [Backend] wraps the gateway with one typed method per endpoint (login, register, profile, wrapped
// history and generation, provider linking, publishing, account deletion).
//
// # Payloads
//
// Generated Wrapped data is the Spotify top-artists response relayed by the backend; it is decoded with
// the [github.com/zmb3/spotify/v2] wire types and converted to [models.Artist] and [models.Track].
package services
