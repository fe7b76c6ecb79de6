// Package server provides the local HTTP listener that receives the Spotify redirect.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] with method filtering and chains [Middleware] with alice, first added outermost.
//
// # Callback Handler
//
// [CallbackHandler] serves /callback. It hands the query (code or error) to a [CallbackFunc], renders a
// small result page, and publishes the outcome on a channel. It only processes one callback; repeats
// are answered with 400.
//
// # Current Usage
//
// `wrapped spotify link` starts a [Listener] on the configured host and port, opens the authorization
// URL, waits for the callback, and shuts the listener down.
package server
