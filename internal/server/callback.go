package server

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sync"
)

// CallbackFunc processes the provider redirect's query parameters.
type CallbackFunc func(ctx context.Context, query url.Values) error

// CallbackResult is the outcome of the single callback a [CallbackHandler] accepts.
type CallbackResult struct {
	Query url.Values
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler serves the provider redirect route.
//
// Implements the Handler interface for registration with a Router. Only the first request is
// processed; later requests are rejected with 400.
type CallbackHandler struct {
	process     CallbackFunc
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	stopped     bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler that passes the callback query to process.
func NewCallbackHandler(process CallbackFunc) *CallbackHandler {
	return &CallbackHandler{
		process:    process,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the callback request and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	if h.stopped {
		h.mu.Unlock()
		http.Error(w, "Callback listener closed", http.StatusServiceUnavailable)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if err := h.process(r.Context(), query); err != nil {
		h.Send(CallbackResult{Query: query, err: err})
		writePage(w, http.StatusBadRequest, "Linking Failed", err.Error())
		return
	}

	h.Send(CallbackResult{Query: query})
	writePage(w, http.StatusOK, "✓ Spotify Linked", "You can close this window and return to the terminal.")
}

// Stop rejects every later callback. It returns false when a callback was already accepted, in
// which case its result is still sent on [CallbackHandler.Result].
func (h *CallbackHandler) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	return !h.callbackHit
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving callback completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	color := "#1DB954"
	if status != http.StatusOK {
		color = "#E22134"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .container { text-align: center; background: #181818; padding: 2rem; border-radius: 8px; }
        h1 { color: %[3]s; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message), color)
}
