package server

import (
	"fmt"
	"net/http"
	"sync"
)

// VerifierResult contains the outcome of an OAuth 1.0a authorization callback.
type VerifierResult struct {
	RequestToken string // oauth_token echoed back by the provider
	Verifier     string // oauth_verifier to exchange for an access token
	err          error
}

func (v *VerifierResult) Error() error {
	return v.err
}

// OAuthHandler handles the OAuth 1.0a authorization callback.
// Implements the Handler interface for registration with a Router.
//
// The provider redirects the browser here with oauth_token and
// oauth_verifier query parameters after the user approves access. The
// token exchange itself happens in the services layer; this handler only
// captures the verifier and hands it back through the result channel.
type OAuthHandler struct {
	requestToken string
	resultChan   chan VerifierResult
	once         sync.Once
	callbackHit  bool
	mu           sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler expecting the given request token.
func NewOAuthHandler(requestToken string) *OAuthHandler {
	return &OAuthHandler{
		requestToken: requestToken,
		resultChan:   make(chan VerifierResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the authorization callback request.
//
// Validates that the echoed oauth_token matches the request token this flow
// issued, then sends the verifier through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	token := r.URL.Query().Get("oauth_token")
	if token != h.requestToken {
		err := fmt.Errorf("oauth_token mismatch")
		h.Send(VerifierResult{err: err})
		http.Error(w, "Invalid oauth_token parameter", http.StatusBadRequest)
		return
	}

	verifier := r.URL.Query().Get("oauth_verifier")
	if verifier == "" {
		err := fmt.Errorf("authorization denied: no oauth_verifier in callback")
		h.Send(VerifierResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(VerifierResult{RequestToken: token, Verifier: verifier})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #333333; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the verifier result through the channel (only once).
func (h *OAuthHandler) Send(result VerifierResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan VerifierResult {
	return h.resultChan
}
