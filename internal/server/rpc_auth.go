package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/creachadair/jrpc2"
)

// wsTokenParam carries the secret on websocket upgrades. Browser
// extensions cannot set headers on a WebSocket handshake.
const wsTokenParam = "access_token"

// errUnauthorized is the body of every rejected request, shaped like a
// JSON-RPC reply so clients decode it the same way.
var errUnauthorized = &jrpc2.Error{Code: jrpc2.InvalidRequest, Message: "Unauthorized"}

type rejection struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      any          `json:"id"`
	Error   *jrpc2.Error `json:"error"`
}

// requireToken lets a request through only when it presents secret. An
// empty secret rejects everything.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tokenMatches(secret, presentedToken(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(rejection{JSONRPC: "2.0", Error: errUnauthorized})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// presentedToken returns the bearer token of r. The query parameter is
// honored for websocket upgrades only.
func presentedToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get(wsTokenParam)
	}
	return ""
}

func tokenMatches(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
