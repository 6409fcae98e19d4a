package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type rejection struct {
	Error string `json:"error"`
}

// reject ends a request that the middleware chain refused. The body matches
// the handler error envelope so clients parse one shape.
func reject(w http.ResponseWriter, status int, msg string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	if status == http.StatusUnauthorized {
		h.Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Error: msg})
}

// rejectThrottled is reject with a Retry-After hint rounded up to whole seconds.
func rejectThrottled(w http.ResponseWriter, wait time.Duration) {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	reject(w, http.StatusTooManyRequests, "too many requests")
}
