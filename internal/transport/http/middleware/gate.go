package middleware

import (
	"net/http"

	"github.com/go-api-authsession/internal/domain"
)

// PrincipalHandler is an HTTP handler that requires an authenticated account.
type PrincipalHandler func(w http.ResponseWriter, r *http.Request, principal *domain.Account)

// Authed rejects requests that Authenticate left without a principal and
// passes the principal to h otherwise.
func Authed(h PrincipalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			reject(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		h(w, r, p)
	}
}
