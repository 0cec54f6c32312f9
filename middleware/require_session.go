package middleware

import (
	"net/http"
)

// RequireSession returns middleware that rejects anonymous requests with
// 401 before the handler runs. Unverified sessions still pass; the service
// layer decides which operations they may reach.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	base := ResolveSession(resolver)
	return func(next http.Handler) http.Handler {
		return base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
