package middleware

import (
	"net/http"

	"github.com/dschom/recoverykey"
)

// RequireVerified returns middleware for mutation routes: anonymous
// requests get 401, sessions still pending verification get 403.
func RequireVerified(resolver SessionResolver) func(http.Handler) http.Handler {
	base := ResolveSession(resolver)
	return func(next http.Handler) http.Handler {
		return base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())
			switch sess.State() {
			case recoverykey.SessionAnonymous:
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case recoverykey.SessionUnverified:
				http.Error(w, "unverified session", http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		}))
	}
}
