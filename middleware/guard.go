package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dschom/recoverykey"
)

// SessionResolver maps an incoming request to the caller's session. The
// upstream auth layer owns token validation; implementations typically
// verify a bearer token and return the derived session. Returning a nil
// session with a nil error marks the request anonymous.
type SessionResolver func(r *http.Request) (*recoverykey.Session, error)

type sessionContextKey struct{}

// SessionFromContext returns the session injected by [ResolveSession],
// [RequireSession], or [RequireVerified]. The second return is false when
// no middleware ran, and the session itself is nil for anonymous callers.
func SessionFromContext(ctx context.Context) (*recoverykey.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*recoverykey.Session)
	return sess, ok
}

// ResolveSession returns middleware that resolves the caller's session and
// injects it into the request context. Anonymous requests pass through with
// a nil session; resolver failures reject with 401.
func ResolveSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := resolver(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an Authorization header value.
// Exported for use inside [SessionResolver] implementations.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
