package recoverykey

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type localeContextKey struct{}

// WithClientIP attaches the caller’s IP address to ctx. The Service uses it
// for audit events and passes it through to notification emails.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. It is forwarded
// to notification emails so the user can recognize the device that changed
// their recovery key.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithLocale attaches the caller's Accept-Language value to ctx for
// notification rendering.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

func localeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}
