package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

type clientIPKey struct{}

// ClientIP stores the caller's address on the request context so that
// layers below the handlers, the audit trail in particular, can attribute
// actions to a source address without seeing the HTTP request.
func ClientIP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(WithClientIP(req.Context(), ip)))
			}
			return next(c)
		}
	}
}

// WithClientIP returns a context carrying the caller address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext returns the caller address stored by ClientIP, or nil
// when the context did not pass through the middleware.
func ClientIPFromContext(ctx context.Context) *string {
	ip, ok := ctx.Value(clientIPKey{}).(string)
	if !ok || ip == "" {
		return nil
	}
	return &ip
}
