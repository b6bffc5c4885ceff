package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// JWTMiddleware rejects requests without a valid bearer token and places the
// verified actor in the request context.
func JWTMiddleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeader(c, issuer)
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					return httpErr
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithActor(req.Context(), actor)))
			return next(c)
		}
	}
}

// OptionalJWTMiddleware attaches the actor when a valid token is present and
// lets the request through anonymously otherwise. Used on the public consult
// submission path.
func OptionalJWTMiddleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if actor, err := actorFromHeader(c, issuer); err == nil {
				req := c.Request()
				c.SetRequest(req.WithContext(WithActor(req.Context(), actor)))
			}
			return next(c)
		}
	}
}

func actorFromHeader(c echo.Context, issuer *TokenIssuer) (*Actor, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errBadFormat
	}
	return issuer.Verify(parts[1])
}

var (
	errMissingHeader = echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	errBadFormat     = echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
)
